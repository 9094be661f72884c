package domain

import (
	"math"
	"time"
)

// NoIndex is the current index while no track is selected.
const NoIndex = -1

// PlaybackPhase is the observable state of the player.
type PlaybackPhase int

const (
	PhaseNoTrack  PlaybackPhase = iota // Initial: nothing selected
	PhasePaused                        // Track loaded, not playing
	PhaseStarting                      // User asked to play, sink has not confirmed yet
	PhasePlaying                       // Sink confirmed playback
)

// String returns a human-readable representation of the phase.
func (p PlaybackPhase) String() string {
	switch p {
	case PhasePaused:
		return "paused"
	case PhaseStarting:
		return "starting"
	case PhasePlaying:
		return "playing"
	default:
		return "no_track"
	}
}

// PlayerState represents the state of the transport.
//
// isPlaying is user intent. It becomes tentative on every play request and is only
// confirmed once the sink acknowledged playback; a sink failure reverts it to false.
type PlayerState struct {
	currentTrack      *Track
	currentIndex      int
	isPlaying         bool
	playConfirmed     bool
	loopMode          LoopMode
	volume            float64
	isMuted           bool
	position          time.Duration
	duration          time.Duration
	sourceUnavailable bool // selected track has no playable source
	sourceLoaded      bool // sink holds the selection's source
	selection         uint64
}

// NewPlayerState creates a PlayerState with nothing selected and full volume.
func NewPlayerState() *PlayerState {
	return &PlayerState{
		currentIndex: NoIndex,
		loopMode:     LoopModeNone,
		volume:       1,
	}
}

// HasTrack returns true if a track is selected.
func (p *PlayerState) HasTrack() bool {
	return p.currentTrack != nil
}

// CurrentTrack returns a copy of the selected track, or nil if none is selected.
func (p *PlayerState) CurrentTrack() *Track {
	if p.currentTrack == nil {
		return nil
	}
	track := *p.currentTrack
	return &track
}

// CurrentIndex returns the index of the selected track in the result list, or NoIndex.
func (p *PlayerState) CurrentIndex() int {
	return p.currentIndex
}

// Select makes track the current selection at index and records the intent to play it.
// Returns the selection counter that asynchronous sink results must match.
func (p *PlayerState) Select(track Track, index int) uint64 {
	p.currentTrack = &track
	p.currentIndex = index
	p.isPlaying = true
	p.playConfirmed = false
	p.position = 0
	p.duration = 0
	p.sourceUnavailable = false
	p.sourceLoaded = false
	p.selection++
	return p.selection
}

// Selection returns the counter of the latest selection.
func (p *PlayerState) Selection() uint64 {
	return p.selection
}

// IsSelection returns true if selection is still the latest selection.
func (p *PlayerState) IsSelection(selection uint64) bool {
	return p.selection == selection
}

// IsPlaying returns the user's intent to play.
func (p *PlayerState) IsPlaying() bool {
	return p.isPlaying
}

// IsPlaybackConfirmed returns true once the sink acknowledged the current play request.
func (p *PlayerState) IsPlaybackConfirmed() bool {
	return p.isPlaying && p.playConfirmed
}

// SetPlaying records the intent to play or pause. A new play intent is tentative.
func (p *PlayerState) SetPlaying(playing bool) {
	p.isPlaying = playing
	p.playConfirmed = false
}

// ConfirmPlayback marks the tentative play intent as acknowledged by the sink.
func (p *PlayerState) ConfirmPlayback() {
	if p.isPlaying {
		p.playConfirmed = true
	}
}

// FailPlayback reconciles the intent with a sink that could not play.
func (p *PlayerState) FailPlayback() {
	p.isPlaying = false
	p.playConfirmed = false
}

// Phase returns the current playback phase.
func (p *PlayerState) Phase() PlaybackPhase {
	switch {
	case !p.HasTrack():
		return PhaseNoTrack
	case !p.isPlaying:
		return PhasePaused
	case !p.playConfirmed:
		return PhaseStarting
	default:
		return PhasePlaying
	}
}

// MarkSourceLoaded records that the sink accepted the selection's source.
func (p *PlayerState) MarkSourceLoaded() {
	p.sourceLoaded = true
}

// IsSourceLoaded returns true if the sink holds the selection's source, so a play
// request can resume it instead of loading it again.
func (p *PlayerState) IsSourceLoaded() bool {
	return p.sourceLoaded
}

// DropSource reconciles the intent with a sink that lost or never accepted the source.
func (p *PlayerState) DropSource() {
	p.sourceLoaded = false
	p.FailPlayback()
}

// MarkSourceUnavailable records that the selection has no playable source.
func (p *PlayerState) MarkSourceUnavailable() {
	p.sourceUnavailable = true
	p.FailPlayback()
}

// IsSourceUnavailable returns true if the selected track cannot be played.
func (p *PlayerState) IsSourceUnavailable() bool {
	return p.sourceUnavailable
}

// GetLoopMode returns the current loop mode.
func (p *PlayerState) GetLoopMode() LoopMode {
	return p.loopMode
}

// SetLoopMode sets the loop mode.
func (p *PlayerState) SetLoopMode(mode LoopMode) {
	p.loopMode = mode
}

// IsLooping returns true if the current track repeats.
func (p *PlayerState) IsLooping() bool {
	return p.loopMode == LoopModeTrack
}

// ToggleLoop flips single-track looping and returns the new mode.
func (p *PlayerState) ToggleLoop() LoopMode {
	p.loopMode = p.loopMode.Toggle()
	return p.loopMode
}

// Volume returns the stored volume in [0,1], independent of mute.
func (p *PlayerState) Volume() float64 {
	return p.volume
}

// SetVolume stores v clamped to [0,1]. A nonzero volume set while muted unmutes.
func (p *PlayerState) SetVolume(v float64) {
	p.volume = ClampVolume(v)
	if p.isMuted && p.volume > 0 {
		p.isMuted = false
	}
}

// IsMuted returns true if output is muted.
func (p *PlayerState) IsMuted() bool {
	return p.isMuted
}

// ToggleMute flips mute without touching the stored volume.
func (p *PlayerState) ToggleMute() {
	p.isMuted = !p.isMuted
}

// EffectiveVolume returns the volume the sink should output.
func (p *PlayerState) EffectiveVolume() float64 {
	if p.isMuted {
		return 0
	}
	return p.volume
}

// Position returns the last known playback position.
func (p *PlayerState) Position() time.Duration {
	return p.position
}

// Duration returns the duration of the current track, or 0 if unknown.
func (p *PlayerState) Duration() time.Duration {
	return p.duration
}

// HasDuration returns true if the duration of the current track is known.
func (p *PlayerState) HasDuration() bool {
	return p.duration > 0
}

// SetProgress republishes the sink's live position and duration.
// Negative values are treated as unknown.
func (p *PlayerState) SetProgress(position, duration time.Duration) {
	p.position = max(position, 0)
	p.duration = max(duration, 0)
}

// Seek optimistically moves the position to target clamped to [0, duration] and
// returns the clamped value. The upper bound only applies once the duration is known.
func (p *PlayerState) Seek(target time.Duration) time.Duration {
	target = max(target, 0)
	if p.HasDuration() {
		target = min(target, p.duration)
	}
	p.position = target
	return target
}

// ClampVolume clamps v to [0,1]; NaN is treated as 0.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

// PlayerSnapshot is an immutable copy of the player state.
type PlayerSnapshot struct {
	Track             *Track
	Index             int
	Phase             PlaybackPhase
	IsPlaying         bool
	LoopMode          LoopMode
	Volume            float64
	IsMuted           bool
	Position          time.Duration
	Duration          time.Duration
	SourceUnavailable bool
}

// Snapshot returns a copy of the player state.
func (p *PlayerState) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		Track:             p.CurrentTrack(),
		Index:             p.currentIndex,
		Phase:             p.Phase(),
		IsPlaying:         p.isPlaying,
		LoopMode:          p.loopMode,
		Volume:            p.volume,
		IsMuted:           p.isMuted,
		Position:          p.position,
		Duration:          p.duration,
		SourceUnavailable: p.sourceUnavailable,
	}
}
