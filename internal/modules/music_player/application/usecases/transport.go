package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// DefaultResumeDelay is the pause between assigning a new source and resuming playback.
const DefaultResumeDelay = 100 * time.Millisecond

// TransportConfig contains the playback policy of the transport.
type TransportConfig struct {
	SourceQuality string        // Preferred source variant, e.g. "320kbps"
	ResumeDelay   time.Duration // Wait between Load and Play; zero disables it
}

// SelectTrackInput contains the input for the SelectTrack use case.
type SelectTrackInput struct {
	Track domain.Track
	Index int // Index of Track in the current result list
}

// TransportService keeps the media sink in sync with the user's playback intent.
//
// mu guards the player state and is never held while talking to the sink.
// sinkMu serializes command sequences sent to the sink; it is always taken before mu.
type TransportService struct {
	mu     sync.Mutex
	sinkMu sync.Mutex

	state     *domain.PlayerState
	sink      ports.MediaSink
	results   ports.ResultSource
	publisher ports.EventPublisher

	sourceQuality string
	resumeDelay   time.Duration
}

// NewTransportService creates a new TransportService.
func NewTransportService(
	sink ports.MediaSink,
	results ports.ResultSource,
	publisher ports.EventPublisher,
	cfg TransportConfig,
) *TransportService {
	quality := cfg.SourceQuality
	if quality == "" {
		quality = domain.DefaultSourceQuality
	}

	return &TransportService{
		state:         domain.NewPlayerState(),
		sink:          sink,
		results:       results,
		publisher:     publisher,
		sourceQuality: quality,
		resumeDelay:   cfg.ResumeDelay,
	}
}

// ApplySettings pushes the current volume and loop mode to the sink.
func (s *TransportService) ApplySettings(ctx context.Context) error {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.mu.Lock()
	volume := s.state.EffectiveVolume()
	looping := s.state.IsLooping()
	s.mu.Unlock()

	if err := s.sink.SetVolume(ctx, volume); err != nil {
		return fmt.Errorf("failed to apply volume: %w", err)
	}
	if err := s.sink.SetLooping(ctx, looping); err != nil {
		return fmt.Errorf("failed to apply loop mode: %w", err)
	}
	return nil
}

// SelectTrack makes the given track current and starts playing it.
// Sink failures are reconciled into the state and logged, not returned.
func (s *TransportService) SelectTrack(ctx context.Context, input SelectTrackInput) error {
	if input.Index < 0 {
		return ErrInvalidIndex
	}

	s.mu.Lock()
	selection := s.state.Select(input.Track, input.Index)
	s.mu.Unlock()
	s.publishUpdated()

	slog.Info("selected track",
		"track", input.Track.ID,
		"title", input.Track.Title,
		"index", input.Index,
	)

	s.loadSelection(ctx, selection, input.Track)
	return nil
}

// TogglePlayPause flips between playing and paused.
// With nothing selected it starts the first result.
func (s *TransportService) TogglePlayPause(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.HasTrack() {
		s.mu.Unlock()

		results := s.results.Results()
		if len(results) == 0 {
			return ErrResultListEmpty
		}
		return s.SelectTrack(ctx, SelectTrackInput{Track: results[0], Index: 0})
	}

	if s.state.IsSourceUnavailable() {
		s.mu.Unlock()
		return ErrNoPlayableSource
	}

	playing := !s.state.IsPlaying()
	s.state.SetPlaying(playing)
	selection := s.state.Selection()
	track := *s.state.CurrentTrack()
	s.mu.Unlock()
	s.publishUpdated()

	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	if !s.isSelection(selection) {
		return nil
	}

	if playing {
		// After a failed load there is nothing to resume
		if !s.isSourceLoaded(selection) {
			slog.Info("reloading source", "track", track.ID)
			s.loadSelectionLocked(ctx, selection, track)
			return nil
		}
		if s.wantsPlayback(selection) {
			s.startSink(ctx, selection)
		}
		return nil
	}

	if err := s.sink.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// PlayNext selects (current+1) mod N of the result list. It ignores the loop mode.
func (s *TransportService) PlayNext(ctx context.Context) error {
	results := s.results.Results()

	s.mu.Lock()
	current := s.state.CurrentIndex()
	s.mu.Unlock()

	next, ok := domain.NextIndex(current, len(results))
	if !ok {
		return ErrResultListEmpty
	}

	return s.SelectTrack(ctx, SelectTrackInput{Track: results[next], Index: next})
}

// PlayPrevious selects (current-1+N) mod N of the result list. It ignores the loop mode.
func (s *TransportService) PlayPrevious(ctx context.Context) error {
	results := s.results.Results()
	if len(results) == 0 {
		return ErrResultListEmpty
	}

	s.mu.Lock()
	current := s.state.CurrentIndex()
	s.mu.Unlock()

	prev := len(results) - 1
	if current != domain.NoIndex {
		prev, _ = domain.PreviousIndex(current, len(results))
	}

	return s.SelectTrack(ctx, SelectTrackInput{Track: results[prev], Index: prev})
}

// OnTrackEnded handles the sink's end-of-track notification.
// While looping the sink repeats the track itself, so the transport does nothing.
func (s *TransportService) OnTrackEnded(ctx context.Context) error {
	s.mu.Lock()
	hasTrack := s.state.HasTrack()
	looping := s.state.IsLooping()
	s.mu.Unlock()

	if !hasTrack {
		return ErrNoTrackSelected
	}
	if looping {
		slog.Debug("track ended while looping, leaving repeat to the sink")
		return nil
	}

	return s.PlayNext(ctx)
}

// SetVolume stores the volume clamped to [0,1] and pushes the effective volume to the sink.
// A nonzero volume unmutes.
func (s *TransportService) SetVolume(ctx context.Context, volume float64) error {
	s.mu.Lock()
	s.state.SetVolume(volume)
	s.mu.Unlock()
	s.publishUpdated()

	return s.pushVolume(ctx)
}

// ToggleMute flips mute and pushes the effective volume to the sink.
func (s *TransportService) ToggleMute(ctx context.Context) error {
	s.mu.Lock()
	s.state.ToggleMute()
	s.mu.Unlock()
	s.publishUpdated()

	return s.pushVolume(ctx)
}

// ToggleLoop flips single-track looping and forwards it to the sink.
func (s *TransportService) ToggleLoop(ctx context.Context) error {
	s.mu.Lock()
	mode := s.state.ToggleLoop()
	s.mu.Unlock()
	s.publishUpdated()

	slog.Debug("changed loop mode", "loop_mode", mode.String())

	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	if err := s.sink.SetLooping(ctx, mode == domain.LoopModeTrack); err != nil {
		return fmt.Errorf("failed to set loop mode: %w", err)
	}
	return nil
}

// Seek moves the position to target clamped to [0, duration], updating the state
// before the sink confirms.
func (s *TransportService) Seek(ctx context.Context, target time.Duration) error {
	s.mu.Lock()
	if !s.state.HasTrack() {
		s.mu.Unlock()
		return ErrNoTrackSelected
	}
	position := s.state.Seek(target)
	s.mu.Unlock()
	s.publishUpdated()

	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	if err := s.sink.Seek(ctx, position); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// SeekBy moves the position by delta relative to the last known position.
func (s *TransportService) SeekBy(ctx context.Context, delta time.Duration) error {
	s.mu.Lock()
	position := s.state.Position()
	s.mu.Unlock()

	return s.Seek(ctx, position+delta)
}

// UpdateProgress republishes the sink's live position and duration.
func (s *TransportService) UpdateProgress(position, duration time.Duration) {
	s.mu.Lock()
	if !s.state.HasTrack() {
		s.mu.Unlock()
		return
	}
	s.state.SetProgress(position, duration)
	s.mu.Unlock()

	s.publishUpdated()
}

// ReconcilePlaybackFailure reverts the play intent after the sink reported that it
// could not play the current source. The next play request loads the source again.
func (s *TransportService) ReconcilePlaybackFailure(reason string) {
	s.mu.Lock()
	if !s.state.HasTrack() {
		s.mu.Unlock()
		return
	}
	s.state.DropSource()
	s.mu.Unlock()

	slog.Warn("playback failed, marked player as paused", "reason", reason)
	s.publishUpdated()
}

// Snapshot returns a copy of the player state.
func (s *TransportService) Snapshot() domain.PlayerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Snapshot()
}

// loadSelection pauses the sink, assigns the selection's source and resumes playback
// if the selection still wants to play.
func (s *TransportService) loadSelection(ctx context.Context, selection uint64, track domain.Track) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.loadSelectionLocked(ctx, selection, track)
}

// loadSelectionLocked is loadSelection for callers holding sinkMu.
func (s *TransportService) loadSelectionLocked(ctx context.Context, selection uint64, track domain.Track) {
	if !s.isSelection(selection) {
		return
	}

	if err := s.sink.Pause(ctx); err != nil {
		slog.Warn("failed to pause sink before loading", "error", err)
	}

	sourceURL, ok := track.PlayableSource(s.sourceQuality)
	if !ok {
		slog.Warn("found no playable source for track",
			"track", track.ID,
			"quality", s.sourceQuality,
		)
		s.update(selection, (*domain.PlayerState).MarkSourceUnavailable)
		return
	}

	if err := s.sink.Load(ctx, sourceURL); err != nil {
		slog.Error("failed to load source", "error", fmt.Errorf("%w: %w", domain.ErrPlayback, err))
		s.update(selection, (*domain.PlayerState).DropSource)
		return
	}
	s.update(selection, (*domain.PlayerState).MarkSourceLoaded)

	if !s.wantsPlayback(selection) {
		return
	}

	if s.resumeDelay > 0 {
		select {
		case <-ctx.Done():
			s.failPlayback(selection, ctx.Err())
			return
		case <-time.After(s.resumeDelay):
		}
	}

	if !s.wantsPlayback(selection) {
		return
	}

	s.startSink(ctx, selection)
}

// startSink issues Play and settles the tentative play intent. Caller must hold sinkMu.
func (s *TransportService) startSink(ctx context.Context, selection uint64) {
	if err := s.sink.Play(ctx); err != nil {
		s.failPlayback(selection, err)
		return
	}
	s.update(selection, (*domain.PlayerState).ConfirmPlayback)
}

func (s *TransportService) failPlayback(selection uint64, err error) {
	slog.Error("failed to start playback", "error", fmt.Errorf("%w: %w", domain.ErrPlayback, err))
	s.update(selection, (*domain.PlayerState).FailPlayback)
}

// update applies fn to the state if selection is still current and publishes the change.
func (s *TransportService) update(selection uint64, fn func(*domain.PlayerState)) {
	s.mu.Lock()
	if !s.state.IsSelection(selection) {
		s.mu.Unlock()
		return
	}
	fn(s.state)
	s.mu.Unlock()

	s.publishUpdated()
}

func (s *TransportService) isSelection(selection uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.IsSelection(selection)
}

func (s *TransportService) isSourceLoaded(selection uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.IsSelection(selection) && s.state.IsSourceLoaded()
}

func (s *TransportService) wantsPlayback(selection uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.IsSelection(selection) && s.state.IsPlaying()
}

func (s *TransportService) pushVolume(ctx context.Context) error {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.mu.Lock()
	volume := s.state.EffectiveVolume()
	s.mu.Unlock()

	if err := s.sink.SetVolume(ctx, volume); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

func (s *TransportService) publishUpdated() {
	if s.publisher == nil {
		return
	}

	s.mu.Lock()
	event := domain.PlayerUpdatedEvent{
		Index: s.state.CurrentIndex(),
		Phase: s.state.Phase(),
	}
	s.mu.Unlock()

	if err := s.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish player update", "error", err)
	}
}
