package domain

import "time"

// Event is implemented by every event published on the event bus.
type Event interface {
	isEvent()
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to the end.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the sink could not load or decode the track.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means playback was stopped.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another source was assigned.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the sink was torn down.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvance returns true if this end reason should move on to the next result.
// Load failures are reported as PlaybackFailedEvent instead.
func (r TrackEndReason) ShouldAdvance() bool {
	return r == TrackEndFinished
}

// SearchUpdatedEvent is published whenever the search session changed.
type SearchUpdatedEvent struct {
	Generation  uint64
	Status      SearchStatus
	PageCursor  int
	ResultCount int
}

// PlayerUpdatedEvent is published whenever the player state changed.
type PlayerUpdatedEvent struct {
	Index int
	Phase PlaybackPhase
}

// TrackEndedEvent is published by a media sink when the current source ended.
type TrackEndedEvent struct {
	Reason TrackEndReason
}

// PlaybackFailedEvent is published by a media sink when it rejected or could not decode
// the current source after a play command was accepted.
type PlaybackFailedEvent struct {
	Reason string
}

// ProgressUpdatedEvent is published by a media sink when position or duration changed.
// A zero Duration means unknown.
type ProgressUpdatedEvent struct {
	Position time.Duration
	Duration time.Duration
}

func (SearchUpdatedEvent) isEvent()   {}
func (PlayerUpdatedEvent) isEvent()   {}
func (TrackEndedEvent) isEvent()      {}
func (PlaybackFailedEvent) isEvent()  {}
func (ProgressUpdatedEvent) isEvent() {}
