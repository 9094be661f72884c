package domain

import "errors"

// Error kinds surfaced by the search provider and the media sink.
// Adapters wrap them so callers can match with errors.Is.
var (
	// ErrNetwork is returned when the search provider is unreachable or answered
	// with a non-2xx status or a malformed body.
	ErrNetwork = errors.New("search provider request failed")

	// ErrEmptyResult is returned when a valid response contained no tracks.
	ErrEmptyResult = errors.New("search returned no tracks")

	// ErrPlayback is returned when the media sink rejected a load or play command.
	ErrPlayback = errors.New("media sink rejected playback")

	// ErrNoPlayableSource is returned when a track carries no source of the preferred quality.
	ErrNoPlayableSource = errors.New("no audio available")
)
