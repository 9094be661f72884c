package usecases

import "errors"

// Errors returned by the use cases when a request is ignored.
var (
	// ErrEmptyQuery is returned when a search is submitted with blank text.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrNoActiveQuery is returned when more results are requested before any search.
	ErrNoActiveQuery = errors.New("no search has been submitted")

	// ErrLoadInFlight is returned when a page request is already in flight.
	ErrLoadInFlight = errors.New("a page request is already in flight")

	// ErrPaginationExhausted is returned when the previous page came back empty.
	ErrPaginationExhausted = errors.New("no more results")

	// ErrStaleResponse is returned when a response arrived for a superseded search.
	ErrStaleResponse = errors.New("search was superseded")

	// ErrResultListEmpty is returned when navigation is requested over an empty result list.
	ErrResultListEmpty = errors.New("the result list is empty")

	// ErrNoTrackSelected is returned when an operation requires a selected track.
	ErrNoTrackSelected = errors.New("no track is selected")

	// ErrNoPlayableSource is returned when play is requested for a track without audio.
	ErrNoPlayableSource = errors.New("track has no playable source")

	// ErrInvalidIndex is returned when a selection index is out of range.
	ErrInvalidIndex = errors.New("invalid result index")
)
