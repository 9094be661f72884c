package domain

// SearchStatus represents the lifecycle status of a search session.
type SearchStatus int

const (
	SearchStatusIdle SearchStatus = iota
	SearchStatusLoading
	SearchStatusError
	SearchStatusEmpty
)

// String returns a human-readable representation of the status.
func (s SearchStatus) String() string {
	switch s {
	case SearchStatusLoading:
		return "loading"
	case SearchStatusError:
		return "error"
	case SearchStatusEmpty:
		return "empty"
	default:
		return "idle"
	}
}

// User-facing status messages.
const (
	MessageGetStarted = "Search for songs to get started"
	MessageSearching  = "Searching for songs..."
	MessageNoResults  = "No songs found. Try a different search."
	MessageFetchError = "Error fetching songs. Please try again."
)

// SearchSession owns the query, page cursor and accumulated results of the current search.
// Every submission starts a new generation; responses tagged with an older generation are stale.
type SearchSession struct {
	query      string
	pageCursor int
	results    ResultList
	status     SearchStatus
	message    string
	generation uint64

	// restored when a next-page request settles
	statusBeforeLoad SearchStatus
	exhausted        bool // last next-page request returned no tracks
	lastPageFailed   bool // last next-page request failed
}

// NewSearchSession creates an idle session with no active query.
func NewSearchSession() *SearchSession {
	return &SearchSession{
		results: NewResultList(),
		status:  SearchStatusIdle,
		message: MessageGetStarted,
	}
}

// Query returns the active query, or "" if none was submitted.
func (s *SearchSession) Query() string {
	return s.query
}

// HasActiveQuery returns true once a non-empty query has been submitted.
func (s *SearchSession) HasActiveQuery() bool {
	return s.query != ""
}

// PageCursor returns the last page successfully applied to the results.
func (s *SearchSession) PageCursor() int {
	return s.pageCursor
}

// Status returns the session status.
func (s *SearchSession) Status() SearchStatus {
	return s.status
}

// IsLoading returns true while a page request is in flight.
func (s *SearchSession) IsLoading() bool {
	return s.status == SearchStatusLoading
}

// Message returns the user-facing status message, or "" when results are shown.
func (s *SearchSession) Message() string {
	return s.message
}

// Generation returns the generation of the current submission.
func (s *SearchSession) Generation() uint64 {
	return s.generation
}

// Results returns a pointer to the session's result list.
func (s *SearchSession) Results() *ResultList {
	return &s.results
}

// IsExhausted returns true if the last next-page request came back empty.
func (s *SearchSession) IsExhausted() bool {
	return s.exhausted
}

// LastPageFailed returns true if the last next-page request failed.
func (s *SearchSession) LastPageFailed() bool {
	return s.lastPageFailed
}

// Begin resets the session for a new query and returns the generation the
// first-page response must carry. The query must already be normalized and non-empty.
func (s *SearchSession) Begin(query string) uint64 {
	s.generation++
	s.query = query
	s.pageCursor = 1
	s.results.Clear()
	s.status = SearchStatusLoading
	s.message = ""
	s.exhausted = false
	s.lastPageFailed = false
	return s.generation
}

// IsCurrent returns true if generation belongs to the latest submission.
func (s *SearchSession) IsCurrent(generation uint64) bool {
	return s.generation == generation
}

// CompleteFirstPage applies a successful first-page response.
// Returns false without changes if the response is stale.
func (s *SearchSession) CompleteFirstPage(generation uint64, tracks []Track) bool {
	if !s.IsCurrent(generation) {
		return false
	}

	if len(tracks) == 0 {
		s.status = SearchStatusEmpty
		s.message = MessageNoResults
		return true
	}

	s.results = NewResultList(tracks...)
	s.status = SearchStatusIdle
	s.message = ""
	return true
}

// FailFirstPage records a failed first-page request.
// Returns false without changes if the response is stale.
func (s *SearchSession) FailFirstPage(generation uint64) bool {
	if !s.IsCurrent(generation) {
		return false
	}

	s.status = SearchStatusError
	s.message = MessageFetchError
	return true
}

// BeginNextPage marks a next-page request as in flight and returns the generation and page
// number to request. The second value is false if a request is already in flight or there
// is no active query.
func (s *SearchSession) BeginNextPage() (uint64, int, bool) {
	if s.IsLoading() || !s.HasActiveQuery() {
		return 0, 0, false
	}

	s.statusBeforeLoad = s.status
	s.status = SearchStatusLoading
	return s.generation, s.pageCursor + 1, true
}

// CompleteNextPage applies a next-page response. Non-empty pages are appended and advance
// the cursor; an empty page leaves cursor and results unchanged.
// Returns false without changes if the response is stale or for a page already applied.
func (s *SearchSession) CompleteNextPage(generation uint64, page int, tracks []Track) bool {
	if !s.IsCurrent(generation) || page != s.pageCursor+1 {
		return false
	}

	s.status = s.statusBeforeLoad
	s.lastPageFailed = false

	if len(tracks) == 0 {
		s.exhausted = true
		return true
	}

	s.results.Append(tracks...)
	s.pageCursor = page
	s.exhausted = false
	if s.status == SearchStatusEmpty || s.status == SearchStatusError {
		s.status = SearchStatusIdle
		s.message = ""
	}
	return true
}

// FailNextPage records a failed next-page request, leaving cursor and results unchanged.
// Returns false without changes if the response is stale.
func (s *SearchSession) FailNextPage(generation uint64) bool {
	if !s.IsCurrent(generation) {
		return false
	}

	s.status = s.statusBeforeLoad
	s.lastPageFailed = true
	return true
}

// SearchSnapshot is an immutable copy of a session, safe to hand to the render layer.
type SearchSnapshot struct {
	Query          string
	PageCursor     int
	Status         SearchStatus
	Message        string
	Generation     uint64
	Results        []Track
	Exhausted      bool
	LastPageFailed bool
}

// Snapshot returns a copy of the session state.
func (s *SearchSession) Snapshot() SearchSnapshot {
	message := s.message
	if s.status == SearchStatusLoading && s.results.IsEmpty() {
		message = MessageSearching
	}

	return SearchSnapshot{
		Query:          s.query,
		PageCursor:     s.pageCursor,
		Status:         s.status,
		Message:        message,
		Generation:     s.generation,
		Results:        s.results.Tracks(),
		Exhausted:      s.exhausted,
		LastPageFailed: s.lastPageFailed,
	}
}
