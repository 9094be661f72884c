package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// Compile-time check that SearchService can feed the transport.
var _ ports.ResultSource = (*SearchService)(nil)

// ScrollInput contains the input for the OnScroll use case.
type ScrollInput struct {
	ScrollPosition int
	ViewportHeight int
	DocumentHeight int
	Threshold      int // Optional: defaults to domain.DefaultLoadMoreThreshold
}

// SearchService turns free-text queries into a growing result list.
// Provider requests run outside the lock; the session generation guards against
// applying responses of a superseded search.
type SearchService struct {
	mu        sync.Mutex
	session   *domain.SearchSession
	provider  ports.SearchProvider
	publisher ports.EventPublisher
}

// NewSearchService creates a new SearchService.
func NewSearchService(
	provider ports.SearchProvider,
	publisher ports.EventPublisher,
) *SearchService {
	return &SearchService{
		session:   domain.NewSearchSession(),
		provider:  provider,
		publisher: publisher,
	}
}

// SubmitSearch starts a new search session for query and loads its first page.
// Provider failures and empty results are reflected in the session status, not returned.
func (s *SearchService) SubmitSearch(ctx context.Context, query string) error {
	text := domain.NormalizeQuery(query)
	if text == "" {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	generation := s.session.Begin(text)
	s.mu.Unlock()
	s.publishUpdated()

	slog.Debug("submitted search", "query", text, "generation", generation)

	tracks, err := s.provider.Search(ctx, domain.NewSearchQuery(text, 1))

	s.mu.Lock()
	var applied bool
	if err != nil {
		applied = s.session.FailFirstPage(generation)
	} else {
		applied = s.session.CompleteFirstPage(generation, tracks)
	}
	s.mu.Unlock()

	if !applied {
		slog.Debug("discarded stale search response", "query", text, "generation", generation)
		return ErrStaleResponse
	}

	if err != nil {
		slog.Error("failed to fetch songs", "query", text, "page", 1, "error", err)
	} else {
		slog.Info("fetched songs", "query", text, "page", 1, "count", len(tracks))
	}

	s.publishUpdated()
	return nil
}

// LoadNextPage requests the page after the current cursor and appends its tracks.
// An empty or failed page leaves the cursor and results unchanged.
func (s *SearchService) LoadNextPage(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case !s.session.HasActiveQuery():
		s.mu.Unlock()
		return ErrNoActiveQuery
	case s.session.IsLoading():
		s.mu.Unlock()
		return ErrLoadInFlight
	case s.session.IsExhausted():
		s.mu.Unlock()
		return ErrPaginationExhausted
	}

	generation, page, ok := s.session.BeginNextPage()
	query := s.session.Query()
	s.mu.Unlock()

	if !ok {
		return ErrLoadInFlight
	}
	s.publishUpdated()

	tracks, err := s.provider.Search(ctx, domain.NewSearchQuery(query, page))

	s.mu.Lock()
	var applied bool
	if err != nil {
		applied = s.session.FailNextPage(generation)
	} else {
		applied = s.session.CompleteNextPage(generation, page, tracks)
	}
	s.mu.Unlock()

	if !applied {
		slog.Debug("discarded stale page response", "query", query, "page", page)
		return ErrStaleResponse
	}

	switch {
	case err != nil:
		slog.Error("failed to load more songs", "query", query, "page", page, "error", err)
	case len(tracks) == 0:
		slog.Info("reached end of results", "query", query, "page", page)
	default:
		slog.Debug("loaded more songs", "query", query, "page", page, "count", len(tracks))
	}

	s.publishUpdated()
	return nil
}

// OnScroll evaluates the load-more trigger for a scroll notification and loads the next
// page when it fires. Returns false if the trigger did not fire.
func (s *SearchService) OnScroll(ctx context.Context, input ScrollInput) (bool, error) {
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = domain.DefaultLoadMoreThreshold
	}

	if !domain.ShouldLoadMore(
		input.ScrollPosition,
		input.ViewportHeight,
		input.DocumentHeight,
		threshold,
	) {
		return false, nil
	}

	return true, s.LoadNextPage(ctx)
}

// Snapshot returns a copy of the current session.
func (s *SearchService) Snapshot() domain.SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session.Snapshot()
}

// Results returns a copy of the accumulated result list.
func (s *SearchService) Results() []domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session.Results().Tracks()
}

func (s *SearchService) publishUpdated() {
	if s.publisher == nil {
		return
	}

	s.mu.Lock()
	event := domain.SearchUpdatedEvent{
		Generation:  s.session.Generation(),
		Status:      s.session.Status(),
		PageCursor:  s.session.PageCursor(),
		ResultCount: s.session.Results().Len(),
	}
	s.mu.Unlock()

	if err := s.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish search update", "error", err)
	}
}
