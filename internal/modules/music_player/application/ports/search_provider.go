package ports

import (
	"context"

	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// SearchProvider defines the interface for the external song-search service.
type SearchProvider interface {
	// Search returns one page of tracks matching the query.
	// Errors wrap domain.ErrNetwork; an empty page is returned as an empty slice.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.Track, error)
}

// ResultSource exposes the current result list to the transport.
type ResultSource interface {
	// Results returns a copy of the accumulated result list.
	Results() []domain.Track
}
