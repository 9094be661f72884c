package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// DefaultSearchCacheEntries bounds the number of cached pages.
const DefaultSearchCacheEntries = 256

// Ensure MemorySearchCache implements ports.SearchProvider.
var _ ports.SearchProvider = (*MemorySearchCache)(nil)

type cachedPage struct {
	tracks   []domain.Track
	storedAt time.Time
}

// MemorySearchCache is an in-memory cache in front of a SearchProvider.
// Only non-empty pages are cached; errors and empty pages always reach the provider.
type MemorySearchCache struct {
	provider   ports.SearchProvider
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu    sync.RWMutex
	pages map[domain.SearchQuery]cachedPage
}

// NewMemorySearchCache creates a cache keeping pages for ttl.
func NewMemorySearchCache(provider ports.SearchProvider, ttl time.Duration, maxEntries int) *MemorySearchCache {
	if maxEntries <= 0 {
		maxEntries = DefaultSearchCacheEntries
	}
	return &MemorySearchCache{
		provider:   provider,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		pages:      make(map[domain.SearchQuery]cachedPage),
	}
}

// Search returns the cached page for query, or asks the provider and caches its answer.
func (c *MemorySearchCache) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Track, error) {
	if tracks, ok := c.get(query); ok {
		return tracks, nil
	}

	tracks, err := c.provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(tracks) > 0 {
		c.put(query, tracks)
	}
	return tracks, nil
}

func (c *MemorySearchCache) get(query domain.SearchQuery) ([]domain.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	page, ok := c.pages[query]
	if !ok || c.now().Sub(page.storedAt) > c.ttl {
		return nil, false
	}
	return append([]domain.Track(nil), page.tracks...), true
}

func (c *MemorySearchCache) put(query domain.SearchQuery, tracks []domain.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, page := range c.pages {
		if now.Sub(page.storedAt) > c.ttl {
			delete(c.pages, key)
		}
	}
	if len(c.pages) >= c.maxEntries {
		c.evictOldest()
	}

	c.pages[query] = cachedPage{
		tracks:   append([]domain.Track(nil), tracks...),
		storedAt: now,
	}
}

func (c *MemorySearchCache) evictOldest() {
	var oldestKey domain.SearchQuery
	var oldest time.Time
	for key, page := range c.pages {
		if oldest.IsZero() || page.storedAt.Before(oldest) {
			oldestKey, oldest = key, page.storedAt
		}
	}
	delete(c.pages, oldestKey)
}

// Len returns the number of cached pages (for testing/monitoring).
func (c *MemorySearchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pages)
}
