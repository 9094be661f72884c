package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultSaavnEndpoint is the public song search endpoint.
	DefaultSaavnEndpoint = "https://saavn.dev/api/search/songs"

	saavnUserAgent   = "streamify/1.0"
	maxResponseBytes = 4 << 20
)

// Ensure SaavnClient implements ports.SearchProvider.
var _ ports.SearchProvider = (*SaavnClient)(nil)

// SaavnConfig contains the search provider connection settings.
type SaavnConfig struct {
	Endpoint  string
	Timeout   time.Duration
	RateLimit float64 // Requests per second; zero disables limiting
	RateBurst int
}

// SaavnClient searches songs on a saavn.dev compatible API.
type SaavnClient struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSaavnClient creates a new SaavnClient.
func NewSaavnClient(config SaavnConfig) *SaavnClient {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = DefaultSaavnEndpoint
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(config.RateBurst, 1))
	}

	return &SaavnClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Search returns one page of songs matching query.
func (c *SaavnClient) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Track, error) {
	if !query.IsValid() {
		return nil, fmt.Errorf("invalid search query %q page %d", query.Text, query.Page)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}

	requestURL, err := c.searchURL(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", saavnUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", domain.ErrNetwork, err)
	}

	tracks, err := parseSearchResponse(body)
	if err != nil {
		return nil, err
	}

	slog.Debug("search provider responded",
		"query", query.Text,
		"page", query.Page,
		"count", len(tracks),
	)

	return tracks, nil
}

func (c *SaavnClient) searchURL(query domain.SearchQuery) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint %q: %w", c.endpoint, err)
	}

	values := u.Query()
	values.Set("query", query.Text)
	values.Set("page", strconv.Itoa(query.Page))
	u.RawQuery = values.Encode()

	return u.String(), nil
}

// parseSearchResponse extracts tracks from a search response body.
// Records without an id or name are skipped; a body without data.results is malformed.
func parseSearchResponse(body []byte) ([]domain.Track, error) {
	if success, err := jsonparser.GetBoolean(body, "success"); err == nil && !success {
		return nil, fmt.Errorf("%w: provider reported failure", domain.ErrNetwork)
	}

	results, dataType, _, err := jsonparser.Get(body, "data", "results")
	if err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", domain.ErrNetwork, err)
	}
	if dataType == jsonparser.Null {
		return []domain.Track{}, nil
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("%w: malformed response: results is %s", domain.ErrNetwork, dataType)
	}

	tracks := make([]domain.Track, 0)
	skipped := 0
	_, err = jsonparser.ArrayEach(results, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.Object {
			skipped++
			return
		}

		track, ok := parseTrack(value)
		if !ok {
			skipped++
			return
		}
		tracks = append(tracks, track)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: malformed results: %w", domain.ErrNetwork, err)
	}

	if skipped > 0 {
		slog.Warn("skipped malformed search results", "count", skipped)
	}

	return tracks, nil
}

func parseTrack(value []byte) (domain.Track, bool) {
	id, err := jsonparser.GetString(value, "id")
	if err != nil || id == "" {
		return domain.Track{}, false
	}

	name, err := jsonparser.GetString(value, "name")
	if err != nil || name == "" {
		return domain.Track{}, false
	}

	track := domain.NewTrack(
		domain.TrackID(id),
		html.UnescapeString(name),
		html.UnescapeString(primaryArtist(value)),
		parseVariants(value, "image"),
		parseVariants(value, "downloadUrl"),
	)
	return *track, true
}

func primaryArtist(value []byte) string {
	if name, err := jsonparser.GetString(value, "artists", "primary", "[0]", "name"); err == nil && name != "" {
		return name
	}
	if name, err := jsonparser.GetString(value, "primaryArtists"); err == nil {
		return name
	}
	return ""
}

// parseVariants reads a [{quality, url}] array. Older API versions name the URL "link".
func parseVariants(value []byte, key string) []domain.MediaVariant {
	var variants []domain.MediaVariant

	_, err := jsonparser.ArrayEach(value, func(item []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.Object {
			return
		}

		quality, _ := jsonparser.GetString(item, "quality")
		link, err := jsonparser.GetString(item, "url")
		if err != nil {
			link, _ = jsonparser.GetString(item, "link")
		}
		if quality == "" || link == "" {
			return
		}

		variants = append(variants, domain.MediaVariant{Quality: quality, URL: link})
	}, key)
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		slog.Debug("ignored malformed media variants", "key", key, "error", err)
	}

	return variants
}
