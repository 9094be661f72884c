package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

var (
	_ ports.SearchProvider = (*mockSearchProvider)(nil)
	_ ports.MediaSink      = (*mockMediaSink)(nil)
	_ ports.EventPublisher = (*mockEventPublisher)(nil)
	_ ports.ResultSource   = (*mockResultSource)(nil)
)

func mockTrack(id string) domain.Track {
	return domain.Track{
		ID:                domain.TrackID(id),
		Title:             "Track " + id,
		PrimaryArtistName: "Artist",
		ThumbnailCandidates: []domain.MediaVariant{
			{Quality: "500x500", URL: "http://img.example.com/" + id + ".jpg"},
		},
		PlayableSources: []domain.MediaVariant{
			{Quality: "96kbps", URL: "https://aac.example.com/" + id + "_96.mp4"},
			{Quality: "320kbps", URL: "https://aac.example.com/" + id + "_320.mp4"},
		},
	}
}

func mockTrackWithoutSource(id string) domain.Track {
	track := mockTrack(id)
	track.PlayableSources = nil
	return track
}

// mockTracks returns n tracks with IDs prefix-0 .. prefix-(n-1).
func mockTracks(prefix string, n int) []domain.Track {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = mockTrack(fmt.Sprintf("%s-%d", prefix, i))
	}
	return tracks
}

type mockSearchProvider struct {
	mu      sync.Mutex
	pages   map[string]map[int][]domain.Track // query -> page -> tracks
	errs    map[int]error                     // page -> error
	calls   []domain.SearchQuery
	blockCh chan struct{} // if set, Search waits until it is closed
}

func newMockSearchProvider() *mockSearchProvider {
	return &mockSearchProvider{
		pages: make(map[string]map[int][]domain.Track),
		errs:  make(map[int]error),
	}
}

func (m *mockSearchProvider) setPage(query string, page int, tracks []domain.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pages[query] == nil {
		m.pages[query] = make(map[int][]domain.Track)
	}
	m.pages[query][page] = tracks
}

func (m *mockSearchProvider) setErr(page int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errs[page] = err
}

func (m *mockSearchProvider) Search(
	ctx context.Context,
	query domain.SearchQuery,
) ([]domain.Track, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	blockCh := m.blockCh
	m.mu.Unlock()

	if blockCh != nil {
		select {
		case <-blockCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.errs[query.Page]; err != nil {
		return nil, err
	}
	return m.pages[query.Text][query.Page], nil
}

func (m *mockSearchProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

type mockMediaSink struct {
	mu       sync.Mutex
	calls    []string
	loaded   []string
	volumes  []float64
	seeks    []time.Duration
	looping  []bool
	loadErr  error
	playErr  error
	pauseErr error
}

func (m *mockMediaSink) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, call)
}

func (m *mockMediaSink) Load(_ context.Context, url string) error {
	m.record("load")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = append(m.loaded, url)
	return nil
}

func (m *mockMediaSink) Play(_ context.Context) error {
	m.record("play")
	return m.playErr
}

func (m *mockMediaSink) Pause(_ context.Context) error {
	m.record("pause")
	return m.pauseErr
}

func (m *mockMediaSink) Seek(_ context.Context, position time.Duration) error {
	m.record("seek")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seeks = append(m.seeks, position)
	return nil
}

func (m *mockMediaSink) SetVolume(_ context.Context, volume float64) error {
	m.record("volume")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.volumes = append(m.volumes, volume)
	return nil
}

func (m *mockMediaSink) SetLooping(_ context.Context, looping bool) error {
	m.record("loop")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.looping = append(m.looping, looping)
	return nil
}

func (m *mockMediaSink) lastVolume() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.volumes) == 0 {
		return 0, false
	}
	return m.volumes[len(m.volumes)-1], true
}

func (m *mockMediaSink) lastLoaded() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.loaded) == 0 {
		return ""
	}
	return m.loaded[len(m.loaded)-1]
}

func (m *mockMediaSink) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

type mockEventPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockEventPublisher) Publish(event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

func (m *mockEventPublisher) searchUpdates() []domain.SearchUpdatedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.SearchUpdatedEvent
	for _, e := range m.events {
		if ev, ok := e.(domain.SearchUpdatedEvent); ok {
			result = append(result, ev)
		}
	}
	return result
}

func (m *mockEventPublisher) playerUpdates() []domain.PlayerUpdatedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.PlayerUpdatedEvent
	for _, e := range m.events {
		if ev, ok := e.(domain.PlayerUpdatedEvent); ok {
			result = append(result, ev)
		}
	}
	return result
}

type mockResultSource struct {
	tracks []domain.Track
}

func (m *mockResultSource) Results() []domain.Track {
	return append([]domain.Track(nil), m.tracks...)
}
