package tui

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearch struct {
	snapshot  usecases.SearchSnapshot
	submitted []string
	scrolls   []usecases.ScrollInput
	err       error
}

func (f *fakeSearch) SubmitSearch(_ context.Context, query string) error {
	f.submitted = append(f.submitted, query)
	return f.err
}

func (f *fakeSearch) OnScroll(_ context.Context, input usecases.ScrollInput) (bool, error) {
	f.scrolls = append(f.scrolls, input)
	return false, f.err
}

func (f *fakeSearch) Snapshot() usecases.SearchSnapshot { return f.snapshot }

type fakeTransport struct {
	snapshot usecases.PlayerSnapshot
	calls    []string
	selected []usecases.SelectTrackInput
	volumes  []float64
	seeks    []time.Duration
	err      error
}

func (f *fakeTransport) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeTransport) SelectTrack(_ context.Context, input usecases.SelectTrackInput) error {
	f.selected = append(f.selected, input)
	return f.record("select")
}

func (f *fakeTransport) TogglePlayPause(context.Context) error { return f.record("toggle") }
func (f *fakeTransport) PlayNext(context.Context) error        { return f.record("next") }
func (f *fakeTransport) PlayPrevious(context.Context) error    { return f.record("previous") }
func (f *fakeTransport) ToggleMute(context.Context) error      { return f.record("mute") }
func (f *fakeTransport) ToggleLoop(context.Context) error      { return f.record("loop") }

func (f *fakeTransport) SetVolume(_ context.Context, volume float64) error {
	f.volumes = append(f.volumes, volume)
	return f.record("volume")
}

func (f *fakeTransport) SeekBy(_ context.Context, delta time.Duration) error {
	f.seeks = append(f.seeks, delta)
	return f.record("seek")
}

func (f *fakeTransport) Snapshot() usecases.PlayerSnapshot { return f.snapshot }

func testTrack(id string) usecases.Track {
	return *domain.NewTrack(
		domain.TrackID(id),
		"Song "+id,
		"Artist "+id,
		[]domain.MediaVariant{{Quality: "500x500", URL: "http://img.example.com/" + id + ".jpg"}},
		[]domain.MediaVariant{{Quality: "320kbps", URL: "https://aac.example.com/" + id + ".mp4"}},
	)
}

func newTestModel(t *testing.T) (Model, *fakeSearch, *fakeTransport) {
	t.Helper()

	search := &fakeSearch{snapshot: usecases.SearchSnapshot{Message: domain.MessageGetStarted}}
	transport := &fakeTransport{snapshot: usecases.PlayerSnapshot{Index: domain.NoIndex, Volume: 0.5}}

	m := NewModel(context.Background(), search, transport, Options{
		ThumbnailQuality: "500x500",
		PlaceholderImage: "placeholder.png",
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	return m, search, transport
}

// withResults loads tracks into the model and moves focus to the result list.
func withResults(t *testing.T, m Model, search *fakeSearch, tracks ...usecases.Track) Model {
	t.Helper()

	search.snapshot = usecases.SearchSnapshot{
		Query:      "q",
		PageCursor: 1,
		Generation: 1,
		Results:    tracks,
	}
	m = update(t, m, searchUpdatedMsg{})
	return update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	updated, _ := m.Update(msg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model
}

// press sends a key and runs the resulting command, feeding its result back.
func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()

	updated, cmd := m.Update(msg)
	model := updated.(Model)
	if cmd == nil {
		return model
	}
	if result, ok := cmd().(actionDoneMsg); ok {
		model = update(t, model, result)
	}
	return model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_SubmitSearch(t *testing.T) {
	m, search, _ := newTestModel(t)

	require.True(t, m.input.Focused())
	for _, r := range "lo-fi" {
		m = update(t, m, runes(string(r)))
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"lo-fi"}, search.submitted)
	assert.False(t, m.input.Focused())
}

func TestModel_SearchKeyFocusesInput(t *testing.T) {
	m, search, _ := newTestModel(t)
	m = withResults(t, m, search, testTrack("a"))

	m = update(t, m, runes("/"))

	assert.True(t, m.input.Focused())
	assert.Empty(t, m.input.Value())
}

func TestModel_PlaySelectedRow(t *testing.T) {
	m, search, transport := newTestModel(t)
	tracks := []usecases.Track{testTrack("a"), testTrack("b"), testTrack("c")}
	m = withResults(t, m, search, tracks...)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, transport.selected, 1)
	assert.Equal(t, 1, transport.selected[0].Index)
	assert.Equal(t, tracks[1].ID, transport.selected[0].Track.ID)
}

func TestModel_CursorEvaluatesLoadMore(t *testing.T) {
	m, search, _ := newTestModel(t)
	m = withResults(t, m, search, testTrack("a"), testTrack("b"), testTrack("c"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})

	require.Len(t, search.scrolls, 2)
	assert.Equal(t, usecases.ScrollInput{
		ScrollPosition: 2,
		ViewportHeight: 1,
		DocumentHeight: 3,
		Threshold:      DefaultLoadMoreThreshold,
	}, search.scrolls[1])
}

func TestModel_TransportKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want string
	}{
		{name: "space toggles playback", key: tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, want: "toggle"},
		{name: "n plays next", key: runes("n"), want: "next"},
		{name: "p plays previous", key: runes("p"), want: "previous"},
		{name: "l toggles loop", key: runes("l"), want: "loop"},
		{name: "m toggles mute", key: runes("m"), want: "mute"},
		{name: "right seeks", key: tea.KeyMsg{Type: tea.KeyRight}, want: "seek"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, search, transport := newTestModel(t)
			m = withResults(t, m, search, testTrack("a"))

			_ = press(t, m, tt.key)

			assert.Equal(t, []string{tt.want}, transport.calls)
		})
	}
}

func TestModel_VolumeAndSeekSteps(t *testing.T) {
	m, search, transport := newTestModel(t)
	m = withResults(t, m, search, testTrack("a"))

	m = press(t, m, runes("+"))
	m = press(t, m, runes("-"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	_ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	require.Len(t, transport.volumes, 2)
	assert.InDelta(t, 0.55, transport.volumes[0], 1e-9)
	assert.InDelta(t, 0.45, transport.volumes[1], 1e-9)
	assert.Equal(t, []time.Duration{-5 * time.Second, 5 * time.Second}, transport.seeks)
}

func TestModel_ActionErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{name: "guard errors are ignored", err: usecases.ErrLoadInFlight},
		{name: "exhausted pagination is ignored", err: usecases.ErrPaginationExhausted},
		{name: "stale response is ignored", err: usecases.ErrStaleResponse},
		{name: "track without audio is ignored", err: usecases.ErrNoPlayableSource},
		{name: "empty result list is shown", err: usecases.ErrResultListEmpty, wantStatus: "the result list is empty"},
		{name: "other errors are shown", err: errors.New("boom"), wantStatus: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(t)

			m = update(t, m, actionDoneMsg{action: "test", err: tt.err})

			assert.Equal(t, tt.wantStatus, m.status)
		})
	}
}

func TestModel_MarksCurrentRow(t *testing.T) {
	m, search, transport := newTestModel(t)
	m = withResults(t, m, search, testTrack("a"), testTrack("b"))

	current := testTrack("b")
	transport.snapshot = usecases.PlayerSnapshot{Track: &current, Index: 1, Phase: usecases.PhasePlaying}
	m = update(t, m, playerUpdatedMsg{})

	items := m.results.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Song a", items[0].(resultItem).Title())
	assert.Equal(t, "♪ Song b", items[1].(resultItem).Title())
}

func TestModel_CurrentRowFollowsTrackAcrossSearches(t *testing.T) {
	m, search, transport := newTestModel(t)
	m = withResults(t, m, search, testTrack("a"), testTrack("b"))

	current := testTrack("b")
	transport.snapshot = usecases.PlayerSnapshot{Track: &current, Index: 1, Phase: usecases.PhasePlaying}
	m = update(t, m, playerUpdatedMsg{})

	search.snapshot.Generation = 2
	search.snapshot.Results = []usecases.Track{testTrack("c"), testTrack("d")}
	m = update(t, m, searchUpdatedMsg{})

	items := m.results.Items()
	require.Len(t, items, 2)
	for _, item := range items {
		assert.False(t, item.(resultItem).current, "unexpected marker on %s", item.(resultItem).track.ID)
	}
}

func TestModel_NewSearchResetsCursor(t *testing.T) {
	m, search, _ := newTestModel(t)
	m = withResults(t, m, search, testTrack("a"), testTrack("b"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.results.Index())

	search.snapshot.Generation = 2
	search.snapshot.Results = []usecases.Track{testTrack("c"), testTrack("d")}
	m = update(t, m, searchUpdatedMsg{})

	assert.Equal(t, 0, m.results.Index())
}

func TestModel_View(t *testing.T) {
	t.Run("idle search", func(t *testing.T) {
		m, _, _ := newTestModel(t)

		view := m.View()
		assert.Contains(t, view, domain.MessageGetStarted)
		assert.Contains(t, view, "Nothing playing")
	})

	t.Run("failed search", func(t *testing.T) {
		m, search, _ := newTestModel(t)
		search.snapshot = usecases.SearchSnapshot{
			Query:   "q",
			Status:  usecases.SearchStatusError,
			Message: domain.MessageFetchError,
		}
		m = update(t, m, searchUpdatedMsg{})

		assert.Contains(t, m.View(), domain.MessageFetchError)
	})

	t.Run("end of results", func(t *testing.T) {
		m, search, _ := newTestModel(t)
		m = withResults(t, m, search, testTrack("a"))
		search.snapshot.Exhausted = true
		m = update(t, m, searchUpdatedMsg{})

		assert.Contains(t, m.View(), "End of results")
	})

	t.Run("track without audio", func(t *testing.T) {
		m, _, transport := newTestModel(t)
		track := testTrack("a")
		transport.snapshot = usecases.PlayerSnapshot{
			Track:             &track,
			Index:             0,
			Phase:             usecases.PhasePaused,
			Volume:            0.8,
			IsMuted:           true,
			LoopMode:          usecases.LoopModeTrack,
			Position:          65400 * time.Millisecond,
			Duration:          200 * time.Second,
			SourceUnavailable: true,
		}
		m = update(t, m, playerUpdatedMsg{})

		view := m.View()
		assert.Contains(t, view, "Song a")
		assert.Contains(t, view, "1:05")
		assert.Contains(t, view, "3:20")
		assert.Contains(t, view, "vol 80%")
		assert.Contains(t, view, "muted")
		assert.Contains(t, view, "loop")
		assert.Contains(t, view, "no audio available")
		assert.Contains(t, view, "https://img.example.com/a.jpg")
	})
}

type captureSubscriber struct {
	handlers map[reflect.Type]func(context.Context, domain.Event)
}

func (s *captureSubscriber) Subscribe(eventType reflect.Type, handler func(context.Context, domain.Event)) error {
	s.handlers[eventType] = handler
	return nil
}

func TestSubscribeUpdates(t *testing.T) {
	subscriber := &captureSubscriber{handlers: map[reflect.Type]func(context.Context, domain.Event){}}

	var mu sync.Mutex
	var received []tea.Msg
	send := func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
	}

	require.NoError(t, SubscribeUpdates(subscriber, send))
	require.Len(t, subscriber.handlers, 2)

	subscriber.handlers[reflect.TypeOf((*domain.SearchUpdatedEvent)(nil)).Elem()](context.Background(), domain.SearchUpdatedEvent{})
	subscriber.handlers[reflect.TypeOf((*domain.PlayerUpdatedEvent)(nil)).Elem()](context.Background(), domain.PlayerUpdatedEvent{})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []tea.Msg{searchUpdatedMsg{}, playerUpdatedMsg{}}, received)
}
