package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/usecases"
)

const (
	volumeStep = 0.05
	seekStep   = 5 * time.Second

	// DefaultLoadMoreThreshold is the number of rows below the cursor within which the
	// next page is requested.
	DefaultLoadMoreThreshold = 5

	minWidth  = 40
	minHeight = 16
)

// SearchController is the search use case surface used by the view.
type SearchController interface {
	SubmitSearch(ctx context.Context, query string) error
	OnScroll(ctx context.Context, input usecases.ScrollInput) (bool, error)
	Snapshot() usecases.SearchSnapshot
}

// TransportController is the transport use case surface used by the view.
type TransportController interface {
	SelectTrack(ctx context.Context, input usecases.SelectTrackInput) error
	TogglePlayPause(ctx context.Context) error
	PlayNext(ctx context.Context) error
	PlayPrevious(ctx context.Context) error
	SetVolume(ctx context.Context, volume float64) error
	ToggleMute(ctx context.Context) error
	ToggleLoop(ctx context.Context) error
	SeekBy(ctx context.Context, delta time.Duration) error
	Snapshot() usecases.PlayerSnapshot
}

// Compile-time interface checks.
var (
	_ SearchController    = (*usecases.SearchService)(nil)
	_ TransportController = (*usecases.TransportService)(nil)
)

// Options configures the terminal view.
type Options struct {
	ThumbnailQuality  string
	PlaceholderImage  string
	LoadMoreThreshold int
}

// Model is the bubbletea model of the search and player screen.
type Model struct {
	ctx       context.Context
	search    SearchController
	transport TransportController
	options   Options

	keys     keyMap
	help     help.Model
	input    textinput.Model
	results  list.Model
	spinner  spinner.Model
	progress progress.Model
	styles   Styles

	searchState usecases.SearchSnapshot
	playerState usecases.PlayerSnapshot
	status      string
	width       int
	height      int
}

// NewModel creates the view over the given services. Service calls run with ctx.
func NewModel(
	ctx context.Context,
	search SearchController,
	transport TransportController,
	options Options,
) Model {
	if options.LoadMoreThreshold <= 0 {
		options.LoadMoreThreshold = DefaultLoadMoreThreshold
	}

	ti := textinput.New()
	ti.Placeholder = "Search for songs..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Focus()

	delegate := list.NewDefaultDelegate()
	li := list.New([]list.Item{}, delegate, 0, 0)
	li.SetShowTitle(false)
	li.SetShowStatusBar(false)
	li.SetShowHelp(false)
	li.SetFilteringEnabled(false)
	li.SetShowPagination(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		search:      search,
		transport:   transport,
		options:     options,
		keys:        defaultKeyMap(),
		help:        help.New(),
		input:       ti,
		results:     li,
		spinner:     sp,
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		styles:      DefaultStyles(),
		searchState: search.Snapshot(),
		playerState: transport.Snapshot(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchUpdatedMsg:
		return m, m.refreshSearch()

	case playerUpdatedMsg:
		m.playerState = m.transport.Snapshot()
		return m, m.refreshItems()

	case actionDoneMsg:
		m.handleActionResult(msg)
		m.playerState = m.transport.Snapshot()
		return m, m.refreshSearch()

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateResults(msg)
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		query := m.input.Value()
		m.input.Blur()
		m.status = ""
		return m, m.run("search", func(ctx context.Context) error {
			return m.search.SubmitSearch(ctx, query)
		})

	case key.Matches(msg, m.keys.Cancel):
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.results.CursorUp()
		return m, m.checkLoadMore()

	case key.Matches(msg, m.keys.Down):
		m.results.CursorDown()
		return m, m.checkLoadMore()

	case key.Matches(msg, m.keys.Submit):
		index := m.results.Index()
		item, ok := m.results.SelectedItem().(resultItem)
		if !ok {
			return m, nil
		}
		return m, m.run("select", func(ctx context.Context) error {
			return m.transport.SelectTrack(ctx, usecases.SelectTrackInput{Track: item.track, Index: index})
		})

	case key.Matches(msg, m.keys.PlayPause):
		return m, m.run("play/pause", m.transport.TogglePlayPause)

	case key.Matches(msg, m.keys.Next):
		return m, m.run("next", m.transport.PlayNext)

	case key.Matches(msg, m.keys.Previous):
		return m, m.run("previous", m.transport.PlayPrevious)

	case key.Matches(msg, m.keys.Loop):
		return m, m.run("loop", m.transport.ToggleLoop)

	case key.Matches(msg, m.keys.Mute):
		return m, m.run("mute", m.transport.ToggleMute)

	case key.Matches(msg, m.keys.VolumeUp):
		return m, m.stepVolume(volumeStep)

	case key.Matches(msg, m.keys.VolumeDn):
		return m, m.stepVolume(-volumeStep)

	case key.Matches(msg, m.keys.SeekBack):
		return m, m.run("seek", func(ctx context.Context) error {
			return m.transport.SeekBy(ctx, -seekStep)
		})

	case key.Matches(msg, m.keys.SeekFwd):
		return m, m.run("seek", func(ctx context.Context) error {
			return m.transport.SeekBy(ctx, seekStep)
		})
	}

	return m, nil
}

// run wraps a service call into a command reporting its outcome.
func (m Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) stepVolume(delta float64) tea.Cmd {
	return m.run("volume", func(ctx context.Context) error {
		return m.transport.SetVolume(ctx, m.transport.Snapshot().Volume+delta)
	})
}

// checkLoadMore evaluates the load-more predicate in rows: the cursor row is the scroll
// position and the viewport is one row tall.
func (m Model) checkLoadMore() tea.Cmd {
	input := usecases.ScrollInput{
		ScrollPosition: m.results.Index(),
		ViewportHeight: 1,
		DocumentHeight: len(m.results.Items()),
		Threshold:      m.options.LoadMoreThreshold,
	}
	return m.run("load more", func(ctx context.Context) error {
		_, err := m.search.OnScroll(ctx, input)
		return err
	})
}

func (m *Model) handleActionResult(msg actionDoneMsg) {
	switch {
	case msg.err == nil:
		if msg.action != "load more" {
			m.status = ""
		}
	case isIgnorable(msg.err):
		slog.Debug("ignored request", "action", msg.action, "reason", msg.err)
	default:
		slog.Warn("request failed", "action", msg.action, "error", msg.err)
		m.status = msg.err.Error()
	}
}

// isIgnorable returns true for guard errors that mean "nothing to do".
func isIgnorable(err error) bool {
	return errors.Is(err, usecases.ErrEmptyQuery) ||
		errors.Is(err, usecases.ErrNoActiveQuery) ||
		errors.Is(err, usecases.ErrLoadInFlight) ||
		errors.Is(err, usecases.ErrPaginationExhausted) ||
		errors.Is(err, usecases.ErrStaleResponse) ||
		errors.Is(err, usecases.ErrNoPlayableSource) ||
		errors.Is(err, context.Canceled)
}

func (m *Model) refreshSearch() tea.Cmd {
	previous := m.searchState.Generation
	m.searchState = m.search.Snapshot()

	cmd := m.refreshItems()
	if m.searchState.Generation != previous {
		m.results.ResetSelected()
	}
	return cmd
}

func (m *Model) refreshItems() tea.Cmd {
	// The selection keeps its index after a new search replaced the rows, so the
	// track must match too.
	current := m.playerState.Track
	items := make([]list.Item, len(m.searchState.Results))
	for i, track := range m.searchState.Results {
		items[i] = resultItem{
			track:   track,
			current: current != nil && i == m.playerState.Index && track.ID == current.ID,
		}
	}
	return m.results.SetItems(items)
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height

	inner := max(width-m.styles.App.GetHorizontalFrameSize()-m.styles.Box.GetHorizontalFrameSize(), 10)
	m.input.Width = max(inner-4, 10)
	m.progress.Width = max(inner-16, 10)
	m.help.Width = inner

	// title, input, status, hint, player box and help
	reserved := 14
	m.results.SetSize(inner, max(height-reserved, 2))
}

// resultItem is one row of the result list.
type resultItem struct {
	track   usecases.Track
	current bool
}

// Title implements list.DefaultItem.
func (i resultItem) Title() string {
	if i.current {
		return "♪ " + i.track.Title
	}
	return i.track.Title
}

// Description implements list.DefaultItem.
func (i resultItem) Description() string {
	if i.track.PrimaryArtistName == "" {
		return "Unknown artist"
	}
	return i.track.PrimaryArtistName
}

// FilterValue implements list.Item.
func (i resultItem) FilterValue() string { return i.track.Title }
