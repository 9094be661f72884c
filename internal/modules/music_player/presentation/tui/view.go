package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/usecases"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && (m.width < minWidth || m.height < minHeight) {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, "Terminal too small")
	}

	sections := []string{
		m.styles.Title.Render("streamify"),
		m.input.View(),
		m.searchView(),
	}
	if m.status != "" {
		sections = append(sections, m.styles.Error.Render(m.status))
	}
	sections = append(sections, m.playerView(), m.help.View(m.keys))

	return m.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) searchView() string {
	state := m.searchState

	if len(state.Results) == 0 {
		switch state.Status {
		case usecases.SearchStatusLoading:
			return m.spinner.View() + " " + m.styles.Status.Render(state.Message)
		case usecases.SearchStatusError:
			return m.styles.Error.Render(state.Message)
		default:
			return m.styles.Status.Render(state.Message)
		}
	}

	var footer string
	switch {
	case state.Status == usecases.SearchStatusLoading:
		footer = m.spinner.View() + " " + m.styles.Hint.Render("loading more...")
	case state.LastPageFailed:
		footer = m.styles.Error.Render("Failed to load more songs, scroll to retry")
	case state.Exhausted:
		footer = m.styles.Hint.Render("End of results")
	default:
		footer = m.styles.Hint.Render(fmt.Sprintf("%d songs", len(state.Results)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.results.View(), footer)
}

func (m Model) playerView() string {
	state := m.playerState
	if state.Track == nil {
		return m.styles.Box.Render(m.styles.Status.Render("Nothing playing"))
	}

	track := state.Track
	heading := fmt.Sprintf("%s %s  %s",
		phaseIcon(state.Phase),
		m.styles.Track.Render(track.Title),
		m.styles.Artist.Render(track.PrimaryArtistName),
	)

	var percent float64
	if state.Duration > 0 {
		percent = float64(state.Position) / float64(state.Duration)
	}
	bar := fmt.Sprintf("%s %s %s",
		usecases.FormatDuration(state.Position),
		m.progress.ViewAs(percent),
		usecases.FormatDuration(state.Duration),
	)

	settings := []string{fmt.Sprintf("vol %d%%", int(state.Volume*100+0.5))}
	if state.IsMuted {
		settings = append(settings, "muted")
	}
	if state.LoopMode == usecases.LoopModeTrack {
		settings = append(settings, "loop")
	}

	lines := []string{heading, bar, m.styles.Status.Render(strings.Join(settings, " · "))}
	if state.SourceUnavailable {
		lines = append(lines, m.styles.Warning.Render("no audio available"))
	}
	lines = append(lines, m.styles.Faint.Render(
		track.ThumbnailURL(m.options.ThumbnailQuality, m.options.PlaceholderImage),
	))

	return m.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func phaseIcon(phase usecases.PlaybackPhase) string {
	switch phase {
	case usecases.PhasePlaying:
		return "▶"
	case usecases.PhaseStarting:
		return "…"
	default:
		return "⏸"
	}
}
