package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the terminal view.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Box      lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Hint     lipgloss.Style
	Track    lipgloss.Style
	Artist   lipgloss.Style
	Warning  lipgloss.Style
	Faint    lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	s := Styles{}
	s.App = lipgloss.NewStyle().Padding(0, 1)
	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)
	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(lipgloss.Color("#7D56F4")).
		Padding(0, 1)
	s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("#A49FA5"))
	s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	s.Hint = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
	s.Track = lipgloss.NewStyle().Bold(true)
	s.Artist = lipgloss.NewStyle().Foreground(lipgloss.Color("#A49FA5"))
	s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Bold(true)
	s.Faint = lipgloss.NewStyle().Faint(true)
	s.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#EE6FF8"))
	return s
}
