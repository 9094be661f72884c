package tui

// searchUpdatedMsg tells the model to re-read the search snapshot.
type searchUpdatedMsg struct{}

// playerUpdatedMsg tells the model to re-read the player snapshot.
type playerUpdatedMsg struct{}

// actionDoneMsg carries the result of a service call run as a tea.Cmd.
type actionDoneMsg struct {
	action string
	err    error
}
