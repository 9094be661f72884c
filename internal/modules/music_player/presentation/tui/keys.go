package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search    key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	Up        key.Binding
	Down      key.Binding
	PlayPause key.Binding
	Next      key.Binding
	Previous  key.Binding
	Loop      key.Binding
	Mute      key.Binding
	VolumeUp  key.Binding
	VolumeDn  key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "results")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Previous:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		Loop:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "loop")),
		Mute:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		VolumeUp:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDn:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		SeekBack:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5s")),
		SeekFwd:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5s")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Submit, k.PlayPause, k.Next, k.Previous, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Submit, k.Cancel, k.Up, k.Down},
		{k.PlayPause, k.Next, k.Previous, k.Loop},
		{k.Mute, k.VolumeUp, k.VolumeDn, k.SeekBack, k.SeekFwd},
		{k.Help, k.Quit},
	}
}
