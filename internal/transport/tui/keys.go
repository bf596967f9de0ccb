package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the widget's key bindings.
type KeyMap struct {
	Quit      key.Binding
	Focus     key.Binding
	Blur      key.Binding
	NextScope key.Binding
	PrevScope key.Binding
	Sort      key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc", "done"),
		),
		NextScope: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next poll"),
		),
		PrevScope: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev poll"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first page"),
		),
	}
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Focus, k.NextScope, k.Sort, k.PrevPage, k.NextPage, k.Quit}
}
