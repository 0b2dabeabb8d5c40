package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Bookmark key.Binding
	Tag      key.Binding
	Refresh  key.Binding
	Enter    key.Binding
	Escape   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	NextPage: key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next page")),
	PrevPage: key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "previous page")),
	Bookmark: key.NewBinding(key.WithKeys("b", " "), key.WithHelp("b", "toggle bookmark")),
	Tag:      key.NewBinding(key.WithKeys("t", "/"), key.WithHelp("t", "filter by tag")),
	Refresh:  key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func helpBindings() []key.Binding {
	return []key.Binding{
		keys.Up, keys.Down, keys.NextPage, keys.PrevPage,
		keys.Bookmark, keys.Tag, keys.Refresh, keys.Help, keys.Quit,
	}
}
