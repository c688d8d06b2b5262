package tui

import "charm.land/bubbles/v2/key"

// KeyMap holds the board key bindings
type KeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	NextStage key.Binding
	PrevStage key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Grab      key.Binding
	Drop      key.Binding
	Cancel    key.Binding
	Favorite  key.Binding
	Search    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns vim-style bindings with arrow key fallbacks
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev column")),
		Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next column")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		NextStage: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "next stage")),
		PrevStage: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "prev stage")),
		MoveUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Grab:      key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "pick up")),
		Drop:      key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.NextStage, k.PrevStage, k.Search, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Grab, k.Drop, k.Cancel},
		{k.NextStage, k.PrevStage, k.MoveUp, k.MoveDown},
		{k.Favorite, k.Search, k.Help, k.Quit},
	}
}
