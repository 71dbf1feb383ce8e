package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Pick   key.Binding
	Cancel key.Binding
	Return key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pool")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "slots")),
		Pick:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "pick/drop")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Return: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "to pool")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Pick, k.Cancel, k.Return, k.Quit}
}
