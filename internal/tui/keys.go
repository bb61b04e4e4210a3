package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Start  key.Binding
	Mode   key.Binding
	Pause  key.Binding
	Reset  key.Binding
	Theme  key.Binding
	Back   key.Binding
	Quit   key.Binding
	inMenu bool
}

func newKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "rate +0.01")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "rate -0.01")),
		Start: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Mode:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Pause: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Theme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.inMenu {
		up, down := k.Up, k.Down
		up.SetHelp("↑↓", "select")
		down.SetEnabled(false)
		return []key.Binding{up, down, k.Start, k.Quit}
	}
	return []key.Binding{k.Mode, k.Up, k.Down, k.Pause, k.Reset, k.Theme, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
