package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	toggle  key.Binding
	left    key.Binding
	right   key.Binding
	faster  key.Binding
	slower  key.Binding
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	preview key.Binding
	stop    key.Binding
	save    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "emotion")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "color -")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "color +")),
		faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "motor +")),
		slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "motor -")),
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select track")),
		preview: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "preview")),
		stop:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
		save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.left, k.right, k.enter, k.save, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.left, k.right},
		{k.faster, k.slower},
		{k.up, k.down, k.enter},
		{k.preview, k.stop},
		{k.save, k.quit},
	}
}
