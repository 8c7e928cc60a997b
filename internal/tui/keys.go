package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add      key.Binding
	Complete key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:      key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add")),
		Complete: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "bought")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add item")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// listKeys extends the list's own help.
func (k keyMap) listKeys() []key.Binding {
	return []key.Binding{k.Add, k.Complete}
}
