package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	switchTab key.Binding
	filter    key.Binding
	addTag    key.Binding
	removeTag key.Binding
	remove    key.Binding
	sync      key.Binding
	back      key.Binding
	yes       key.Binding
	no        key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		switchTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "videos/photos")),
		filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle tag filter")),
		addTag:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add tag")),
		removeTag: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove tag")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		sync:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.switchTab, k.filter, k.addTag, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.switchTab},
		{k.filter, k.addTag, k.removeTag, k.remove},
		{k.sync, k.help, k.quit},
	}
}
