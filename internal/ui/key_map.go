package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	enqueue  key.Binding
	queue    key.Binding
	remove   key.Binding
	toggle   key.Binding
	next     key.Binding
	previous key.Binding
	shuffle  key.Binding
	repeat   key.Binding
	volUp    key.Binding
	volDown  key.Binding
	seekFwd  key.Binding
	seekBack key.Binding
	clear    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/play")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		enqueue:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to queue")),
		queue:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "queue")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		shuffle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		volUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		seekFwd:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek +5s")),
		seekBack: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek -5s")),
		clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear queue")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.previous, k.queue, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.toggle, k.next, k.previous, k.seekFwd, k.seekBack},
		{k.shuffle, k.repeat, k.volUp, k.volDown},
		{k.enqueue, k.queue, k.remove, k.clear, k.quit},
	}
}
