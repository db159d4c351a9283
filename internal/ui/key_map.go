package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Round-view actions use ctrl chords so plain letters flow into the guess
// input untouched.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	play    key.Binding
	reveal  key.Binding
	scores  key.Binding
	history key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		play:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "play clip")),
		reveal:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "more time")),
		scores:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "high scores")),
		history: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "play again")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.play, k.reveal, k.back},
		{k.scores, k.history, k.restart, k.quit},
	}
}
