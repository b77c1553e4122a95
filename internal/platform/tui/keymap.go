package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ArenaKeyMap defines the key bindings of the match view.
type ArenaKeyMap struct {
	Left  key.Binding
	Right key.Binding
	Both  key.Binding
	Pause key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ArenaKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ArenaKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Both},
		{k.Pause, k.Help, k.Quit},
	}
}

// DefaultArenaKeyMap returns default key bindings.
func DefaultArenaKeyMap() ArenaKeyMap {
	return ArenaKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "turn left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "turn right"),
		),
		Both: key.NewBinding(
			key.WithKeys("s", "down"),
			key.WithHelp("s", "both (straight)"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Turn reports which turn keys a key message presses.
func (k ArenaKeyMap) Turn(msg tea.KeyMsg) (left, right bool) {
	switch {
	case key.Matches(msg, k.Left):
		return true, false
	case key.Matches(msg, k.Right):
		return false, true
	case key.Matches(msg, k.Both):
		return true, true
	}
	return false, false
}
