// Package tui is the terminal viewer: it drives a match from the Bubble Tea
// loop, draws the arena and feeds keyboard input to the human player.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-arena/internal/arena"
	"github.com/vovakirdan/snake-arena/internal/core"
)

// TickMsg is sent to trigger a simulation tick.
type TickMsg time.Time

// tickDoneMsg carries the outcome of a tick that ran off the UI goroutine.
type tickDoneMsg struct {
	result  arena.TickResult
	players []arena.PlayerResult
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	interval := core.RuntimeConfig{TickRate: tickRate}.TickInterval()
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
