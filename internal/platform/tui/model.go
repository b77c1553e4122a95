package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-arena/internal/arena"
	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// footerLines is the space kept below the arena for standings and help.
const footerLines = 2

// Options configures the match view.
type Options struct {
	Human    *controller.HumanController // nil when no keyboard player
	ArenaW   float64
	ArenaH   float64
	TickRate int
	Width    int
	Height   int
}

// Model is the Bubble Tea model that runs a match.
//
// Ticks run in a command off the UI goroutine, one at a time. The view only
// reads the frozen snapshot and standings the last tick produced.
type Model struct {
	ctx      context.Context
	match    *arena.Match
	opts     Options
	screen   *core.Screen
	keys     ArenaKeyMap
	help     help.Model
	inflight *sync.WaitGroup

	snapshot *world.WorldSnapshot
	players  []arena.PlayerResult
	busy     bool
	paused   bool
	quitting bool
}

// NewModel creates a view for a started match.
func NewModel(ctx context.Context, match *arena.Match, opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	return Model{
		ctx:      ctx,
		match:    match,
		opts:     opts,
		screen:   core.NewScreen(opts.Width, max(3, opts.Height-footerLines)),
		keys:     DefaultArenaKeyMap(),
		help:     help.New(),
		inflight: &sync.WaitGroup{},
		snapshot: world.Build(match.Game().Tick(), match.Game()),
		players:  match.Results(),
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Width = msg.Width
		m.opts.Height = msg.Height
		m.screen.Resize(msg.Width, max(3, msg.Height-footerLines))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()

	case tickDoneMsg:
		m.busy = false
		m.snapshot = msg.result.After
		m.players = msg.players
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if m.opts.Human != nil {
			m.opts.Human.Release()
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.opts.Human != nil && !m.paused {
		if left, right := m.keys.Turn(msg); left || right {
			m.opts.Human.Press(left, right)
		}
	}
	return m, nil
}

// handleTick starts a simulation tick unless one is still running.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	next := tickCmd(m.opts.TickRate)
	if m.paused || m.busy || m.ctx.Err() != nil {
		return m, next
	}

	m.busy = true
	m.inflight.Add(1)
	ctx, match, wg := m.ctx, m.match, m.inflight
	run := func() tea.Msg {
		defer wg.Done()
		res := match.Tick(ctx)
		return tickDoneMsg{result: res, players: match.Results()}
	}
	return m, tea.Batch(run, next)
}

// View renders the arena, the standings and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	DrawWorld(m.screen, Viewport{
		Box:    core.NewRect(0, 0, m.screen.Width(), m.screen.Height()),
		ArenaW: m.opts.ArenaW,
		ArenaH: m.opts.ArenaH,
	}, m.snapshot)
	if m.paused {
		banner := " PAUSED "
		m.screen.DrawTextColored((m.screen.Width()-len(banner))/2, m.screen.Height()/2, banner, core.ColorBrightWhite)
	}

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.standings())
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// standings renders one colored entry per player.
func (m Model) standings() string {
	parts := make([]string, 0, len(m.players)+1)
	tick := uint64(0)
	if m.snapshot != nil {
		tick = m.snapshot.Tick
	}
	parts = append(parts, fmt.Sprintf("t=%d", tick))

	for _, p := range m.players {
		style, ok := colorStyles[core.PlayerColor(p.Player)]
		if !ok {
			style = colorStyles[core.ColorDefault]
		}
		entry := fmt.Sprintf("%s %d", p.Username, p.Score)
		if p.Deaths > 0 {
			entry += fmt.Sprintf(" ✝%d", p.Deaths)
		}
		if !p.Active {
			style = style.Strikethrough(true)
		}
		parts = append(parts, style.Render(entry))
	}
	return strings.Join(parts, "  ")
}

// Run shows the match until the user quits or ctx is cancelled, then
// returns the final standings.
func Run(ctx context.Context, match *arena.Match, opts Options) ([]arena.PlayerResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, match, opts)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	model.inflight.Wait()
	if err != nil && !interrupted {
		return nil, err
	}
	return match.Results(), nil
}
