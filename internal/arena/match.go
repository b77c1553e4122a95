package arena

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// Recorder receives every tick's frozen snapshot and the decisions that
// were applied after it.
type Recorder interface {
	Record(snap *world.WorldSnapshot, decisions []controller.Decision) error
}

// TickResult describes one completed tick.
type TickResult struct {
	Snapshot  *world.WorldSnapshot // what the controllers saw
	Decisions []controller.Decision
	Events    []Event
	After     *world.WorldSnapshot // state after the step, for display
}

// PlayerResult is one player's standing.
type PlayerResult struct {
	Player   core.PlayerID
	Username string
	IsAI     bool
	Score    int
	Deaths   int
	Length   int
	Misses   int
	Failure  string
	Active   bool
}

// MatchOptions configures a Match.
type MatchOptions struct {
	TickRate int
	TurnRate float64
	Recorder Recorder
	Logger   *log.Logger
}

// Match drives the game one tick at a time: snapshot, controller fan-out,
// merge, step.
type Match struct {
	game     *Game
	registry *controller.Registry
	merger   *Merger
	recorder Recorder
	logger   *log.Logger
	tickRate int
}

// NewMatch wires a game to a registry. The registry's controllers should
// already be initialized; Start spawns their snakes.
func NewMatch(game *Game, registry *controller.Registry, opts MatchOptions) *Match {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tickRate := opts.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	return &Match{
		game:     game,
		registry: registry,
		merger:   NewMerger(opts.TurnRate, game.Dt()),
		recorder: opts.Recorder,
		logger:   logger,
		tickRate: tickRate,
	}
}

// Game returns the simulation.
func (m *Match) Game() *Game { return m.game }

// Start spawns a snake for every active player.
func (m *Match) Start() {
	for _, id := range m.registry.Players() {
		m.game.Spawn(id)
	}
}

// Tick runs one tick. Every controller sees the same snapshot, and no
// command is applied before all of them have answered or failed.
func (m *Match) Tick(ctx context.Context) TickResult {
	snap := world.Build(m.game.Tick(), m.game)

	decisions := m.registry.Tick(ctx, snap)

	m.merger.SubmitAll(decisions)
	applied := m.merger.Apply(m.game)

	events := m.game.Step()
	for _, ev := range events {
		switch ev.Kind {
		case EventDied:
			m.logger.Debug("snake died", "tick", snap.Tick, "player", ev.Player)
		case EventAte:
			m.logger.Debug("snake ate", "tick", snap.Tick, "player", ev.Player)
		}
	}

	if m.recorder != nil {
		if err := m.recorder.Record(snap, applied); err != nil {
			m.logger.Warn("recording stopped", "tick", snap.Tick, "error", err)
			m.recorder = nil
		}
	}

	return TickResult{
		Snapshot:  snap,
		Decisions: applied,
		Events:    events,
		After:     world.Build(m.game.Tick(), m.game),
	}
}

// Run ticks at the configured rate until ctx is cancelled or, when ticks is
// non-zero, that many ticks have run. onTick may be nil.
func (m *Match) Run(ctx context.Context, ticks uint64, onTick func(TickResult)) error {
	ticker := time.NewTicker(core.RuntimeConfig{TickRate: m.tickRate}.TickInterval())
	defer ticker.Stop()

	var n uint64
	for ticks == 0 || n < ticks {
		select {
		case <-ticker.C:
			res := m.Tick(ctx)
			n++
			if onTick != nil {
				onTick(res)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// RunFast runs ticks back to back without pacing.
func (m *Match) RunFast(ctx context.Context, ticks uint64, onTick func(TickResult)) error {
	for n := uint64(0); ticks == 0 || n < ticks; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := m.Tick(ctx)
		if onTick != nil {
			onTick(res)
		}
	}
	return nil
}

// Results returns every registered player's standing, ordered by id.
func (m *Match) Results() []PlayerResult {
	var out []PlayerResult
	for _, st := range m.registry.Statuses() {
		r := PlayerResult{
			Player:   st.ID,
			Username: st.Info.Username,
			IsAI:     st.Info.IsAI,
			Misses:   st.Misses,
			Active:   st.State == controller.StateActive,
		}
		if r.Username == "" {
			r.Username = st.Name
			r.IsAI = st.ID != core.HumanPlayer
		}
		if st.Failure != nil {
			r.Failure = st.Failure.Error()
		}
		if s, ok := m.game.Snake(st.ID); ok {
			r.Score = s.Score
			r.Deaths = s.Deaths
			r.Length = s.Length()
		}
		out = append(out, r)
	}
	return out
}
