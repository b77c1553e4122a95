package arena

import (
	"sort"

	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
)

// TurnSink receives resolved heading changes.
type TurnSink interface {
	Turn(id core.PlayerID, angle float64)
}

type pending struct {
	left, right bool
}

// Merger collects the commands submitted during one tick and applies each
// player's resolved command exactly once.
type Merger struct {
	step  float64 // turn_rate * dt
	byID  map[core.PlayerID]pending
	order []core.PlayerID
}

// NewMerger creates a merger that turns by turnRate*dt radians per tick.
func NewMerger(turnRate, dt float64) *Merger {
	return &Merger{
		step: turnRate * dt,
		byID: make(map[core.PlayerID]pending),
	}
}

// Step returns the per-tick turn angle.
func (m *Merger) Step() float64 { return m.step }

// Submit records a command. Several submissions for the same player are
// OR-ed together; left and right in the same tick cancel.
func (m *Merger) Submit(id core.PlayerID, cmd core.Command) {
	p, seen := m.byID[id]
	if !seen {
		m.order = append(m.order, id)
	}
	switch cmd {
	case core.CommandTurnLeft:
		p.left = true
	case core.CommandTurnRight:
		p.right = true
	}
	m.byID[id] = p
}

// SubmitAll records every decision from a registry tick.
func (m *Merger) SubmitAll(decisions []controller.Decision) {
	for _, d := range decisions {
		m.Submit(d.Player, d.Command)
	}
}

// Decisions returns the resolved command per player, ordered by id.
func (m *Merger) Decisions() []controller.Decision {
	ids := append([]core.PlayerID(nil), m.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]controller.Decision, len(ids))
	for i, id := range ids {
		out[i] = controller.Decision{Player: id, Command: resolve(m.byID[id])}
	}
	return out
}

func resolve(p pending) core.Command {
	switch {
	case p.left && !p.right:
		return core.CommandTurnLeft
	case p.right && !p.left:
		return core.CommandTurnRight
	default:
		return core.CommandNoOp
	}
}

// Angle converts a command into a heading change.
func (m *Merger) Angle(cmd core.Command) float64 {
	switch cmd {
	case core.CommandTurnLeft:
		return m.step
	case core.CommandTurnRight:
		return -m.step
	default:
		return 0
	}
}

// Apply hands every recorded player's turn to sink, once each, then
// clears the merger. Players without a record are not touched.
func (m *Merger) Apply(sink TurnSink) []controller.Decision {
	decisions := m.Decisions()
	for _, d := range decisions {
		sink.Turn(d.Player, m.Angle(d.Command))
	}
	m.Reset()
	return decisions
}

// Reset drops everything submitted so far.
func (m *Merger) Reset() {
	clear(m.byID)
	m.order = m.order[:0]
}
