// Package world defines the read-only view of the arena that is handed to
// every controller once per tick.
package world

import (
	"sort"

	"github.com/vovakirdan/snake-arena/internal/core"
)

// Position is a point in arena space.
type Position = core.Vec2

// SnakeSnapshot is one player's segment chain, head first.
// HeadRadius is engine metadata and is not sent to AI programs.
type SnakeSnapshot struct {
	Player     core.PlayerID
	Segments   []Position // index 0 = head
	HeadRadius float64
}

// Head returns the head position. ok is false for an empty chain.
func (s SnakeSnapshot) Head() (Position, bool) {
	if len(s.Segments) == 0 {
		return Position{}, false
	}
	return s.Segments[0], true
}

// FoodSnapshot is one active food item.
type FoodSnapshot struct {
	Pos Position
}

// WorldSnapshot is a point-in-time view of every snake and food item.
// It is built fresh each tick and must not be modified after Build returns;
// all controllers queried during a tick share the same instance.
type WorldSnapshot struct {
	Tick   uint64
	Snakes []SnakeSnapshot // ordered by Player ascending
	Foods  []FoodSnapshot
}

// Snake looks up a player's chain.
func (w *WorldSnapshot) Snake(id core.PlayerID) (SnakeSnapshot, bool) {
	i := sort.Search(len(w.Snakes), func(i int) bool {
		return w.Snakes[i].Player >= id
	})
	if i < len(w.Snakes) && w.Snakes[i].Player == id {
		return w.Snakes[i], true
	}
	return SnakeSnapshot{}, false
}

// Players returns the IDs of every snake in the snapshot, ascending.
func (w *WorldSnapshot) Players() []core.PlayerID {
	ids := make([]core.PlayerID, len(w.Snakes))
	for i, s := range w.Snakes {
		ids[i] = s.Player
	}
	return ids
}

// SegmentCount returns the total number of segments across all snakes.
func (w *WorldSnapshot) SegmentCount() int {
	n := 0
	for _, s := range w.Snakes {
		n += len(s.Segments)
	}
	return n
}
