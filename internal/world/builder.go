package world

import (
	"sort"

	"github.com/vovakirdan/snake-arena/internal/core"
)

// SegmentRecord is one live snake segment as enumerated by the engine.
// Radius is zero when the engine has no collision radius for the segment.
type SegmentRecord struct {
	Player core.PlayerID
	Index  int // 0 = head
	Pos    Position
	Radius float64
}

// Source enumerates live entities. Enumeration order is arbitrary.
type Source interface {
	Segments() []SegmentRecord
	Foods() []Position
}

// Build assembles an immutable snapshot from the current contents of src.
// Segments are grouped by player and ordered by index; snakes are ordered by
// player. The result shares no memory with src.
func Build(tick uint64, src Source) *WorldSnapshot {
	return FromRecords(tick, src.Segments(), src.Foods())
}

// FromRecords builds a snapshot from already enumerated records.
func FromRecords(tick uint64, segments []SegmentRecord, foods []Position) *WorldSnapshot {
	grouped := make(map[core.PlayerID][]SegmentRecord)
	for _, rec := range segments {
		grouped[rec.Player] = append(grouped[rec.Player], rec)
	}

	players := make([]core.PlayerID, 0, len(grouped))
	for id := range grouped {
		players = append(players, id)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })

	snap := &WorldSnapshot{
		Tick:   tick,
		Snakes: make([]SnakeSnapshot, 0, len(players)),
		Foods:  make([]FoodSnapshot, 0, len(foods)),
	}

	for _, id := range players {
		recs := grouped[id]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Index < recs[j].Index })

		snake := SnakeSnapshot{
			Player:   id,
			Segments: make([]Position, len(recs)),
		}
		for i, rec := range recs {
			snake.Segments[i] = rec.Pos
		}
		if recs[0].Index == 0 {
			snake.HeadRadius = recs[0].Radius
		}
		snap.Snakes = append(snap.Snakes, snake)
	}

	for _, p := range foods {
		snap.Foods = append(snap.Foods, FoodSnapshot{Pos: p})
	}

	return snap
}
