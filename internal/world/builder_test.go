package world

import (
	"testing"

	"github.com/vovakirdan/snake-arena/internal/core"
)

type fakeSource struct {
	segments []SegmentRecord
	foods    []Position
}

func (f *fakeSource) Segments() []SegmentRecord { return f.segments }
func (f *fakeSource) Foods() []Position         { return f.foods }

func TestBuildGroupsAndOrders(t *testing.T) {
	src := &fakeSource{
		segments: []SegmentRecord{
			{Player: 2, Index: 1, Pos: core.V(21, 0)},
			{Player: 1, Index: 2, Pos: core.V(12, 0)},
			{Player: 2, Index: 0, Pos: core.V(20, 0), Radius: 5},
			{Player: 1, Index: 0, Pos: core.V(10, 0), Radius: 5},
			{Player: 1, Index: 1, Pos: core.V(11, 0)},
		},
		foods: []Position{core.V(1, 1), core.V(2, 2)},
	}

	snap := Build(7, src)

	if snap.Tick != 7 {
		t.Errorf("Tick = %d, expected 7", snap.Tick)
	}
	if len(snap.Snakes) != 2 {
		t.Fatalf("expected 2 snakes, got %d", len(snap.Snakes))
	}
	if snap.Snakes[0].Player != 1 || snap.Snakes[1].Player != 2 {
		t.Errorf("snakes not ordered by player: %v", snap.Players())
	}

	want := []Position{core.V(10, 0), core.V(11, 0), core.V(12, 0)}
	got := snap.Snakes[0].Segments
	if len(got) != len(want) {
		t.Fatalf("player 1 has %d segments, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %v, expected %v", i, got[i], want[i])
		}
	}
	if snap.Snakes[0].HeadRadius != 5 {
		t.Errorf("HeadRadius = %v, expected 5", snap.Snakes[0].HeadRadius)
	}
	if len(snap.Foods) != 2 {
		t.Errorf("expected 2 foods, got %d", len(snap.Foods))
	}
	if snap.SegmentCount() != 5 {
		t.Errorf("SegmentCount() = %d, expected 5", snap.SegmentCount())
	}
}

func TestBuildDoesNotAliasSource(t *testing.T) {
	src := &fakeSource{
		segments: []SegmentRecord{
			{Player: 1, Index: 1, Pos: core.V(1, 0)},
			{Player: 1, Index: 0, Pos: core.V(0, 0)},
		},
		foods: []Position{core.V(5, 5)},
	}

	snap := Build(0, src)

	// Mutating the source after the build must not leak into the snapshot.
	src.segments[1].Pos = core.V(99, 99)
	src.foods[0] = core.V(-1, -1)

	if head, _ := snap.Snakes[0].Head(); head != core.V(0, 0) {
		t.Errorf("head changed to %v after source mutation", head)
	}
	if snap.Foods[0].Pos != core.V(5, 5) {
		t.Errorf("food changed to %v after source mutation", snap.Foods[0].Pos)
	}

	// The source slice order must be left untouched.
	if src.segments[0].Index != 1 {
		t.Error("Build() reordered the source records")
	}
}

func TestSnakeLookup(t *testing.T) {
	snap := FromRecords(0, []SegmentRecord{
		{Player: 0, Index: 0},
		{Player: 3, Index: 0},
		{Player: 5, Index: 0},
	}, nil)

	if _, ok := snap.Snake(3); !ok {
		t.Error("Snake(3) not found")
	}
	if _, ok := snap.Snake(4); ok {
		t.Error("Snake(4) should not exist")
	}
	if _, ok := snap.Snake(6); ok {
		t.Error("Snake(6) should not exist")
	}
}

func TestEmptyWorld(t *testing.T) {
	snap := Build(1, &fakeSource{})
	if len(snap.Snakes) != 0 || len(snap.Foods) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if _, ok := (SnakeSnapshot{}).Head(); ok {
		t.Error("Head() of empty chain should report !ok")
	}
}
