package arena

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// fixedController always answers with the same command and remembers what
// it was shown.
type fixedController struct {
	username string
	cmd      core.Command

	mu   sync.Mutex
	seen []*world.WorldSnapshot
}

func (f *fixedController) Name() string { return f.username }

func (f *fixedController) Initialize(context.Context, core.PlayerID) (core.PlayerInfo, error) {
	return core.PlayerInfo{Username: f.username, IsAI: true}, nil
}

func (f *fixedController) FeedInput(_ context.Context, snap *world.WorldSnapshot) error {
	f.mu.Lock()
	f.seen = append(f.seen, snap)
	f.mu.Unlock()
	return nil
}

func (f *fixedController) GetOutput(context.Context) (core.Command, error) { return f.cmd, nil }

func (f *fixedController) Close() error { return nil }

type memRecorder struct {
	snaps     []*world.WorldSnapshot
	decisions [][]controller.Decision
}

func (r *memRecorder) Record(snap *world.WorldSnapshot, d []controller.Decision) error {
	r.snaps = append(r.snaps, snap)
	r.decisions = append(r.decisions, d)
	return nil
}

func newTestMatch(t *testing.T, rec Recorder, ctrls map[core.PlayerID]controller.Controller) *Match {
	t.Helper()
	reg := controller.NewRegistry(controller.Options{Mode: controller.ModeParallel})
	for id, c := range ctrls {
		if err := reg.Add(id, c); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}
	reg.InitializeAll(context.Background())

	g := NewGame(testArena(), testRuntime())
	m := NewMatch(g, reg, MatchOptions{TickRate: 60, TurnRate: 2 * math.Pi, Recorder: rec})
	m.Start()
	return m
}

func TestMatchStraightKeepsHeading(t *testing.T) {
	ai := &fixedController{username: "echo", cmd: core.CommandNoOp}
	m := newTestMatch(t, nil, map[core.PlayerID]controller.Controller{1: ai})

	before, _ := m.Game().Snake(1)
	res := m.Tick(context.Background())
	after, _ := m.Game().Snake(1)

	if len(res.Decisions) != 1 || res.Decisions[0] != (controller.Decision{Player: 1, Command: core.CommandNoOp}) {
		t.Errorf("Decisions = %+v", res.Decisions)
	}
	if after.Velocity != before.Velocity {
		t.Errorf("heading changed from %v to %v", before.Velocity, after.Velocity)
	}
}

func TestMatchTurnLeftRotatesOnce(t *testing.T) {
	ai := &fixedController{username: "lefty", cmd: core.CommandTurnLeft}
	m := newTestMatch(t, nil, map[core.PlayerID]controller.Controller{1: ai})

	before, _ := m.Game().Snake(1)
	m.Tick(context.Background())
	after, _ := m.Game().Snake(1)

	want := before.Velocity.Rotate(2 * math.Pi / 60)
	if math.Abs(after.Velocity.X-want.X) > 1e-12 || math.Abs(after.Velocity.Y-want.Y) > 1e-12 {
		t.Errorf("Velocity = %v, expected %v", after.Velocity, want)
	}
}

func TestMatchHumanLeftAndRightCancel(t *testing.T) {
	human := controller.NewHumanController(0)
	m := newTestMatch(t, nil, map[core.PlayerID]controller.Controller{core.HumanPlayer: human})

	human.Press(true, true)
	before, _ := m.Game().Snake(core.HumanPlayer)
	m.Tick(context.Background())
	after, _ := m.Game().Snake(core.HumanPlayer)

	if after.Velocity != before.Velocity {
		t.Errorf("heading changed from %v to %v", before.Velocity, after.Velocity)
	}
}

func TestMatchSharedFrozenSnapshot(t *testing.T) {
	a := &fixedController{username: "a", cmd: core.CommandTurnLeft}
	b := &fixedController{username: "b", cmd: core.CommandTurnRight}
	rec := &memRecorder{}
	m := newTestMatch(t, rec, map[core.PlayerID]controller.Controller{1: a, 2: b})

	res := m.Tick(context.Background())

	if len(a.seen) != 1 || len(b.seen) != 1 || a.seen[0] != b.seen[0] || a.seen[0] != res.Snapshot {
		t.Fatal("controllers did not share the tick's snapshot")
	}
	if len(rec.snaps) != 1 || rec.snaps[0] != res.Snapshot {
		t.Error("recorder did not receive the tick's snapshot")
	}
	if len(rec.decisions[0]) != 2 {
		t.Errorf("recorded decisions = %+v", rec.decisions[0])
	}

	s1, _ := res.Snapshot.Snake(1)
	now, _ := m.Game().Snake(1)
	if s1.Segments[0] == now.Body[0] {
		t.Error("snapshot follows the live game")
	}
	if res.After.Tick != 1 || res.Snapshot.Tick != 0 {
		t.Errorf("ticks = %d/%d, expected 0/1", res.Snapshot.Tick, res.After.Tick)
	}
}

func TestMatchRunFast(t *testing.T) {
	ai := &fixedController{username: "echo"}
	m := newTestMatch(t, nil, map[core.PlayerID]controller.Controller{1: ai})

	count := 0
	if err := m.RunFast(context.Background(), 10, func(TickResult) { count++ }); err != nil {
		t.Fatalf("RunFast() failed: %v", err)
	}
	if count != 10 || m.Game().Tick() != 10 {
		t.Errorf("ran %d ticks, game at %d", count, m.Game().Tick())
	}

	results := m.Results()
	if len(results) != 1 || results[0].Username != "echo" || !results[0].Active {
		t.Errorf("Results() = %+v", results)
	}
}

func TestMatchRunStopsOnCancel(t *testing.T) {
	ai := &fixedController{username: "echo"}
	m := newTestMatch(t, nil, map[core.PlayerID]controller.Controller{1: ai})

	ctx, cancel := context.WithCancel(context.Background())
	err := m.Run(ctx, 0, func(res TickResult) {
		if res.Snapshot.Tick == 2 {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Errorf("Run() = %v, expected context.Canceled", err)
	}
}
