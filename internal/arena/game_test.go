package arena

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/snake-arena/internal/config"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

func testArena() config.ArenaConfig {
	cfg := config.DefaultArenaConfig().Arena
	cfg.WallBounce = false
	cfg.FoodInterval = 0
	return cfg
}

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{TickRate: 60, Seed: 42}
}

// put places a straight snake heading along +X.
func put(g *Game, id core.PlayerID, body ...core.Vec2) {
	g.snakes[id] = &Snake{
		Player:   id,
		Body:     body,
		Velocity: core.V(g.cfg.Speed, 0),
	}
}

func TestSpawn(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	g.Spawn(1)

	s, ok := g.Snake(1)
	if !ok {
		t.Fatal("Snake(1) missing after Spawn")
	}
	if s.Length() != 4 {
		t.Errorf("Length() = %d, expected head plus 3 segments", s.Length())
	}
	for _, p := range s.Body {
		if p != s.Body[0] {
			t.Errorf("segments not stacked on the head: %v", s.Body)
		}
		if math.Abs(p.X) > 50 || math.Abs(p.Y) > 50 {
			t.Errorf("spawned outside the arena: %v", p)
		}
	}
	if math.Abs(s.Velocity.Len()-5) > 1e-9 {
		t.Errorf("|Velocity| = %v, expected 5", s.Velocity.Len())
	}
}

func TestSpawnIsSeeded(t *testing.T) {
	a := NewGame(testArena(), testRuntime())
	b := NewGame(testArena(), testRuntime())
	a.Spawn(1)
	b.Spawn(1)
	sa, _ := a.Snake(1)
	sb, _ := b.Snake(1)
	if sa.Body[0] != sb.Body[0] || sa.Velocity != sb.Velocity {
		t.Error("same seed produced different spawns")
	}
}

func TestStepMovesAndEases(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	put(g, 1, core.V(0, 0), core.V(-10, 0))

	g.Step()

	s, _ := g.Snake(1)
	wantHead := 5 * 5 * (1.0 / 60)
	if math.Abs(s.Body[0].X-wantHead) > 1e-12 || s.Body[0].Y != 0 {
		t.Errorf("head = %v, expected (%v,0)", s.Body[0], wantHead)
	}
	// Tail eases toward where the head was before it moved.
	if math.Abs(s.Body[1].X-(-9)) > 1e-12 {
		t.Errorf("segment 1 = %v, expected (-9,0)", s.Body[1])
	}
	if g.Tick() != 1 {
		t.Errorf("Tick() = %d, expected 1", g.Tick())
	}
}

func TestTurnRotatesVelocity(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	put(g, 1, core.V(0, 0))

	g.Turn(1, math.Pi/2)
	s, _ := g.Snake(1)
	if math.Abs(s.Velocity.X) > 1e-9 || math.Abs(s.Velocity.Y-5) > 1e-9 {
		t.Errorf("Velocity = %v, expected (0,5)", s.Velocity)
	}

	// Unknown players are ignored.
	g.Turn(9, 1)
}

func TestEatFood(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	put(g, 1, core.V(0, 0), core.V(-1, 0))
	g.AddFood(core.V(3, 0))

	events := g.Step()

	s, _ := g.Snake(1)
	if s.Score != 1 {
		t.Errorf("Score = %d, expected 1", s.Score)
	}
	if s.Length() != 3 || s.Body[2] != core.V(3, 0) {
		t.Errorf("body = %v, expected new segment at the food", s.Body)
	}
	if len(g.Foods()) != 0 {
		t.Errorf("food not removed: %v", g.Foods())
	}
	if len(events) != 1 || events[0].Kind != EventAte || events[0].Player != 1 {
		t.Errorf("events = %+v", events)
	}
}

func TestCollisionRespawns(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	put(g, 1, core.V(0, 0))
	put(g, 2, core.V(30, 30), core.V(5, 0))

	events := g.Step()

	var died []core.PlayerID
	for _, ev := range events {
		if ev.Kind == EventDied {
			died = append(died, ev.Player)
		}
	}
	if len(died) != 1 || died[0] != 1 {
		t.Fatalf("died = %v, expected [1]", died)
	}

	s, _ := g.Snake(1)
	if s.Deaths != 1 {
		t.Errorf("Deaths = %d, expected 1", s.Deaths)
	}
	if s.Length() != 4 {
		t.Errorf("respawned length = %d, expected 4", s.Length())
	}

	other, _ := g.Snake(2)
	if other.Deaths != 0 {
		t.Error("the snake that was hit also died")
	}
}

func TestOwnBodyDoesNotKill(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	put(g, 1, core.V(0, 0), core.V(0, 0), core.V(0, 0))

	for _, ev := range g.Step() {
		if ev.Kind == EventDied {
			t.Fatal("snake died on its own body")
		}
	}
}

func TestWallBounce(t *testing.T) {
	cfg := testArena()
	cfg.WallBounce = true
	g := NewGame(cfg, testRuntime())
	put(g, 1, core.V(49.9, 0))

	g.Step()

	s, _ := g.Snake(1)
	if s.Velocity.X >= 0 {
		t.Errorf("Velocity = %v, expected X reflected", s.Velocity)
	}
	if s.Body[0].X > 50 {
		t.Errorf("head escaped the arena: %v", s.Body[0])
	}
}

func TestFoodSpawnsOnInterval(t *testing.T) {
	cfg := testArena()
	cfg.FoodInterval = time.Second
	cfg.MaxFood = 2
	g := NewGame(cfg, testRuntime())

	for i := 0; i < 59; i++ {
		g.Step()
	}
	if n := len(g.Foods()); n != 0 {
		t.Fatalf("%d foods before the first interval", n)
	}
	g.Step()
	if n := len(g.Foods()); n != 1 {
		t.Fatalf("%d foods after one second, expected 1", n)
	}
	for i := 0; i < 60*5; i++ {
		g.Step()
	}
	if n := len(g.Foods()); n != 2 {
		t.Errorf("%d foods, expected the cap of 2", n)
	}
}

func TestGameIsSnapshotSource(t *testing.T) {
	g := NewGame(testArena(), testRuntime())
	put(g, 2, core.V(1, 1), core.V(2, 2))
	put(g, 1, core.V(-1, -1))
	g.AddFood(core.V(7, 7))

	snap := world.Build(g.Tick(), g)

	if ids := snap.Players(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("Players() = %v", ids)
	}
	s2, _ := snap.Snake(2)
	if len(s2.Segments) != 2 || s2.HeadRadius != g.cfg.HeadRadius {
		t.Errorf("snake 2 = %+v", s2)
	}

	g.Step()
	if s2.Segments[0] != core.V(1, 1) {
		t.Error("snapshot changed when the game stepped")
	}
}
