// Package arena runs the snake simulation and the per-tick match loop that
// feeds it decisions from controllers.
package arena

import (
	"math"
	"math/rand"
	"sort"

	"github.com/vovakirdan/snake-arena/internal/config"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// easing is the weight a tail segment keeps of its own position each step.
const easing = 0.9

// Snake is one player's body and counters.
type Snake struct {
	Player   core.PlayerID
	Body     []core.Vec2 // head at index 0
	Velocity core.Vec2
	Score    int
	Deaths   int
}

// Length returns the number of segments including the head.
func (s *Snake) Length() int { return len(s.Body) }

// EventKind classifies something that happened during a step.
type EventKind int

const (
	EventAte EventKind = iota
	EventDied
	EventFoodSpawned
)

// Event is reported by Step.
type Event struct {
	Kind   EventKind
	Player core.PlayerID // unset for EventFoodSpawned
	Pos    core.Vec2
}

// Game is the authoritative simulation.
type Game struct {
	cfg  config.ArenaConfig
	rng  *rand.Rand
	ramp *config.Ramp
	dt   float64
	tick uint64

	snakes    map[core.PlayerID]*Snake
	foods     []core.Vec2
	foodEvery uint64 // ticks between spawns, 0 = never
}

// NewGame creates an empty arena. rt supplies the tick rate and seed.
func NewGame(cfg config.ArenaConfig, rt core.RuntimeConfig) *Game {
	g := &Game{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(rt.Seed)),
		ramp:   config.NewRamp(cfg.Ramp),
		dt:     rt.Dt(),
		snakes: make(map[core.PlayerID]*Snake),
	}
	if cfg.FoodInterval > 0 {
		g.foodEvery = uint64(max(1, math.Round(cfg.FoodInterval.Seconds()/g.dt)))
	}
	return g
}

// Tick returns the number of completed steps.
func (g *Game) Tick() uint64 { return g.tick }

// Dt returns the simulated seconds per step.
func (g *Game) Dt() float64 { return g.dt }

// Config returns the arena settings.
func (g *Game) Config() config.ArenaConfig { return g.cfg }

// Spawn places a new snake for id at a random position with a random
// heading. An existing snake for id is replaced.
func (g *Game) Spawn(id core.PlayerID) {
	s := &Snake{Player: id}
	if old, ok := g.snakes[id]; ok {
		s.Score, s.Deaths = old.Score, old.Deaths
	}
	g.place(s)
	g.snakes[id] = s
}

// Remove deletes a player's snake.
func (g *Game) Remove(id core.PlayerID) {
	delete(g.snakes, id)
}

func (g *Game) place(s *Snake) {
	pos := g.randomPos()
	s.Body = make([]core.Vec2, 1+g.cfg.InitialSegments)
	for i := range s.Body {
		s.Body[i] = pos
	}
	s.Velocity = core.FromAngle(2*math.Pi*g.rng.Float64(), g.cfg.Speed)
}

func (g *Game) randomPos() core.Vec2 {
	return core.V(
		(g.rng.Float64()-0.5)*g.cfg.Width,
		(g.rng.Float64()-0.5)*g.cfg.Height,
	)
}

// Turn rotates a player's heading. Unknown players are ignored.
func (g *Game) Turn(id core.PlayerID, angle float64) {
	if s, ok := g.snakes[id]; ok {
		s.Velocity = s.Velocity.Rotate(angle)
	}
}

// Step advances the simulation by one tick: movement, food spawning,
// eating, then collisions.
func (g *Game) Step() []Event {
	var events []Event

	g.move()

	if g.foodEvery > 0 && (g.tick+1)%g.foodEvery == 0 {
		if g.cfg.MaxFood <= 0 || len(g.foods) < g.cfg.MaxFood {
			pos := g.randomPos()
			g.foods = append(g.foods, pos)
			events = append(events, Event{Kind: EventFoodSpawned, Pos: pos})
		}
	}

	ids := g.Players()

	for _, id := range ids {
		s := g.snakes[id]
		if i := g.foodAt(s.Body[0]); i >= 0 {
			pos := g.foods[i]
			g.foods = append(g.foods[:i], g.foods[i+1:]...)
			s.Body = append(s.Body, pos)
			s.Score++
			events = append(events, Event{Kind: EventAte, Player: id, Pos: pos})
		}
	}

	// Collisions are judged against bodies as they were before anyone
	// respawned this step.
	var dead []core.PlayerID
	for _, id := range ids {
		if g.collides(id, ids) {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		s := g.snakes[id]
		events = append(events, Event{Kind: EventDied, Player: id, Pos: s.Body[0]})
		s.Deaths++
		g.place(s)
	}

	g.tick++
	return events
}

func (g *Game) move() {
	// Velocity has magnitude cfg.Speed, so the head covers speed*|v|*dt.
	speed := g.ramp.Speed(g.cfg.Speed, g.bestScore(), g.tick)
	halfW, halfH := g.cfg.Width/2, g.cfg.Height/2

	for _, s := range g.snakes {
		for i := len(s.Body) - 1; i >= 1; i-- {
			s.Body[i] = s.Body[i].Lerp(s.Body[i-1], 1-easing)
		}

		head := s.Body[0].Add(s.Velocity.Scale(speed * g.dt))
		if g.cfg.WallBounce {
			if head.X < -halfW || head.X > halfW {
				s.Velocity.X = -s.Velocity.X
				head.X = core.ClampF(head.X, -halfW, halfW)
			}
			if head.Y < -halfH || head.Y > halfH {
				s.Velocity.Y = -s.Velocity.Y
				head.Y = core.ClampF(head.Y, -halfH, halfH)
			}
		}
		s.Body[0] = head
	}
}

func (g *Game) foodAt(head core.Vec2) int {
	reach := g.cfg.HeadRadius + g.cfg.FoodRadius
	for i, f := range g.foods {
		if head.Dist(f) < reach {
			return i
		}
	}
	return -1
}

func (g *Game) collides(id core.PlayerID, ids []core.PlayerID) bool {
	head := g.snakes[id].Body[0]
	reach := 2 * g.cfg.HeadRadius
	for _, other := range ids {
		if other == id {
			continue
		}
		for _, seg := range g.snakes[other].Body {
			if head.Dist(seg) < reach {
				return true
			}
		}
	}
	return false
}

func (g *Game) bestScore() int {
	best := 0
	for _, s := range g.snakes {
		best = max(best, s.Score)
	}
	return best
}

// Players returns the ids of all snakes, ascending.
func (g *Game) Players() []core.PlayerID {
	ids := make([]core.PlayerID, 0, len(g.snakes))
	for id := range g.snakes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Snake returns a copy of a player's snake.
func (g *Game) Snake(id core.PlayerID) (Snake, bool) {
	s, ok := g.snakes[id]
	if !ok {
		return Snake{}, false
	}
	cp := *s
	cp.Body = append([]core.Vec2(nil), s.Body...)
	return cp, true
}

// AddFood places a food item. Used by tests and scripted setups.
func (g *Game) AddFood(pos core.Vec2) {
	g.foods = append(g.foods, pos)
}

// Segments implements world.Source.
func (g *Game) Segments() []world.SegmentRecord {
	var out []world.SegmentRecord
	for id, s := range g.snakes {
		for i, p := range s.Body {
			rec := world.SegmentRecord{Player: id, Index: i, Pos: p}
			if i == 0 {
				rec.Radius = g.cfg.HeadRadius
			}
			out = append(out, rec)
		}
	}
	return out
}

// Foods implements world.Source.
func (g *Game) Foods() []world.Position {
	return append([]world.Position(nil), g.foods...)
}
