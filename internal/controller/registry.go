package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// Mode selects how a tick fans out to controllers.
type Mode string

const (
	// ModeSerial queries controllers one after another in PlayerID order.
	ModeSerial Mode = "serial"
	// ModeParallel queries every controller on its own goroutine.
	ModeParallel Mode = "parallel"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSerial, ModeParallel:
		return Mode(s), nil
	case "":
		return ModeParallel, nil
	}
	return "", fmt.Errorf("controller: unknown mode %q", s)
}

// State is a registered controller's lifecycle stage.
type State int

const (
	StatePending State = iota // registered, not yet initialized
	StateActive
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	default:
		return "disabled"
	}
}

// Options configures a Registry.
type Options struct {
	Launch LaunchOptions
	Mode   Mode

	// ResponseTimeout bounds one FeedInput+GetOutput round trip. Zero
	// waits forever.
	ResponseTimeout time.Duration

	// InitTimeout bounds Initialize. Zero waits forever.
	InitTimeout time.Duration

	Logger *log.Logger

	// OnFailure is called once for every controller that is disabled,
	// including programs that failed to launch.
	OnFailure func(id core.PlayerID, name string, err error)
}

// Decision is one command returned during a tick.
type Decision struct {
	Player  core.PlayerID
	Command core.Command
}

// Status describes one registered player.
type Status struct {
	ID      core.PlayerID
	Name    string
	Info    core.PlayerInfo
	State   State
	Failure error
	Misses  int
}

type entry struct {
	id      core.PlayerID
	name    string
	ctrl    Controller
	info    core.PlayerInfo
	state   State
	failure error
	misses  int
}

// Candidate is an AI program found in a directory, before launch.
type Candidate struct {
	ID      core.PlayerID
	Path    string
	Program string
	Args    []string
}

// Registry owns every controller in a match and fans each tick out to them.
type Registry struct {
	opts   Options
	logger *log.Logger

	mu      sync.Mutex
	entries map[core.PlayerID]*entry
	nextID  core.PlayerID
}

// NewRegistry creates an empty registry. AI ids start at 1.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Mode == "" {
		opts.Mode = ModeParallel
	}
	if opts.Launch.Logger == nil {
		opts.Launch.Logger = logger
	}
	return &Registry{
		opts:    opts,
		logger:  logger,
		entries: make(map[core.PlayerID]*entry),
		nextID:  core.HumanPlayer + 1,
	}
}

// Scan lists the AI programs in dir and the ids they would receive, without
// launching anything. Entries are taken in lexicographic order; directories
// and hidden files are skipped.
func Scan(dir string, first core.PlayerID, opts LaunchOptions) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("controller: cannot read AI directory: %w", err)
	}

	var out []Candidate
	id := first
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		prog, args := CommandLine(path, opts)
		out = append(out, Candidate{ID: id, Path: path, Program: prog, Args: args})
		id++
	}
	return out, nil
}

// Discover launches one controller per program in dir. A program that fails
// to launch still uses up its id, so ids always follow listing order. It
// returns the number of controllers launched. If the directory cannot be
// read nothing changes.
func (r *Registry) Discover(ctx context.Context, dir string) (int, error) {
	r.mu.Lock()
	first := r.nextID
	r.mu.Unlock()

	candidates, err := Scan(dir, first, r.opts.Launch)
	if err != nil {
		return 0, err
	}

	launched := 0
	for _, cand := range candidates {
		name := filepath.Base(cand.Path)
		ctrl, err := Spawn(ctx, cand.Path, r.opts.Launch)

		r.mu.Lock()
		e := &entry{id: cand.ID, name: name}
		r.entries[cand.ID] = e
		if cand.ID >= r.nextID {
			r.nextID = cand.ID + 1
		}
		if err == nil {
			e.ctrl = ctrl
			launched++
		}
		r.mu.Unlock()

		if err != nil {
			r.disable(e, err)
			continue
		}
		r.logger.Info("ai launched", "player", cand.ID, "name", name, "pid", ctrl.Process().Pid())
	}

	return launched, nil
}

// Add registers a controller under a fixed id.
func (r *Registry) Add(id core.PlayerID, ctrl Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("controller: player %d already registered", id)
	}
	r.entries[id] = &entry{id: id, name: ctrl.Name(), ctrl: ctrl}
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return nil
}

// NextID returns the id the next discovered program will receive.
func (r *Registry) NextID() core.PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID
}

// InitializeAll initializes every pending controller in id order. Failures
// disable that controller and the rest proceed. It returns the number of
// controllers that became active.
func (r *Registry) InitializeAll(ctx context.Context) int {
	active := 0
	for _, e := range r.sorted(StatePending) {
		ictx, cancel := withTimeout(ctx, r.opts.InitTimeout)
		info, err := e.ctrl.Initialize(ictx, e.id)
		cancel()

		if err != nil {
			r.disable(e, err)
			continue
		}

		r.mu.Lock()
		e.info = info
		e.state = StateActive
		r.mu.Unlock()
		active++

		r.logger.Info("player ready", "player", e.id, "username", info.Username, "ai", info.IsAI)
	}
	return active
}

// Info returns the player info a controller reported during Initialize.
// It stays available after the controller is disabled.
func (r *Registry) Info(id core.PlayerID) (core.PlayerInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.info.Username == "" {
		return core.PlayerInfo{}, false
	}
	return e.info, true
}

// Players returns the ids of active controllers, ascending.
func (r *Registry) Players() []core.PlayerID {
	active := r.sorted(StateActive)
	ids := make([]core.PlayerID, len(active))
	for i, e := range active {
		ids[i] = e.id
	}
	return ids
}

// Statuses describes every registered id, ascending.
func (r *Registry) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Status{
			ID:      e.id,
			Name:    e.name,
			Info:    e.info,
			State:   e.state,
			Failure: e.failure,
			Misses:  e.misses,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type outcome struct {
	cmd core.Command
	err error
}

// Tick hands snap to every active controller and collects their commands.
// Every controller sees the same snapshot. Decisions come back in id
// order; controllers that missed the tick or failed have none. Failures
// never escape: the controller is disabled and reported.
func (r *Registry) Tick(ctx context.Context, snap *world.WorldSnapshot) []Decision {
	active := r.sorted(StateActive)
	outcomes := make([]outcome, len(active))

	if r.opts.Mode == ModeParallel && len(active) > 1 {
		var g errgroup.Group
		for i, e := range active {
			g.Go(func() error {
				outcomes[i] = r.exchange(ctx, e, snap)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, e := range active {
			outcomes[i] = r.exchange(ctx, e, snap)
		}
	}

	decisions := make([]Decision, 0, len(active))
	for i, e := range active {
		out := outcomes[i]
		switch {
		case out.err == nil:
			decisions = append(decisions, Decision{Player: e.id, Command: out.cmd})
		case IsMiss(out.err):
			if ctx.Err() != nil {
				continue
			}
			r.mu.Lock()
			e.misses++
			r.mu.Unlock()
			r.logger.Debug("tick missed", "tick", snap.Tick, "player", e.id, "name", e.name, "error", out.err)
		default:
			r.disable(e, out.err)
		}
	}
	return decisions
}

func (r *Registry) exchange(ctx context.Context, e *entry, snap *world.WorldSnapshot) outcome {
	ctx, cancel := withTimeout(ctx, r.opts.ResponseTimeout)
	defer cancel()

	if err := e.ctrl.FeedInput(ctx, snap); err != nil {
		return outcome{err: err}
	}
	cmd, err := e.ctrl.GetOutput(ctx)
	return outcome{cmd: cmd, err: err}
}

// disable takes a controller out of play for the rest of the run and
// reports the failure exactly once.
func (r *Registry) disable(e *entry, err error) {
	r.mu.Lock()
	if e.state == StateDisabled {
		r.mu.Unlock()
		return
	}
	e.state = StateDisabled
	e.failure = err
	ctrl := e.ctrl
	r.mu.Unlock()

	if ctrl != nil {
		ctrl.Close()
	}

	if errors.Is(err, ErrSpawn) {
		r.logger.Warn("cannot launch ai", "player", e.id, "name", e.name, "error", err)
	} else {
		r.logger.Warn("controller disabled", "player", e.id, "name", e.name, "error", err)
	}
	if r.opts.OnFailure != nil {
		r.opts.OnFailure(e.id, e.name, err)
	}
}

// Close closes every controller.
func (r *Registry) Close() error {
	r.mu.Lock()
	var ctrls []Controller
	for _, e := range r.entries {
		if e.ctrl != nil && e.state != StateDisabled {
			ctrls = append(ctrls, e.ctrl)
		}
		e.state = StateDisabled
	}
	r.mu.Unlock()

	var errs []error
	for _, c := range ctrls {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) sorted(state State) []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.state == state {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
