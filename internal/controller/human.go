package controller

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// HumanUsername is the name reported for the keyboard player.
const HumanUsername = "player"

// HumanController turns keyboard state into commands.
//
// Terminals report key presses but not releases, so a key counts as held for
// the hold window after its last press event. With a zero window each press
// is consumed by the next GetOutput.
type HumanController struct {
	mu          sync.Mutex
	hold        time.Duration
	now         func() time.Time
	left        time.Time
	right       time.Time
	initialized bool
}

// NewHumanController creates a keyboard controller.
func NewHumanController(hold time.Duration) *HumanController {
	return &HumanController{hold: hold, now: time.Now}
}

func (h *HumanController) Name() string { return "keyboard" }

// Initialize reports the local player. The id is not needed.
func (h *HumanController) Initialize(_ context.Context, _ core.PlayerID) (core.PlayerInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return core.PlayerInfo{}, ErrAlreadyInitialized
	}
	h.initialized = true
	return core.PlayerInfo{Username: HumanUsername, IsAI: false}, nil
}

// FeedInput is a no-op; the player sees the screen.
func (h *HumanController) FeedInput(context.Context, *world.WorldSnapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return ErrNotInitialized
	}
	return nil
}

// Press records key events. Keys passed as false are left as they are.
func (h *HumanController) Press(left, right bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t := h.now()
	if left {
		h.left = t
	}
	if right {
		h.right = t
	}
}

// Release forgets both keys.
func (h *HumanController) Release() {
	h.mu.Lock()
	h.left, h.right = time.Time{}, time.Time{}
	h.mu.Unlock()
}

// GetOutput reports the current key state. Left and right together cancel.
func (h *HumanController) GetOutput(context.Context) (core.Command, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return core.CommandNoOp, ErrNotInitialized
	}

	left, right := h.held(h.left), h.held(h.right)
	if h.hold <= 0 {
		h.left, h.right = time.Time{}, time.Time{}
	}

	switch {
	case left && !right:
		return core.CommandTurnLeft, nil
	case right && !left:
		return core.CommandTurnRight, nil
	default:
		return core.CommandNoOp, nil
	}
}

func (h *HumanController) held(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	if h.hold <= 0 {
		return true
	}
	return h.now().Sub(at) < h.hold
}

func (h *HumanController) Close() error { return nil }
