package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/protocol"
	"github.com/vovakirdan/snake-arena/internal/world"
)

type deadlineWriter interface {
	SetWriteDeadline(t time.Time) error
}

// ProcessController drives an AI program over the line protocol.
type ProcessController struct {
	name string
	proc *Process // nil for controllers built on plain streams

	out    io.Writer
	enc    *protocol.Encoder
	closer func() error

	lines   chan string
	readErr error // set before lines is closed
	done    chan struct{}

	mu          sync.Mutex
	initialized bool
	owed        int

	closeOnce sync.Once
	closeErr  error
}

// Spawn launches the program at path and wraps it in a controller.
func Spawn(ctx context.Context, path string, opts LaunchOptions) (*ProcessController, error) {
	proc, err := Launch(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	c := newStreamController(filepath.Base(path), proc.Stdin(), proc.Stdout(), proc.Close)
	c.proc = proc
	return c, nil
}

// newStreamController builds a controller over arbitrary streams. close is
// called once from Close.
func newStreamController(name string, w io.Writer, r io.Reader, close func() error) *ProcessController {
	c := &ProcessController{
		name:   name,
		out:    w,
		enc:    protocol.NewEncoder(w),
		closer: close,
		lines:  make(chan string, 16),
		done:   make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

func (c *ProcessController) readLoop(r io.Reader) {
	defer close(c.lines)

	lr := protocol.NewLineReader(r)
	for {
		line, err := lr.ReadLine()
		if err != nil {
			c.readErr = err
			return
		}
		select {
		case c.lines <- line:
		case <-c.done:
			return
		}
	}
}

// Name returns the program's file name.
func (c *ProcessController) Name() string { return c.name }

// Process returns the underlying child process, if any.
func (c *ProcessController) Process() *Process { return c.proc }

// Initialize sends the init request and waits for the username reply.
func (c *ProcessController) Initialize(ctx context.Context, id core.PlayerID) (core.PlayerInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return core.PlayerInfo{}, ErrAlreadyInitialized
	}
	c.initialized = true

	if err := c.write(ctx, func() error { return c.enc.WriteInit(id) }); err != nil {
		return core.PlayerInfo{}, err
	}
	line, err := c.await(ctx)
	if err != nil {
		return core.PlayerInfo{}, err
	}
	name, err := protocol.ParseUsername(line)
	if err != nil {
		return core.PlayerInfo{}, fmt.Errorf("controller %s: %w", c.name, err)
	}
	return core.PlayerInfo{Username: name, IsAI: true}, nil
}

// FeedInput sends the map update. No reply is expected.
func (c *ProcessController) FeedInput(ctx context.Context, snap *world.WorldSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return err
	}
	return c.write(ctx, func() error { return c.enc.WriteMap(snap) })
}

// GetOutput requests an action and waits for the reply.
func (c *ProcessController) GetOutput(ctx context.Context) (core.Command, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return core.CommandNoOp, err
	}
	if err := c.write(ctx, c.enc.WriteRequestAction); err != nil {
		return core.CommandNoOp, err
	}
	line, err := c.await(ctx)
	if err != nil {
		return core.CommandNoOp, err
	}
	cmd, err := protocol.ParseAction(line)
	if err != nil {
		return core.CommandNoOp, fmt.Errorf("controller %s: %w", c.name, err)
	}
	return cmd, nil
}

// ready checks the call order and settles replies owed from timed out
// requests. Must be called with mu held.
func (c *ProcessController) ready() error {
	if !c.initialized {
		return ErrNotInitialized
	}
	for c.owed > 0 {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return c.exitErr()
			}
			c.owed--
		case <-c.done:
			return ErrClosed
		default:
			return fmt.Errorf("controller %s: %w", c.name, ErrBusy)
		}
	}
	return nil
}

func (c *ProcessController) write(ctx context.Context, send func() error) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	dw, hasDeadline := c.out.(deadlineWriter)
	if hasDeadline {
		if deadline, ok := ctx.Deadline(); ok {
			dw.SetWriteDeadline(deadline)
			defer dw.SetWriteDeadline(time.Time{})
		}
	}

	if err := send(); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("controller %s: %w", c.name, ErrUnresponsive)
		}
		return fmt.Errorf("controller %s: %w: %w", c.name, ErrProcessExited, err)
	}
	return nil
}

// await blocks for the next reply line. On timeout the reply is owed and
// will be discarded by ready.
func (c *ProcessController) await(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", c.exitErr()
		}
		return line, nil
	case <-c.done:
		return "", ErrClosed
	case <-ctx.Done():
		c.owed++
		return "", fmt.Errorf("controller %s: %w", c.name, ErrTimeout)
	}
}

func (c *ProcessController) exitErr() error {
	if c.readErr == nil || errors.Is(c.readErr, protocol.ErrClosed) {
		return fmt.Errorf("controller %s: %w", c.name, ErrProcessExited)
	}
	return fmt.Errorf("controller %s: %w: %w", c.name, ErrProcessExited, c.readErr)
}

// Close stops the reader and releases the program. Safe to call more than
// once and concurrently with a blocked call.
func (c *ProcessController) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.closer != nil {
			c.closeErr = c.closer()
		}
	})
	return c.closeErr
}
