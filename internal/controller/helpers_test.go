package controller

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/protocol"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// echoScript answers the init request and replies with action to every
// action request.
func echoScript(username, action string) string {
	return `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    "INIT END") echo "username ` + username + `" ;;
    REQUEST_ACTION) echo "` + action + `" ;;
  esac
done
`
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	if _, err := exec.LookPath("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

// newFakeController connects a controller to an in-process AI. respond is
// called for every decoded message; a non-empty reply is written back.
func newFakeController(t *testing.T, respond func(protocol.Message) string) *ProcessController {
	t.Helper()

	toAIr, toAIw := io.Pipe()
	fromAIr, fromAIw := io.Pipe()

	go func() {
		defer fromAIw.Close()
		dec := protocol.NewDecoder(toAIr)
		for {
			msg, err := dec.ReadMessage()
			if err != nil {
				return
			}
			if reply := respond(msg); reply != "" {
				if _, err := io.WriteString(fromAIw, reply); err != nil {
					return
				}
			}
		}
	}()

	c := newStreamController("fake", toAIw, fromAIr, func() error {
		toAIw.Close()
		fromAIr.Close()
		return nil
	})
	t.Cleanup(func() { c.Close() })
	return c
}

// stubController is an in-memory Controller with scripted behavior.
type stubController struct {
	name    string
	info    core.PlayerInfo
	initErr error
	cmd     core.Command
	outErr  error
	delay   time.Duration

	mu     sync.Mutex
	seen   []*world.WorldSnapshot
	closed bool
}

func (s *stubController) Name() string { return s.name }

func (s *stubController) Initialize(context.Context, core.PlayerID) (core.PlayerInfo, error) {
	if s.initErr != nil {
		return core.PlayerInfo{}, s.initErr
	}
	return s.info, nil
}

func (s *stubController) FeedInput(_ context.Context, snap *world.WorldSnapshot) error {
	s.mu.Lock()
	s.seen = append(s.seen, snap)
	s.mu.Unlock()
	return nil
}

func (s *stubController) GetOutput(ctx context.Context) (core.Command, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return core.CommandNoOp, ErrTimeout
		}
	}
	return s.cmd, s.outErr
}

func (s *stubController) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *stubController) snapshots() []*world.WorldSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*world.WorldSnapshot(nil), s.seen...)
}

func (s *stubController) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
