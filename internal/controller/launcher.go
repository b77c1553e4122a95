package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ErrSpawn is wrapped by every Launch failure.
var ErrSpawn = errors.New("controller: spawn failed")

// StderrMode selects what happens to an AI program's standard error.
type StderrMode string

const (
	StderrDiscard StderrMode = "discard"
	StderrInherit StderrMode = "inherit"
	StderrLog     StderrMode = "log"
)

// DefaultKillGrace is how long Close waits for a child to exit on its own
// after its input is closed.
const DefaultKillGrace = 500 * time.Millisecond

// LaunchOptions configures how AI programs are started.
type LaunchOptions struct {
	Python    string // interpreter for .py files, "python3" when empty
	Stderr    StderrMode
	Logger    *log.Logger // receives stderr lines in StderrLog mode
	KillGrace time.Duration
}

// CommandLine returns the program and arguments used to run path.
// Files with a .py extension run under the Python interpreter; anything
// else is executed directly. There is no shebang sniffing.
func CommandLine(path string, opts LaunchOptions) (string, []string) {
	if filepath.Ext(path) == ".py" {
		python := opts.Python
		if python == "" {
			python = "python3"
		}
		return python, []string{path}
	}
	return path, nil
}

// Process is a running AI program with piped standard input and output.
type Process struct {
	path   string
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
	grace  time.Duration

	exited  chan struct{}
	waitErr error

	stderrWG  sync.WaitGroup
	closeOnce sync.Once
}

// Launch starts the program at path. The working directory and environment
// are inherited from the arena.
func Launch(ctx context.Context, path string, opts LaunchOptions) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, path, err)
	}

	name, args := CommandLine(path, opts)
	cmd := exec.Command(name, args...)

	// Plain os.Pipe pairs instead of StdinPipe/StdoutPipe: Wait must not
	// close our ends while the reader goroutine is still draining output,
	// and the write end needs deadlines.
	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, path, err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		inR.Close()
		inW.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, path, err)
	}
	cmd.Stdin = inR
	cmd.Stdout = outW

	var errR, errW *os.File
	switch opts.Stderr {
	case StderrInherit:
		cmd.Stderr = os.Stderr
	case StderrLog:
		if opts.Logger != nil {
			errR, errW, err = os.Pipe()
			if err == nil {
				cmd.Stderr = errW
			}
		}
	}

	if err := cmd.Start(); err != nil {
		for _, f := range []*os.File{inR, inW, outR, outW, errR, errW} {
			if f != nil {
				f.Close()
			}
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, path, err)
	}

	// The child holds its own copies now.
	inR.Close()
	outW.Close()
	if errW != nil {
		errW.Close()
	}

	grace := opts.KillGrace
	if grace <= 0 {
		grace = DefaultKillGrace
	}

	p := &Process{
		path:   path,
		cmd:    cmd,
		stdin:  inW,
		stdout: outR,
		grace:  grace,
		exited: make(chan struct{}),
	}

	if errR != nil {
		p.stderrWG.Add(1)
		go p.forwardStderr(errR, opts.Logger)
	}

	go p.monitor()

	return p, nil
}

// monitor reaps the child when it exits.
func (p *Process) monitor() {
	p.waitErr = p.cmd.Wait()
	close(p.exited)
}

func (p *Process) forwardStderr(r *os.File, logger *log.Logger) {
	defer p.stderrWG.Done()
	defer r.Close()

	prefix := filepath.Base(p.path)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		logger.Debug("ai stderr", "ai", prefix, "line", sc.Text())
	}
}

// Path returns the program path the process was launched from.
func (p *Process) Path() string { return p.path }

// Pid returns the operating system process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Stdin is connected to the child's standard input.
func (p *Process) Stdin() io.Writer { return p.stdin }

// Stdout is connected to the child's standard output.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Exited is closed once the child has been reaped.
func (p *Process) Exited() <-chan struct{} { return p.exited }

// ExitErr returns the result of waiting for the child. Only valid after
// Exited is closed.
func (p *Process) ExitErr() error {
	select {
	case <-p.exited:
		return p.waitErr
	default:
		return nil
	}
}

// Close closes the child's input, gives it the grace period to exit and
// kills it otherwise. It is safe to call more than once.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.stdin.Close()

		timer := time.NewTimer(p.grace)
		defer timer.Stop()

		select {
		case <-p.exited:
		case <-timer.C:
			if p.cmd.Process != nil {
				p.cmd.Process.Kill()
			}
			<-p.exited
		}

		p.stdout.Close()
		p.stderrWG.Wait()
	})
	return nil
}
