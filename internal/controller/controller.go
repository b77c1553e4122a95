// Package controller connects decision sources to the arena: external AI
// programs speaking the line protocol, and the local keyboard player.
package controller

import (
	"context"
	"errors"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

var (
	ErrNotInitialized     = errors.New("controller: not initialized")
	ErrAlreadyInitialized = errors.New("controller: already initialized")
	ErrProcessExited      = errors.New("controller: process exited")
	ErrClosed             = errors.New("controller: closed")

	// ErrUnresponsive means the program stopped reading its input and a
	// write could not complete in time. The stream is no longer in sync.
	ErrUnresponsive = errors.New("controller: program not reading input")

	// ErrTimeout means no reply arrived before the context expired. The
	// controller stays usable; the reply is discarded when it shows up.
	ErrTimeout = errors.New("controller: reply timed out")

	// ErrBusy means a reply from an earlier timed out request is still
	// outstanding, so no new request was sent.
	ErrBusy = errors.New("controller: previous reply outstanding")
)

// Controller is one player's decision source.
//
// Initialize must complete before FeedInput or GetOutput is called, and may
// only be called once. FeedInput and GetOutput are called once each per
// tick, in that order.
type Controller interface {
	Name() string
	Initialize(ctx context.Context, id core.PlayerID) (core.PlayerInfo, error)
	FeedInput(ctx context.Context, snap *world.WorldSnapshot) error
	GetOutput(ctx context.Context) (core.Command, error)
	Close() error
}

// IsMiss reports whether err only costs the controller the current tick.
func IsMiss(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrBusy)
}
