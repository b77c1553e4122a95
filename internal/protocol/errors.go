package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocol matches every *Error.
	ErrProtocol = errors.New("protocol violation")

	// ErrClosed is returned when a read yields no bytes because the peer
	// closed its output.
	ErrClosed = errors.New("protocol: stream closed")
)

// Error is a received line that does not conform to the grammar.
type Error struct {
	Line   string // offending line without its terminator
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("protocol violation: %s (line %q)", e.Reason, e.Line)
}

// Is makes errors.Is(err, ErrProtocol) succeed for every *Error.
func (e *Error) Is(target error) bool {
	return target == ErrProtocol
}

func violation(line, reason string) error {
	return &Error{Line: line, Reason: reason}
}
