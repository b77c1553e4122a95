package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/vovakirdan/snake-arena/internal/core"
)

// LineReader reads newline-terminated lines.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader creates a line reader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator ("\n" or "\r\n").
// A read that yields no bytes at all returns ErrClosed. A final line with
// no terminator is returned as is.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil {
		if line == "" {
			if errors.Is(err, io.EOF) {
				return "", ErrClosed
			}
			return "", err
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return trimEOL(line), nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// ParseUsername decodes an init response. The name is everything after the
// first space, with surrounding whitespace removed; it must not be empty.
func ParseUsername(line string) (string, error) {
	line = trimEOL(line)
	key, rest, _ := strings.Cut(line, " ")
	if key != KeyUsername {
		return "", violation(line, "expected username")
	}
	name := strings.TrimSpace(rest)
	if name == "" {
		return "", violation(line, "empty username")
	}
	return name, nil
}

// ParseAction decodes an action response from its first token.
func ParseAction(line string) (core.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return core.CommandNoOp, violation(trimEOL(line), "empty action")
	}
	switch fields[0] {
	case TokenTurnLeft:
		return core.CommandTurnLeft, nil
	case TokenTurnRight:
		return core.CommandTurnRight, nil
	case TokenStraight:
		return core.CommandNoOp, nil
	default:
		return core.CommandNoOp, violation(trimEOL(line), "unknown action "+fields[0])
	}
}
