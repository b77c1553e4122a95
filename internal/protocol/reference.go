package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// Message is an engine-to-AI message decoded by the AI side.
type Message interface {
	message()
}

// InitMessage carries the player id assigned to the AI.
type InitMessage struct {
	PlayerID core.PlayerID
}

func (InitMessage) message() {}

// MapMessage carries a decoded map update. The tick is not transmitted,
// so World.Tick is always zero.
type MapMessage struct {
	World *world.WorldSnapshot
}

func (MapMessage) message() {}

// RequestActionMessage asks the AI for a move.
type RequestActionMessage struct{}

func (RequestActionMessage) message() {}

// Decoder reads engine-to-AI messages. It is what an AI program written in Go
// uses, and what tests use to check the encoder.
type Decoder struct {
	lines *LineReader
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{lines: NewLineReader(r)}
}

// ReadMessage blocks until a complete message has been read.
// It returns ErrClosed once the engine closes the stream.
func (d *Decoder) ReadMessage() (Message, error) {
	line, err := d.lines.ReadLine()
	if err != nil {
		return nil, err
	}

	switch strings.TrimSpace(line) {
	case InitBegin:
		body, err := d.readUntil(InitEnd)
		if err != nil {
			return nil, err
		}
		return parseInit(body)
	case MapBegin:
		body, err := d.readUntil(MapEnd)
		if err != nil {
			return nil, err
		}
		snap, err := parseMapBody(body)
		if err != nil {
			return nil, err
		}
		return MapMessage{World: snap}, nil
	case RequestAction:
		return RequestActionMessage{}, nil
	default:
		return nil, violation(line, "unexpected message")
	}
}

func (d *Decoder) readUntil(end string) ([]string, error) {
	var body []string
	for {
		line, err := d.lines.ReadLine()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == end {
			return body, nil
		}
		body = append(body, line)
	}
}

func parseInit(body []string) (InitMessage, error) {
	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == KeyPlayerID {
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return InitMessage{}, violation(line, "bad player id")
			}
			return InitMessage{PlayerID: core.PlayerID(id)}, nil
		}
	}
	return InitMessage{}, violation(strings.Join(body, "\\n"), "missing player_id")
}

// DecodeMap parses a complete map update, markers included.
func DecodeMap(text string) (*world.WorldSnapshot, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i := range lines {
		lines[i] = trimEOL(lines[i])
	}
	if len(lines) < 2 || lines[0] != MapBegin {
		return nil, violation(firstLine(lines), "missing "+MapBegin)
	}
	if lines[len(lines)-1] != MapEnd {
		return nil, violation(lines[len(lines)-1], "missing "+MapEnd)
	}
	return parseMapBody(lines[1 : len(lines)-1])
}

func firstLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func parseMapBody(body []string) (*world.WorldSnapshot, error) {
	var segments []world.SegmentRecord
	var foods []world.Position
	seen := make(map[core.PlayerID]bool)

	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case KeySnake:
			if len(fields) < 2 {
				return nil, violation(line, "snake without player id")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, violation(line, "bad player id")
			}
			id := core.PlayerID(n)
			if seen[id] {
				return nil, violation(line, "duplicate snake")
			}
			seen[id] = true
			for i, tok := range fields[2:] {
				p, err := ParsePosition(tok)
				if err != nil {
					return nil, violation(line, err.Error())
				}
				segments = append(segments, world.SegmentRecord{Player: id, Index: i, Pos: p})
			}
		case KeyFood:
			if len(fields) != 2 {
				return nil, violation(line, "food needs exactly one position")
			}
			p, err := ParsePosition(fields[1])
			if err != nil {
				return nil, violation(line, err.Error())
			}
			foods = append(foods, p)
		default:
			return nil, violation(line, "unknown map line")
		}
	}

	return world.FromRecords(0, segments, foods), nil
}

// ParsePosition parses the (x,y) wire form.
func ParsePosition(s string) (world.Position, error) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return world.Position{}, fmt.Errorf("position %q not parenthesized", s)
	}
	xs, ys, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return world.Position{}, fmt.Errorf("position %q missing comma", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return world.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return world.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	return world.Position{X: x, Y: y}, nil
}

// FormatUsername returns an init response line, terminator included.
func FormatUsername(name string) string {
	return KeyUsername + " " + name + "\n"
}

// FormatAction returns an action response line, terminator included.
func FormatAction(c core.Command) string {
	return ActionToken(c) + "\n"
}

// WriteUsername sends an init response.
func WriteUsername(w io.Writer, name string) error {
	_, err := io.WriteString(w, FormatUsername(name))
	return err
}

// WriteAction sends an action response.
func WriteAction(w io.Writer, c core.Command) error {
	_, err := io.WriteString(w, FormatAction(c))
	return err
}
