// Package protocol implements the line-oriented text protocol spoken between
// the arena and AI programs over their standard input and output.
//
// Engine to AI:
//
//	INIT BEGIN
//	player_id <int>
//	INIT END
//
//	MAP BEGIN
//	snake <player_id> <pos> <pos> ...
//	food <pos>
//	MAP END
//
//	REQUEST_ACTION
//
// AI to engine:
//
//	username <name>
//	turn_left | turn_right | straight
//
// Positions are written as (x,y) where each coordinate uses the shortest
// decimal representation that parses back to the same float64, without an
// exponent (strconv 'f' format, precision -1). AI authors can rely on this.
package protocol

import (
	"bufio"
	"io"
	"strconv"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// Message markers and keywords.
const (
	InitBegin     = "INIT BEGIN"
	InitEnd       = "INIT END"
	MapBegin      = "MAP BEGIN"
	MapEnd        = "MAP END"
	RequestAction = "REQUEST_ACTION"

	KeyPlayerID = "player_id"
	KeyUsername = "username"
	KeySnake    = "snake"
	KeyFood     = "food"

	TokenTurnLeft  = "turn_left"
	TokenTurnRight = "turn_right"
	TokenStraight  = "straight"
)

// Encoder writes engine-to-AI messages. Each message is flushed as a unit.
type Encoder struct {
	w   *bufio.Writer
	buf []byte
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteInit sends the initialization request for the given player.
func (e *Encoder) WriteInit(id core.PlayerID) error {
	e.buf = AppendInit(e.buf[:0], id)
	return e.send()
}

// WriteMap sends the map update for snap. snap is only read.
func (e *Encoder) WriteMap(snap *world.WorldSnapshot) error {
	e.buf = AppendMap(e.buf[:0], snap)
	return e.send()
}

// WriteRequestAction asks the AI for its next move.
func (e *Encoder) WriteRequestAction() error {
	e.buf = append(e.buf[:0], RequestAction...)
	e.buf = append(e.buf, '\n')
	return e.send()
}

func (e *Encoder) send() error {
	if _, err := e.w.Write(e.buf); err != nil {
		return err
	}
	return e.w.Flush()
}

// AppendInit appends an init request to dst.
func AppendInit(dst []byte, id core.PlayerID) []byte {
	dst = append(dst, InitBegin...)
	dst = append(dst, '\n')
	dst = append(dst, KeyPlayerID...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(id), 10)
	dst = append(dst, '\n')
	dst = append(dst, InitEnd...)
	return append(dst, '\n')
}

// AppendMap appends a complete map update, markers included, to dst.
// Snakes appear in snapshot order (player ascending), segments head first,
// foods in snapshot order.
func AppendMap(dst []byte, snap *world.WorldSnapshot) []byte {
	dst = append(dst, MapBegin...)
	dst = append(dst, '\n')
	for _, s := range snap.Snakes {
		dst = append(dst, KeySnake...)
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(s.Player), 10)
		for _, p := range s.Segments {
			dst = append(dst, ' ')
			dst = AppendPosition(dst, p)
		}
		dst = append(dst, '\n')
	}
	for _, f := range snap.Foods {
		dst = append(dst, KeyFood...)
		dst = append(dst, ' ')
		dst = AppendPosition(dst, f.Pos)
		dst = append(dst, '\n')
	}
	dst = append(dst, MapEnd...)
	return append(dst, '\n')
}

// MarshalMap returns the map update for snap as text.
func MarshalMap(snap *world.WorldSnapshot) string {
	return string(AppendMap(nil, snap))
}

// AppendPosition appends p in its wire form (x,y).
func AppendPosition(dst []byte, p world.Position) []byte {
	dst = append(dst, '(')
	dst = strconv.AppendFloat(dst, p.X, 'f', -1, 64)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, p.Y, 'f', -1, 64)
	return append(dst, ')')
}

// FormatPosition returns p in its wire form (x,y).
func FormatPosition(p world.Position) string {
	return string(AppendPosition(nil, p))
}

// ActionToken returns the wire token for a command.
func ActionToken(c core.Command) string {
	switch c {
	case core.CommandTurnLeft:
		return TokenTurnLeft
	case core.CommandTurnRight:
		return TokenTurnRight
	default:
		return TokenStraight
	}
}
