package core

import "strconv"

// PlayerID identifies one snake in the arena.
// 0 is reserved for the local human player; AI players are numbered from 1
// in discovery order.
type PlayerID int

// HumanPlayer is the PlayerID of the local keyboard player.
const HumanPlayer PlayerID = 0

// String returns the decimal form used on the wire.
func (id PlayerID) String() string {
	return strconv.Itoa(int(id))
}

// PlayerInfo describes a player once its controller has been initialized.
// It is produced exactly once and never modified afterwards.
type PlayerInfo struct {
	Username string
	IsAI     bool
}

// Command is a movement decision for one snake during one tick.
type Command int

const (
	CommandNoOp      Command = iota // keep the current heading
	CommandTurnLeft                 // rotate counter-clockwise
	CommandTurnRight                // rotate clockwise
)

// String returns a human-readable name for the command.
func (c Command) String() string {
	switch c {
	case CommandNoOp:
		return "NoOp"
	case CommandTurnLeft:
		return "TurnLeft"
	case CommandTurnRight:
		return "TurnRight"
	default:
		return "Unknown"
	}
}
