// simple-ai is a reference AI program. It steers toward the nearest food
// and speaks the arena line protocol on stdin/stdout.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/logging"
	"github.com/vovakirdan/snake-arena/internal/protocol"
	"github.com/vovakirdan/snake-arena/internal/world"
)

// straightWindow is how far off the food direction the heading may be
// before the snake turns.
const straightWindow = 0.1

var (
	flagName     string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "simple-ai",
	Short:        "Reference arena AI that chases the nearest food",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := logging.New(logging.Options{
			Level:  flagLogLevel,
			Output: os.Stderr,
			Prefix: flagName,
		})
		if err != nil {
			return err
		}
		defer closeLog()
		return play(os.Stdin, os.Stdout, flagName, logger)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagName, "name", "simple_ai", "Username reported to the arena")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// play answers arena messages until the input closes.
func play(r io.Reader, w io.Writer, name string, logger *log.Logger) error {
	dec := protocol.NewDecoder(r)
	out := bufio.NewWriter(w)

	var (
		self core.PlayerID
		last *world.WorldSnapshot
	)

	for {
		msg, err := dec.ReadMessage()
		if errors.Is(err, protocol.ErrClosed) {
			logger.Info("input closed, shutting down")
			return nil
		}
		if err != nil {
			return err
		}

		switch m := msg.(type) {
		case protocol.InitMessage:
			self = m.PlayerID
			logger.Debug("initialized", "player", self)
			if err := protocol.WriteUsername(out, name); err != nil {
				return err
			}
		case protocol.MapMessage:
			last = m.World
			continue
		case protocol.RequestActionMessage:
			cmd := decide(last, self)
			logger.Debug("action", "player", self, "command", cmd)
			if err := protocol.WriteAction(out, cmd); err != nil {
				return err
			}
		}

		if err := out.Flush(); err != nil {
			return err
		}
	}
}

// decide turns toward the nearest food. Without a heading (fewer than two
// segments) or without food it keeps going straight.
func decide(snap *world.WorldSnapshot, self core.PlayerID) core.Command {
	if snap == nil {
		return core.CommandNoOp
	}
	snake, ok := snap.Snake(self)
	if !ok || len(snake.Segments) < 2 {
		return core.CommandNoOp
	}
	head := snake.Segments[0]

	var (
		target world.Position
		found  bool
		best   = math.Inf(1)
	)
	for _, f := range snap.Foods {
		if d := head.Dist(f.Pos); d < best {
			best, target, found = d, f.Pos, true
		}
	}
	if !found {
		return core.CommandNoOp
	}

	heading := head.Sub(snake.Segments[1]).Angle()
	diff := core.WrapAngle(target.Sub(head).Angle() - heading)

	switch {
	case math.Abs(diff) < straightWindow:
		return core.CommandNoOp
	case diff > 0:
		return core.CommandTurnLeft
	default:
		return core.CommandTurnRight
	}
}
