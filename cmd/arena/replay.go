package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/protocol"
	"github.com/vovakirdan/snake-arena/internal/replay"
)

var flagReplayTick int64

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Inspect a recorded match",
	Long: `Summarise a Parquet recording made with 'arena run --record'. With --tick
the MAP update the AI programs received on that tick is printed exactly as
it was sent, followed by the decisions applied after it.

Examples:
  arena replay match.parquet
  arena replay match.parquet --tick 120`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Int64Var(&flagReplayTick, "tick", -1, "Print the MAP update of this tick")
}

func runReplay(cmd *cobra.Command, args []string) error {
	rep, err := replay.Open(args[0])
	if err != nil {
		return err
	}

	if flagReplayTick >= 0 {
		row, ok := rep.Find(uint64(flagReplayTick))
		if !ok {
			return fmt.Errorf("tick %d is not in the recording", flagReplayTick)
		}
		// Decode to make sure the stored text is still a valid update.
		if _, err := row.Snapshot(); err != nil {
			return err
		}
		fmt.Print(row.Map)
		decisions, err := row.Decisions()
		if err != nil {
			return err
		}
		for _, d := range decisions {
			fmt.Printf("# player %d: %s\n", d.Player, protocol.ActionToken(d.Command))
		}
		return nil
	}

	sum := rep.Summarize()
	fmt.Printf("Recording %s\n", args[0])
	fmt.Printf("  run      %s\n", rep.RunID)
	fmt.Printf("  schema   %s\n", rep.Schema)
	fmt.Printf("  ticks    %d (%d..%d)\n", sum.Ticks, sum.FirstTick, sum.LastTick)
	fmt.Printf("  snakes   %d max\n", sum.MaxSnakes)
	fmt.Printf("  segments %d max\n", sum.MaxSegments)
	fmt.Printf("  food     %d max\n", sum.MaxFoods)

	actions := make([]string, 0, len(sum.Actions))
	for a := range sum.Actions {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	fmt.Println()
	for _, a := range actions {
		fmt.Printf("  %-10s %d\n", a, sum.Actions[a])
	}
	return nil
}
