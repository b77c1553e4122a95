// arena runs snake matches between AI programs and, optionally, a human at
// the keyboard.
//
// Usage:
//
//	arena play               - Watch or join a match in the terminal
//	arena run                - Run a headless match and store the results
//	arena ais                - List the AI programs that would be launched
//	arena scores             - Show recent runs and the leaderboard
//	arena replay <file>      - Inspect a recorded match
//
// Global flags:
//
//	--config <path>     - Arena config YAML (default: search path)
//	--seed <value>      - RNG seed for reproducible matches
//	--db <path>         - Results database (default: ~/.arena/arena.db)
//	--log-level <lvl>   - debug, info, warn or error
//	--log-file <path>   - Write logs to a file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
	flagPreset   string
	flagAIDir    string
	flagMode     string
	flagTickRate int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Snake Arena - AI programs fight it out in your terminal",
	Long: `Snake Arena runs a continuous snake arena where every snake is driven
by a separate program speaking a line protocol over stdin/stdout.

Available commands:
  play     - Watch a match in the terminal, optionally steering a snake
  run      - Run a headless match
  ais      - List discovered AI programs and their player ids
  scores   - View recent runs and the leaderboard
  replay   - Inspect a recorded match

Examples:
  arena play --ai-dir ./ais
  arena run --ticks 3600 --record match.parquet
  arena scores --tui
  arena replay match.parquet --tick 120`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to arena config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arena/arena.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Arena preset: classic, small, large, frantic")
	rootCmd.PersistentFlags().StringVar(&flagAIDir, "ai-dir", "", "Directory of AI programs (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "Controller scheduling: serial or parallel (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagTickRate, "fps", 0, "Tick rate (overrides config)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(aisCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
}
