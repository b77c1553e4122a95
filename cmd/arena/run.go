package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/arena"
	"github.com/vovakirdan/snake-arena/internal/replay"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

var (
	flagTicks  uint64
	flagRecord string
	flagFast   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless match",
	Long: `Run a match between the AI programs without a display and print the
standings. The result is stored in the results database.

With --record every tick's MAP update and the applied decisions are written
to a Parquet file that 'arena replay' can read.

Examples:
  arena run --ticks 3600
  arena run --ticks 600 --fast --seed 7
  arena run --record runs/match.parquet`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Uint64Var(&flagTicks, "ticks", 3600, "Number of ticks to run (0 = until interrupted)")
	runCmd.Flags().StringVar(&flagRecord, "record", "", "Record the match to this Parquet file")
	runCmd.Flags().BoolVar(&flagFast, "fast", false, "Do not pace ticks to the tick rate")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger("")
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runID := storage.NewRunID()

	var rec *replay.Recorder
	var recorder arena.Recorder
	if flagRecord != "" {
		rec, err = replay.NewRecorder(flagRecord, runID)
		if err != nil {
			return err
		}
		recorder = rec
	}

	s, err := newSetup(ctx, cfg, false, recorder, logger)
	if err != nil {
		if rec != nil {
			rec.Close()
		}
		return err
	}
	defer s.Close()

	started := time.Now()
	run := s.match.Run
	if flagFast {
		run = s.match.RunFast
	}
	err = run(ctx, flagTicks, nil)
	ended := time.Now()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if rec != nil {
		if err := rec.Close(); err != nil {
			logger.Warn("recording failed", "error", err)
		} else {
			logger.Info("match recorded", "path", rec.Path(), "ticks", rec.Rows())
		}
	}

	results := s.match.Results()
	ticks := s.match.Game().Tick()
	fmt.Printf("Match over after %d ticks (%s).\n\n", ticks, ended.Sub(started).Round(time.Millisecond))
	printResults(results)

	if ticks > 0 {
		saveRun(logger, storage.Run{
			ID:        runID,
			StartedAt: started,
			EndedAt:   ended,
			Ticks:     ticks,
			Seed:      s.seed,
			AIDir:     cfg.AI.Dir,
			Mode:      cfg.AI.Mode,
		}, results)
	}
	return nil
}
