package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-arena/internal/platform/tui"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

var (
	flagScoresTUI   bool
	flagScoresClear bool
	flagScoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [run-id]",
	Short: "Show recent runs and the leaderboard",
	Long: `Display the leaderboard and the most recent runs. Given a run id, show
that run's players instead.

Examples:
  arena scores
  arena scores --tui
  arena scores 0b8e6c1e-1f7e-4c1e-9a55-5f0f6f3a2d11
  arena scores --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse results in an interactive table")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all stored runs")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of rows to show")
}

func runScores(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening results database: %w", err)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearRuns(); err != nil {
			return err
		}
		fmt.Println("All runs deleted.")
		return nil
	}

	if len(args) == 1 {
		return showRun(store, args[0])
	}

	if flagScoresTUI {
		pages, err := tui.StorePages(store)
		if err != nil {
			return err
		}
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		return tui.RunScoreboard(pages, width, height)
	}

	summary, err := store.GetSummary()
	if err != nil {
		return err
	}
	if summary.Runs == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'arena run' to record the first one!")
		return nil
	}

	leaders, err := store.Leaderboard(flagScoresLimit)
	if err != nil {
		return err
	}
	fmt.Printf("Leaderboard (%d runs, %d ticks, last %s)\n\n",
		summary.Runs, summary.TotalTicks, summary.LastPlayed.Local().Format("2006-01-02 15:04"))
	fmt.Printf("  %-4s  %-16s  %-5s  %-5s  %-6s  %-4s  %s\n", "Rank", "Player", "Kind", "Best", "Total", "Runs", "Failures")
	fmt.Printf("  %-4s  %-16s  %-5s  %-5s  %-6s  %-4s  %s\n", "----", "------", "----", "----", "-----", "----", "--------")
	for i, e := range leaders {
		kind := "human"
		if e.IsAI {
			kind = "AI"
		}
		fmt.Printf("  %-4d  %-16s  %-5s  %-5d  %-6d  %-4d  %d\n",
			i+1, e.Username, kind, e.BestScore, e.TotalScore, e.Runs, e.Failures)
	}

	runs, err := store.RecentRuns(flagScoresLimit)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Recent runs")
	fmt.Println()
	for _, r := range runs {
		fmt.Printf("  %s  %s  %6d ticks  %d players  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Ticks, len(r.Players), r.Mode)
	}
	return nil
}

func showRun(store *storage.Store, id string) error {
	run, err := store.RunByID(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with id %q", id)
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  started  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  duration %s\n", run.Duration())
	fmt.Printf("  ticks    %d\n", run.Ticks)
	fmt.Printf("  seed     %d\n", run.Seed)
	fmt.Printf("  ai dir   %s (%s)\n\n", run.AIDir, run.Mode)

	fmt.Printf("  %-3s  %-16s  %-5s  %-6s  %-6s  %s\n", "ID", "Player", "Score", "Deaths", "Misses", "Failure")
	for _, p := range run.Players {
		fmt.Printf("  %-3d  %-16s  %-5d  %-6d  %-6d  %s\n",
			p.PlayerID, p.Username, p.Score, p.Deaths, p.Misses, p.Failure)
	}
	return nil
}
