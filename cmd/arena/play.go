package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-arena/internal/logging"
	"github.com/vovakirdan/snake-arena/internal/platform/tui"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

var (
	flagNoHuman bool
	flagNoSave  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Watch a match in the terminal",
	Long: `Start a match and show it in the terminal. Unless --no-human is given
you steer snake 0 with the keyboard.

Controls:
  Left/A     - Turn left
  Right/D    - Turn right
  S          - Both keys (keeps heading)
  P/Space    - Pause
  ?          - Help
  Q/Esc      - Quit

Logs are written to ~/.arena/arena.log unless --log-file is set.

Examples:
  arena play
  arena play --ai-dir ./ais --no-human
  arena play --preset frantic --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagNoHuman, "no-human", false, "Only AI programs play")
	playCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store the result")
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(logging.DefaultFile())
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

	withHuman := cfg.Match.Human && !flagNoHuman
	s, err := newSetup(ctx, cfg, withHuman, nil, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	started := time.Now()
	results, err := tui.Run(ctx, s.match, tui.Options{
		Human:    s.human,
		ArenaW:   cfg.Arena.Width,
		ArenaH:   cfg.Arena.Height,
		TickRate: cfg.Match.TickRate,
		Width:    width,
		Height:   height,
	})
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fmt.Printf("Match over after %d ticks.\n\n", s.match.Game().Tick())
	printResults(results)

	if !flagNoSave && s.match.Game().Tick() > 0 {
		saveRun(logger, storage.Run{
			StartedAt: started,
			EndedAt:   time.Now(),
			Ticks:     s.match.Game().Tick(),
			Seed:      s.seed,
			AIDir:     cfg.AI.Dir,
			Mode:      cfg.AI.Mode,
		}, results)
	}
	return nil
}
