package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-arena/internal/arena"
	"github.com/vovakirdan/snake-arena/internal/config"
	"github.com/vovakirdan/snake-arena/internal/controller"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/logging"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

// loadConfig loads the config file and applies the command-line overrides.
func loadConfig(logger *log.Logger) (config.Config, error) {
	cfg, source, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	logger.Debug("config loaded", "source", source)

	if flagPreset != "" {
		config.ApplyPreset(&cfg, config.Preset(flagPreset))
	}
	if flagAIDir != "" {
		cfg.AI.Dir = flagAIDir
	}
	if flagMode != "" {
		cfg.AI.Mode = flagMode
	}
	if flagTickRate > 0 {
		cfg.Match.TickRate = flagTickRate
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the command logger. When fallbackFile is set and no
// --log-file was given, logs go there instead of the terminal.
func newLogger(fallbackFile string) (*log.Logger, func() error, error) {
	file := flagLogFile
	if file == "" {
		file = fallbackFile
	}
	return logging.New(logging.Options{Level: flagLogLevel, File: file})
}

func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// setup is everything a match needs.
type setup struct {
	cfg      config.Config
	seed     int64
	registry *controller.Registry
	human    *controller.HumanController
	match    *arena.Match
}

// newSetup launches the AI programs, initializes every controller and
// spawns the snakes.
func newSetup(ctx context.Context, cfg config.Config, withHuman bool, rec arena.Recorder, logger *log.Logger) (*setup, error) {
	mode, err := controller.ParseMode(cfg.AI.Mode)
	if err != nil {
		return nil, err
	}

	reg := controller.NewRegistry(controller.Options{
		Launch: controller.LaunchOptions{
			Python:    cfg.AI.Python,
			Stderr:    controller.StderrMode(cfg.AI.Stderr),
			KillGrace: cfg.AI.KillGrace,
		},
		Mode:            mode,
		ResponseTimeout: cfg.AI.ResponseTimeout,
		InitTimeout:     cfg.AI.InitTimeout,
		Logger:          logger,
	})

	s := &setup{cfg: cfg, seed: seed(), registry: reg}

	if withHuman {
		s.human = controller.NewHumanController(cfg.Match.HumanHold)
		if err := reg.Add(core.HumanPlayer, s.human); err != nil {
			reg.Close()
			return nil, err
		}
	}

	// A human can always play, so an unreadable AI directory only ends
	// discovery.
	launched, err := reg.Discover(ctx, cfg.AI.Dir)
	if err != nil {
		if !withHuman {
			reg.Close()
			return nil, err
		}
		logger.Warn("ai discovery failed, playing without AIs", "dir", cfg.AI.Dir, "error", err)
	}
	logger.Info("ai programs launched", "count", launched, "dir", cfg.AI.Dir)

	if active := reg.InitializeAll(ctx); active == 0 {
		reg.Close()
		return nil, fmt.Errorf("no player could be initialized")
	}

	rt := core.DefaultConfig()
	rt.TickRate = cfg.Match.TickRate
	rt.Seed = s.seed
	game := arena.NewGame(cfg.Arena, rt)
	s.match = arena.NewMatch(game, reg, arena.MatchOptions{
		TickRate: cfg.Match.TickRate,
		TurnRate: cfg.Arena.TurnRate,
		Recorder: rec,
		Logger:   logger,
	})
	s.match.Start()
	return s, nil
}

func (s *setup) Close() error {
	return s.registry.Close()
}

// saveRun stores a finished match. Failures are logged, not fatal.
func saveRun(logger *log.Logger, run storage.Run, results []arena.PlayerResult) string {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open results database", "error", err)
		return ""
	}
	defer store.Close()

	for _, r := range results {
		run.Players = append(run.Players, storage.RunPlayer{
			PlayerID:    int(r.Player),
			Username:    r.Username,
			IsAI:        r.IsAI,
			Score:       r.Score,
			Deaths:      r.Deaths,
			FinalLength: r.Length,
			Misses:      r.Misses,
			Failure:     r.Failure,
		})
	}

	id, err := store.SaveRun(run)
	if err != nil {
		logger.Warn("could not save run", "error", err)
		return ""
	}
	logger.Info("run saved", "id", id)
	return id
}

// printResults writes the standings as a plain table.
func printResults(results []arena.PlayerResult) {
	fmt.Printf("  %-3s  %-16s  %-5s  %-6s  %-6s  %-6s  %s\n", "ID", "Player", "Score", "Deaths", "Length", "Misses", "Status")
	fmt.Printf("  %-3s  %-16s  %-5s  %-6s  %-6s  %-6s  %s\n", "--", "------", "-----", "------", "------", "------", "------")
	for _, r := range results {
		status := "active"
		if r.Failure != "" {
			status = r.Failure
		} else if !r.Active {
			status = "disabled"
		}
		fmt.Printf("  %-3d  %-16s  %-5d  %-6d  %-6d  %-6d  %s\n",
			r.Player, r.Username, r.Score, r.Deaths, r.Length, r.Misses, status)
	}
}
