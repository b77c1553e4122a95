package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/snake-arena/internal/config"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/logging"
)

func TestNewSetupHumanSurvivesBadAIDir(t *testing.T) {
	tmpDir := t.TempDir()
	notADir := filepath.Join(tmpDir, "ais")
	if err := os.WriteFile(notADir, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	tests := []struct {
		name string
		dir  string
	}{
		{"regular file", notADir},
		{"missing", filepath.Join(tmpDir, "nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultArenaConfig()
			cfg.AI.Dir = tt.dir

			s, err := newSetup(context.Background(), cfg, true, nil, logging.Discard())
			if err != nil {
				t.Fatalf("newSetup() failed: %v", err)
			}
			defer s.Close()

			players := s.registry.Players()
			if len(players) != 1 || players[0] != core.HumanPlayer {
				t.Errorf("Players() = %v, expected only the human", players)
			}
			if got := s.match.Game().Players(); len(got) != 1 || got[0] != core.HumanPlayer {
				t.Errorf("spawned snakes = %v, expected only the human", got)
			}
		})
	}
}

func TestNewSetupWithoutHumanNeedsAIDir(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "ais")
	if err := os.WriteFile(notADir, nil, 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg := config.DefaultArenaConfig()
	cfg.AI.Dir = notADir

	if _, err := newSetup(context.Background(), cfg, false, nil, logging.Discard()); err == nil {
		t.Error("expected error when no human plays and the AI directory is unreadable")
	}
}
