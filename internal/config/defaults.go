package config

import (
	"math"
	"time"

	_ "embed"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// DefaultArenaConfig returns the built-in configuration. It matches the
// embedded defaults/arena.yaml.
func DefaultArenaConfig() Config {
	return Config{
		Arena: ArenaConfig{
			Width:           100,
			Height:          100,
			Speed:           5,
			TurnRate:        2 * math.Pi,
			InitialSegments: 3,
			HeadRadius:      5,
			FoodRadius:      10.0 / 6.0,
			FoodInterval:    time.Second,
			MaxFood:         0,
			WallBounce:      true,
			Ramp: RampConfig{
				Type:            RampNone,
				MaxAt:           3600,
				SpeedMultiplier: 1.0,
			},
		},
		AI: AIConfig{
			Dir:             "ais",
			Mode:            "parallel",
			ResponseTimeout: 250 * time.Millisecond,
			InitTimeout:     5 * time.Second,
			Stderr:          "discard",
			Python:          "python3",
			KillGrace:       500 * time.Millisecond,
		},
		Match: MatchConfig{
			TickRate:  60,
			Human:     true,
			HumanHold: 150 * time.Millisecond,
		},
	}
}
