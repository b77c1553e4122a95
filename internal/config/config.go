// Package config provides YAML-based configuration loading for the arena:
// simulation parameters, AI program handling and match pacing.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete arena configuration.
type Config struct {
	Arena ArenaConfig `yaml:"arena"`
	AI    AIConfig    `yaml:"ai"`
	Match MatchConfig `yaml:"match"`
}

// ArenaConfig defines the simulation.
type ArenaConfig struct {
	Width           float64       `yaml:"width"`
	Height          float64       `yaml:"height"`
	Speed           float64       `yaml:"speed"`
	TurnRate        float64       `yaml:"turn_rate"` // radians per second
	InitialSegments int           `yaml:"initial_segments"`
	HeadRadius      float64       `yaml:"head_radius"`
	FoodRadius      float64       `yaml:"food_radius"`
	FoodInterval    time.Duration `yaml:"food_interval"`
	MaxFood         int           `yaml:"max_food"` // 0 = unlimited
	WallBounce      bool          `yaml:"wall_bounce"`
	Ramp            RampConfig    `yaml:"ramp"`
}

// AIConfig defines how AI programs are discovered and driven.
type AIConfig struct {
	Dir             string        `yaml:"dir"`
	Mode            string        `yaml:"mode"` // "serial" or "parallel"
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	InitTimeout     time.Duration `yaml:"init_timeout"`
	Stderr          string        `yaml:"stderr"` // "discard", "inherit" or "log"
	Python          string        `yaml:"python"`
	KillGrace       time.Duration `yaml:"kill_grace"`
}

// MatchConfig defines match pacing.
type MatchConfig struct {
	TickRate  int           `yaml:"tick_rate"`
	Human     bool          `yaml:"human"`
	HumanHold time.Duration `yaml:"human_hold"` // how long a key press counts as held
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error

	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		errs = append(errs, fmt.Errorf("arena size must be positive, got %vx%v", c.Arena.Width, c.Arena.Height))
	}
	if c.Arena.Speed < 0 {
		errs = append(errs, fmt.Errorf("arena.speed must not be negative"))
	}
	if c.Arena.HeadRadius <= 0 {
		errs = append(errs, fmt.Errorf("arena.head_radius must be positive"))
	}
	if c.Arena.InitialSegments < 0 {
		errs = append(errs, fmt.Errorf("arena.initial_segments must not be negative"))
	}
	if c.Match.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("match.tick_rate must be positive"))
	}

	switch c.AI.Mode {
	case "", "serial", "parallel":
	default:
		errs = append(errs, fmt.Errorf("ai.mode must be serial or parallel, got %q", c.AI.Mode))
	}
	switch c.AI.Stderr {
	case "", "discard", "inherit", "log":
	default:
		errs = append(errs, fmt.Errorf("ai.stderr must be discard, inherit or log, got %q", c.AI.Stderr))
	}
	switch c.Arena.Ramp.Type {
	case "", RampNone, RampTime, RampScore:
	default:
		errs = append(errs, fmt.Errorf("arena.ramp.type must be none, time or score, got %q", c.Arena.Ramp.Type))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
