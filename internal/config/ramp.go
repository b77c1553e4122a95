package config

import "math"

// Ramp types.
const (
	RampNone  = "none"
	RampTime  = "time"
	RampScore = "score"
)

// RampConfig makes snakes speed up as the match goes on.
type RampConfig struct {
	Type            string  `yaml:"type"`             // "none", "time" or "score"
	InitialLevel    float64 `yaml:"initial_level"`    // 0.0 = base speed, 1.0 = full multiplier
	MaxAt           int     `yaml:"max_at"`           // ticks or best score at which the ramp tops out
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // added to speed at full level
}

// Ramp calculates the current speed from the match progress.
type Ramp struct {
	cfg RampConfig
}

// NewRamp creates a speed ramp.
func NewRamp(cfg RampConfig) *Ramp {
	cfg.InitialLevel = clampF(cfg.InitialLevel, 0.0, 1.0)
	return &Ramp{cfg: cfg}
}

// IsEnabled returns whether the ramp changes anything over time.
func (r *Ramp) IsEnabled() bool {
	return r.cfg.Type == RampTime || r.cfg.Type == RampScore
}

// Level returns the current level (0.0 to 1.0) from the best score and
// elapsed ticks.
func (r *Ramp) Level(bestScore int, ticks uint64) float64 {
	if !r.IsEnabled() {
		return r.cfg.InitialLevel
	}

	maxAt := float64(r.cfg.MaxAt)
	if maxAt <= 0 {
		maxAt = 1 // Prevent division by zero
	}

	var progress float64
	if r.cfg.Type == RampScore {
		progress = float64(bestScore) / maxAt
	} else {
		progress = float64(ticks) / maxAt
	}
	progress = clampF(progress, 0.0, 1.0)

	// Interpolate from initial level to 1.0
	return r.cfg.InitialLevel + progress*(1.0-r.cfg.InitialLevel)
}

// Speed scales base from base to base * (1 + speed_multiplier).
func (r *Ramp) Speed(base float64, bestScore int, ticks uint64) float64 {
	return base * (1.0 + r.Level(bestScore, ticks)*r.cfg.SpeedMultiplier)
}

// Preset names a bundle of arena settings.
type Preset string

const (
	PresetClassic Preset = "classic"
	PresetSmall   Preset = "small"
	PresetLarge   Preset = "large"
	PresetFrantic Preset = "frantic"
)

// Presets lists the known presets.
func Presets() []Preset {
	return []Preset{PresetClassic, PresetSmall, PresetLarge, PresetFrantic}
}

// ApplyPreset modifies the arena settings for a preset. Unknown presets and
// classic leave the config untouched.
func ApplyPreset(cfg *Config, preset Preset) {
	switch preset {
	case PresetSmall:
		cfg.Arena.Width = 60
		cfg.Arena.Height = 60
		cfg.Arena.MaxFood = 5
	case PresetLarge:
		cfg.Arena.Width = 200
		cfg.Arena.Height = 200
		cfg.Arena.FoodInterval /= 2
	case PresetFrantic:
		cfg.Arena.Ramp.Type = RampTime
		cfg.Arena.Ramp.InitialLevel = 0.3
		cfg.Arena.Ramp.MaxAt = 60 * cfg.Match.TickRate
		cfg.Arena.Ramp.SpeedMultiplier = 2.0
	}
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
