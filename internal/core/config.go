package core

import "time"

// RuntimeConfig contains configuration passed to the arena at initialization.
// The simulation uses it for its fixed timestep and for deterministic spawning.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TickInterval returns the wall-clock duration of one tick.
func (c RuntimeConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(max(1, c.TickRate))
}

// Dt returns the simulated seconds covered by one tick.
func (c RuntimeConfig) Dt() float64 {
	return 1.0 / float64(max(1, c.TickRate))
}
