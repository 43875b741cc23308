package core

// RuntimeConfig contains configuration passed to the platform layer at startup.
type RuntimeConfig struct {
	ScreenW   int   // Screen width in characters
	ScreenH   int   // Screen height in characters
	FrameRate int   // Frame callbacks per second (the tick cadence is the game speed)
	Seed      int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		FrameRate: 60,
		Seed:      0, // 0 means use current time in platform layer
	}
}
