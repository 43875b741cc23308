package game

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the tunable rules of a game.
type Config struct {
	GridSize      int           // Board is GridSize×GridSize cells
	InitialLength int           // Snake length after Reset
	InitialSpeed  time.Duration // Tick period after Reset
	MinSpeed      time.Duration // Floor for the tick period
	SpeedStep     time.Duration // Period reduction per food
	ScoreStep     int           // Points per food
}

// DefaultConfig returns the classic 20×20 rules.
func DefaultConfig() Config {
	return Config{
		GridSize:      20,
		InitialLength: 3,
		InitialSpeed:  150 * time.Millisecond,
		MinSpeed:      50 * time.Millisecond,
		SpeedStep:     2 * time.Millisecond,
		ScoreStep:     10,
	}
}

// Validate checks that the rules describe a playable board.
func (c Config) Validate() error {
	var errs []error
	if c.GridSize < 5 {
		errs = append(errs, fmt.Errorf("grid size %d is below 5", c.GridSize))
	}
	// The snake spawns at the centre and extends towards the bottom edge.
	if c.InitialLength < 3 || c.InitialLength > c.GridSize-c.GridSize/2 {
		errs = append(errs, fmt.Errorf("initial length %d does not fit a %d grid", c.InitialLength, c.GridSize))
	}
	if c.InitialSpeed <= 0 || c.MinSpeed <= 0 {
		errs = append(errs, errors.New("speeds must be positive"))
	}
	if c.MinSpeed > c.InitialSpeed {
		errs = append(errs, fmt.Errorf("min speed %s exceeds initial speed %s", c.MinSpeed, c.InitialSpeed))
	}
	if c.SpeedStep < 0 || c.ScoreStep < 0 {
		errs = append(errs, errors.New("speed and score steps must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("game: invalid config: %w", errors.Join(errs...))
	}
	return nil
}
