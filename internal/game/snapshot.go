package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Snapshot is a read-only copy of the game state for renderers.
type Snapshot struct {
	GridSize  int
	Snake     []core.Point // Head at index 0
	Food      core.Point
	HasFood   bool
	Direction core.Direction
	Pending   core.Direction
	Score     int
	Speed     time.Duration
	Paused    bool
	Status    Status
	Reason    EndReason
	Ticks     uint64
	FoodEaten int
}

// Snapshot copies the current state. Later ticks do not affect the result.
func (e *Engine) Snapshot() Snapshot {
	snake := make([]core.Point, len(e.snake))
	copy(snake, e.snake)

	return Snapshot{
		GridSize:  e.cfg.GridSize,
		Snake:     snake,
		Food:      e.food,
		HasFood:   e.food != noFood,
		Direction: e.direction,
		Pending:   e.pending,
		Score:     e.score,
		Speed:     e.speed,
		Paused:    e.paused,
		Status:    e.status,
		Reason:    e.reason,
		Ticks:     e.ticks,
		FoodEaten: e.foodEaten,
	}
}

// Head returns the head cell.
func (s Snapshot) Head() core.Point {
	if len(s.Snake) == 0 {
		return noFood
	}
	return s.Snake[0]
}

// GameOver reports whether the game has ended.
func (s Snapshot) GameOver() bool {
	return s.Status == StatusOver
}

// String returns a compact multi-line description, handy in test failures.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d, Score: %d, Status: %s, Paused: %v\n", s.Ticks, s.Score, s.Status, s.Paused)
	fmt.Fprintf(&b, "Snake len: %d, Direction: %s, Head: %s, Food: %s\n", len(s.Snake), s.Direction, s.Head(), s.Food)
	if s.Status == StatusOver {
		fmt.Fprintf(&b, "Reason: %s\n", s.Reason)
	}
	return b.String()
}
