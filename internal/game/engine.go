// Package game implements the snake state machine: movement, collisions,
// food and the input legality filter. It performs no I/O; terminal
// transitions are reported to subscribers as events.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Status is the coarse lifecycle state of a game.
type Status int

const (
	StatusReady   Status = iota // Waiting for the first input
	StatusRunning               // Ticking (unless paused)
	StatusOver                  // Terminal, frozen until Reset
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// EndReason explains why a game reached StatusOver.
type EndReason int

const (
	ReasonNone EndReason = iota
	ReasonWall
	ReasonSelf
	ReasonBoardFull
)

func (r EndReason) String() string {
	switch r {
	case ReasonWall:
		return "wall"
	case ReasonSelf:
		return "self"
	case ReasonBoardFull:
		return "board_full"
	default:
		return "none"
	}
}

// noFood marks a board with no free cell left.
var noFood = core.Point{X: -1, Y: -1}

// Engine owns the authoritative state of one game.
// It is not safe for concurrent use; the owning loop serializes ticks and input.
// Only Subscribe and the cancel funcs it returns may be called from elsewhere.
type Engine struct {
	cfg Config
	rng *rand.Rand

	snake     []core.Point // Head at index 0
	food      core.Point
	direction core.Direction // Committed heading
	pending   core.Direction // Buffered heading, committed on the next tick
	score     int
	speed     time.Duration
	paused    bool
	status    Status
	reason    EndReason
	ticks     uint64
	foodEaten int

	mu           sync.Mutex // Guards listeners
	listeners    []listener
	nextListener int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSeed seeds the food placement RNG.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand uses the given RNG for food placement.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// New creates an engine in the Ready state.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e.Reset()
	return e, nil
}

// Config returns the rules this engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Reset discards the current game and returns to Ready.
// The snake starts at the board centre heading up, body trailing below.
func (e *Engine) Reset() {
	mid := e.cfg.GridSize / 2
	e.snake = make([]core.Point, e.cfg.InitialLength)
	for i := range e.snake {
		e.snake[i] = core.Point{X: mid, Y: mid + i}
	}

	e.direction = core.DirUp
	e.pending = core.DirUp
	e.score = 0
	e.speed = e.cfg.InitialSpeed
	e.paused = true
	e.status = StatusReady
	e.reason = ReasonNone
	e.ticks = 0
	e.foodEaten = 0

	if food, ok := generateFood(e.rng, e.cfg.GridSize, e.snake); ok {
		e.food = food
	} else {
		e.food = noFood
	}
}

// start moves a Ready game to Running.
func (e *Engine) start() {
	e.status = StatusRunning
	e.paused = false
	e.emit(Started{})
}

// Speed returns the current tick period.
func (e *Engine) Speed() time.Duration {
	return e.speed
}

// Status returns the lifecycle state.
func (e *Engine) Status() Status {
	return e.status
}

// Tick applies one state transition. It is a no-op unless the game is
// running and not paused.
func (e *Engine) Tick() {
	if e.status != StatusRunning || e.paused {
		return
	}
	e.ticks++

	// Reversals are judged against the committed heading.
	if !e.pending.SameAxis(e.direction) {
		e.direction = e.pending
	}

	newHead := e.snake[0].Add(e.direction)

	if !newHead.In(e.cfg.GridSize) {
		e.end(ReasonWall)
		return
	}
	// The tail still counts: collision is checked against the pre-move body.
	if occupies(e.snake, newHead) {
		e.end(ReasonSelf)
		return
	}

	e.snake = append(e.snake, core.Point{})
	copy(e.snake[1:], e.snake[:len(e.snake)-1])
	e.snake[0] = newHead

	if newHead != e.food {
		e.snake = e.snake[:len(e.snake)-1]
		return
	}

	e.score += e.cfg.ScoreStep
	e.foodEaten++
	e.speed = max(e.speed-e.cfg.SpeedStep, e.cfg.MinSpeed)

	food, ok := generateFood(e.rng, e.cfg.GridSize, e.snake)
	if !ok {
		food = noFood
	}
	e.food = food

	e.emit(FoodEaten{
		At:     newHead,
		Score:  e.score,
		Length: len(e.snake),
		Speed:  e.speed,
	})

	if !ok {
		e.end(ReasonBoardFull)
	}
}

// end freezes the game and notifies subscribers.
func (e *Engine) end(reason EndReason) {
	e.status = StatusOver
	e.reason = reason
	e.paused = false

	e.emit(GameEnded{
		Score:  e.score,
		Length: len(e.snake),
		Reason: reason,
		Ticks:  e.ticks,
	})
}

func occupies(body []core.Point, p core.Point) bool {
	for _, seg := range body {
		if seg == p {
			return true
		}
	}
	return false
}
