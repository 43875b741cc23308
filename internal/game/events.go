package game

import (
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Event is emitted by the engine on notable transitions.
// Listeners run synchronously on the engine's goroutine and must not block.
type Event interface {
	event()
}

// Started is emitted when a Ready game receives its first input.
type Started struct{}

func (Started) event() {}

// FoodEaten is emitted after the snake grows.
type FoodEaten struct {
	At     core.Point
	Score  int
	Length int
	Speed  time.Duration
}

func (FoodEaten) event() {}

// GameEnded is emitted exactly once when the game enters GameOver.
type GameEnded struct {
	Score  int
	Length int
	Reason EndReason
	Ticks  uint64
}

func (GameEnded) event() {}

type listener struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every event emitted from now on.
// The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(Event)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listener{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	ls := e.listeners
	e.mu.Unlock()

	for _, l := range ls {
		l.fn(ev)
	}
}
