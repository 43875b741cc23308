package clock

import (
	"context"
	"time"
)

// Source delivers monotonically increasing frame timestamps on a cadence.
type Source interface {
	Frames() <-chan time.Time
	Stop()
}

// Ticker is a Source backed by time.Ticker.
type Ticker struct {
	t *time.Ticker
}

// NewTicker creates a source firing rate times per second.
func NewTicker(rate int) *Ticker {
	if rate <= 0 {
		rate = 60
	}
	return &Ticker{t: time.NewTicker(time.Second / time.Duration(rate))}
}

// Frames returns the frame channel.
func (t *Ticker) Frames() <-chan time.Time {
	return t.t.C
}

// Stop releases the underlying ticker.
func (t *Ticker) Stop() {
	t.t.Stop()
}

// Manual is a Source driven by the caller, used in tests.
type Manual struct {
	c chan time.Time
}

// NewManual creates a manual source.
func NewManual() *Manual {
	return &Manual{c: make(chan time.Time)}
}

// Frames returns the frame channel.
func (m *Manual) Frames() <-chan time.Time {
	return m.c
}

// Send delivers one frame; it blocks until the loop receives it.
func (m *Manual) Send(now time.Time) {
	m.c <- now
}

// Stop is a no-op; the channel is left open so pending senders do not panic.
func (m *Manual) Stop() {}

// Run is the single owner of a game loop. Every frame is passed to c.Frame
// and every function received on inbox runs on the same goroutine, so state
// touched by both never needs locking. Run stops the source and returns when
// ctx is cancelled.
func Run(ctx context.Context, src Source, c *Clock, inbox <-chan func()) {
	defer src.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-src.Frames():
			c.Frame(now)
		case fn := <-inbox:
			fn()
		}
	}
}
