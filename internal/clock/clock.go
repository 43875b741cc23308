// Package clock turns a stream of frame timestamps into a fixed-cadence
// tick stream, decoupling frame rate from game speed.
package clock

import "time"

// Clock invokes a tick function at most once per frame, whenever at least
// one interval has passed since the previous tick. Missed ticks are dropped,
// never replayed.
type Clock struct {
	interval func() time.Duration
	tick     func()
	last     time.Time
	ticks    uint64
}

// New creates a clock. interval is consulted on every frame, so a changing
// game speed takes effect immediately.
func New(interval func() time.Duration, tick func()) *Clock {
	return &Clock{
		interval: interval,
		tick:     tick,
	}
}

// Frame handles one frame callback and reports whether a tick ran.
func (c *Clock) Frame(now time.Time) bool {
	if !c.last.IsZero() && now.Sub(c.last) < c.interval() {
		return false
	}
	c.last = now
	c.ticks++
	c.tick()
	return true
}

// Reset forgets the previous tick; the next frame ticks immediately.
func (c *Clock) Reset() {
	c.last = time.Time{}
}

// Ticks returns how many ticks have run.
func (c *Clock) Ticks() uint64 {
	return c.ticks
}
