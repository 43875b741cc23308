package clock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestFrameTicksOncePerInterval(t *testing.T) {
	ticks := 0
	c := New(func() time.Duration { return 100 * time.Millisecond }, func() { ticks++ })
	base := time.Unix(1000, 0)

	tests := []struct {
		offset   time.Duration
		expected bool
	}{
		{0, true}, // first frame always ticks
		{16 * time.Millisecond, false},
		{99 * time.Millisecond, false},
		{100 * time.Millisecond, true},
		{150 * time.Millisecond, false},
		{200 * time.Millisecond, true},
	}

	for _, tc := range tests {
		if got := c.Frame(base.Add(tc.offset)); got != tc.expected {
			t.Errorf("Frame(+%s) = %v, expected %v", tc.offset, got, tc.expected)
		}
	}
	if ticks != 3 || c.Ticks() != 3 {
		t.Errorf("ticks = %d (clock says %d), expected 3", ticks, c.Ticks())
	}
}

func TestFrameDropsMissedTicks(t *testing.T) {
	ticks := 0
	c := New(func() time.Duration { return 10 * time.Millisecond }, func() { ticks++ })
	base := time.Unix(1000, 0)

	c.Frame(base)
	// A one second stall covers 100 intervals but yields a single tick.
	c.Frame(base.Add(time.Second))

	if ticks != 2 {
		t.Errorf("ticks = %d, expected 2 (no catch-up burst)", ticks)
	}
	// The next tick is measured from the stalled frame.
	if c.Frame(base.Add(time.Second + 5*time.Millisecond)) {
		t.Error("frame 5ms after the last tick should not tick")
	}
}

func TestIntervalChangesApplyImmediately(t *testing.T) {
	interval := 100 * time.Millisecond
	c := New(func() time.Duration { return interval }, func() {})
	base := time.Unix(1000, 0)

	c.Frame(base)
	interval = 50 * time.Millisecond

	if !c.Frame(base.Add(50 * time.Millisecond)) {
		t.Error("shorter interval should apply on the next frame")
	}
}

func TestReset(t *testing.T) {
	c := New(func() time.Duration { return time.Hour }, func() {})
	now := time.Unix(1000, 0)

	c.Frame(now)
	if c.Frame(now.Add(time.Minute)) {
		t.Fatal("should not tick within the interval")
	}
	c.Reset()
	if !c.Frame(now.Add(2 * time.Minute)) {
		t.Error("first frame after Reset should tick")
	}
}

func TestRunSerializesFramesAndInbox(t *testing.T) {
	var log []string
	c := New(func() time.Duration { return time.Millisecond }, func() { log = append(log, "tick") })
	src := NewManual()
	inbox := make(chan func())
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		Run(ctx, src, c, inbox)
	}()

	base := time.Unix(1000, 0)
	src.Send(base)
	inbox <- func() { log = append(log, "input") }
	src.Send(base.Add(time.Second))

	cancel()
	wg.Wait()

	expected := []string{"tick", "input", "tick"}
	if len(log) != len(expected) {
		t.Fatalf("log = %v, expected %v", log, expected)
	}
	for i := range expected {
		if log[i] != expected[i] {
			t.Errorf("log[%d] = %q, expected %q", i, log[i], expected[i])
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	c := New(func() time.Duration { return time.Millisecond }, func() {})
	src := NewTicker(1000)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Run(ctx, src, c, nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
