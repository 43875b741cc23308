package game

import "github.com/vovakirdan/tui-snake/internal/core"

// SetDirection buffers d as the heading for the next tick.
//
// A heading sharing an axis with the committed direction is rejected, so a
// burst of key presses between two ticks can never turn the snake back into
// its own neck. A Ready game is started by any directional input.
// Returns whether d was accepted.
func (e *Engine) SetDirection(d core.Direction) bool {
	if e.status == StatusOver || !d.Valid() {
		return false
	}

	accepted := !d.SameAxis(e.direction)
	if accepted {
		e.pending = d
	}

	if e.status == StatusReady {
		e.start()
	}
	return accepted
}

// TogglePause flips the paused flag. A Ready game starts instead;
// a finished game ignores it.
func (e *Engine) TogglePause() {
	switch e.status {
	case StatusReady:
		e.start()
	case StatusRunning:
		e.paused = !e.paused
	}
}

// Apply routes a platform action to the engine.
// Returns whether the action changed anything.
func (e *Engine) Apply(a core.Action) bool {
	if d, ok := a.Direction(); ok {
		return e.SetDirection(d)
	}

	switch a {
	case core.ActionPause:
		if e.status == StatusOver {
			return false
		}
		e.TogglePause()
		return true
	case core.ActionRestart:
		if e.status != StatusOver {
			return false
		}
		e.Reset()
		return true
	}
	return false
}
