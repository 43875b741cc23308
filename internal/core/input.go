package core

// Action represents a semantic game action, abstracted from physical key presses.
// This allows the engine to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, K, Up arrow
	ActionDown           // S, J, Down arrow
	ActionLeft           // A, H, Left arrow
	ActionRight          // D, L, Right arrow
	ActionPause          // P, Space - pause/unpause game
	ActionRestart        // R key - restart game after game over
	ActionBoard          // Tab - open the leaderboard
	ActionQuit           // Q, Ctrl+C - exit game/session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionBoard:
		return "Board"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Direction returns the heading for a directional action.
// The second result is false for non-directional actions.
func (a Action) Direction() (Direction, bool) {
	switch a {
	case ActionUp:
		return DirUp, true
	case ActionDown:
		return DirDown, true
	case ActionLeft:
		return DirLeft, true
	case ActionRight:
		return DirRight, true
	}
	return Direction{}, false
}

// ParseAction converts a wire name ("up", "pause", ...) to an Action.
func ParseAction(s string) Action {
	switch s {
	case "up":
		return ActionUp
	case "down":
		return ActionDown
	case "left":
		return ActionLeft
	case "right":
		return ActionRight
	case "pause":
		return ActionPause
	case "restart":
		return ActionRestart
	}
	return ActionNone
}
