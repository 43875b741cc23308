// Package tui provides the Bubble Tea integration for the snake game.
// It handles the terminal UI loop, input mapping, and SSH serving.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is one display frame. Gen ties the frame to the loop that
// scheduled it; frames from a stopped loop are dropped.
type FrameMsg struct {
	Gen  int
	Time time.Time
}

// frameCmd returns a Bubble Tea command that sends the next frame at the specified rate.
func frameCmd(gen, frameRate int) tea.Cmd {
	if frameRate <= 0 {
		frameRate = 60
	}
	interval := time.Second / time.Duration(frameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Gen: gen, Time: t}
	})
}
