package tui

import (
	"fmt"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/game"
)

// Board layout: a two-line HUD, then the framed grid. Each grid cell is two
// columns wide so the board looks square in a terminal.
const (
	hudHeight = 2
	cellWidth = 2
)

// HUD carries the player facts the engine does not know about.
type HUD struct {
	User      string
	HighScore int
	Message   string // Transient status, e.g. a saved screenshot path
}

// BoardSize returns the screen size needed to draw a grid of the given size.
func BoardSize(gridSize int) (w, h int) {
	return gridSize*cellWidth + 2, gridSize + 2 + hudHeight
}

// DrawBoard renders a snapshot onto dst.
func DrawBoard(dst *core.Screen, snap game.Snapshot, hud HUD) {
	dst.Clear()
	drawHUD(dst, snap, hud)

	w, h := BoardSize(snap.GridSize)
	if dst.Width() < w || dst.Height() < h {
		mid := max(dst.Height()/2, hudHeight)
		dst.DrawTextCentered(mid, "Window too small")
		dst.DrawTextCentered(mid+1, fmt.Sprintf("Need %dx%d", w, h))
		return
	}

	frame := core.NewRect((dst.Width()-w)/2, hudHeight, w, h-hudHeight)
	dst.DrawBox(frame, core.ColorGray)
	inner := core.NewRect(frame.X+1, frame.Y+1, frame.W-2, frame.H-2)

	// Cells outside the grid are clipped so they never overwrite the frame.
	put := func(p core.Point, r rune, c core.Color) {
		x := frame.X + 1 + p.X*cellWidth
		y := frame.Y + 1 + p.Y
		if !inner.Contains(x, y) {
			return
		}
		for i := range cellWidth {
			dst.SetColored(x+i, y, r, c)
		}
	}

	if snap.HasFood {
		put(snap.Food, '●', core.ColorRed)
		// A single dot reads better than a double one.
		dst.SetColored(frame.X+2+snap.Food.X*cellWidth, frame.Y+1+snap.Food.Y, ' ', core.ColorDefault)
	}
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			put(snap.Snake[i], '█', core.ColorBrightGreen)
		} else {
			put(snap.Snake[i], '▓', core.ColorGreen)
		}
	}

	switch {
	case snap.Status == game.StatusReady:
		drawOverlay(dst, "SNAKE", "Press an arrow key to start")
	case snap.GameOver():
		drawOverlay(dst, endTitle(snap.Reason), fmt.Sprintf("Score %d - R restart, Tab scores", snap.Score))
	case snap.Paused:
		drawOverlay(dst, "Paused", "Press P to continue")
	}
}

func endTitle(r game.EndReason) string {
	switch r {
	case game.ReasonBoardFull:
		return "Board full - you win!"
	case game.ReasonSelf:
		return "Game Over - bitten"
	default:
		return "Game Over"
	}
}

// drawHUD draws the top status bar.
func drawHUD(dst *core.Screen, snap game.Snapshot, hud HUD) {
	user := hud.User
	if user == "" {
		user = "guest"
	}
	best := max(hud.HighScore, snap.Score)

	dst.DrawTextColored(1, 0, "Snake", core.ColorBrightWhite)
	dst.DrawTextColored(7, 0, fmt.Sprintf("Score: %d  Best: %d  Length: %d  Speed: %dms  %s",
		snap.Score, best, len(snap.Snake), snap.Speed.Milliseconds(), user), core.ColorYellow)
	if hud.Message != "" {
		dst.DrawTextColored(dst.Width()-len([]rune(hud.Message))-1, 0, hud.Message, core.ColorCyan)
	}

	for x := range dst.Width() {
		dst.SetColored(x, 1, '─', core.ColorGray)
	}
}

// drawOverlay draws a centered two-line message box.
func drawOverlay(dst *core.Screen, line1, line2 string) {
	boxW := max(len([]rune(line1)), len([]rune(line2))) + 4
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box, core.ColorCyan)
	drawCentered(dst, box, box.Y+1, line1, core.ColorBrightWhite)
	drawCentered(dst, box, box.Y+3, line2, core.ColorCyan)
}

func drawCentered(dst *core.Screen, box core.Rect, y int, text string, c core.Color) {
	x := box.X + (box.W-len([]rune(text)))/2
	dst.DrawTextColored(x, y, text, c)
}
