package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/game"
)

func newTestEngine(t *testing.T) *game.Engine {
	t.Helper()
	eng, err := game.New(game.DefaultConfig(), game.WithSeed(42))
	if err != nil {
		t.Fatalf("game.New() failed: %v", err)
	}
	return eng
}

func TestBoardSize(t *testing.T) {
	w, h := BoardSize(20)
	if w != 42 || h != 24 {
		t.Errorf("BoardSize(20) = %dx%d, expected 42x24", w, h)
	}
}

func TestDrawBoardPlacesSnakeAndFood(t *testing.T) {
	eng := newTestEngine(t)
	eng.Apply(core.ActionUp)
	snap := eng.Snapshot()

	screen := core.NewScreen(80, 30)
	DrawBoard(screen, snap, HUD{User: "alice"})

	frameX := (80 - 42) / 2
	cellAt := func(p core.Point) core.Cell {
		return screen.GetCell(frameX+1+p.X*cellWidth, hudHeight+1+p.Y)
	}

	head := cellAt(snap.Snake[0])
	if head.Rune != '█' || head.Color != core.ColorBrightGreen {
		t.Errorf("head cell = %q/%v", head.Rune, head.Color)
	}
	for _, seg := range snap.Snake[1:] {
		if c := cellAt(seg); c.Rune != '▓' {
			t.Errorf("body cell at %v = %q", seg, c.Rune)
		}
	}
	if food := cellAt(snap.Food); food.Rune != '●' || food.Color != core.ColorRed {
		t.Errorf("food cell = %q/%v", food.Rune, food.Color)
	}

	hud := screen.Row(0)
	if !strings.Contains(hud, "Score: 0") || !strings.Contains(hud, "alice") {
		t.Errorf("HUD missing fields: %q", hud)
	}
	if screen.Get(frameX, hudHeight) != '┌' {
		t.Errorf("frame corner missing, got %q", screen.Get(frameX, hudHeight))
	}
}

func TestDrawBoardOverlays(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*game.Engine)
		expect string
	}{
		{"ready", func(*game.Engine) {}, "SNAKE"},
		{"paused", func(e *game.Engine) {
			e.Apply(core.ActionUp)
			e.Apply(core.ActionPause)
		}, "Paused"},
		{"game over", func(e *game.Engine) {
			e.Apply(core.ActionUp)
			for e.Status() != game.StatusOver {
				e.Tick()
			}
		}, "Game Over"},
		{"running", func(e *game.Engine) { e.Apply(core.ActionUp) }, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eng := newTestEngine(t)
			tc.setup(eng)

			screen := core.NewScreen(80, 30)
			DrawBoard(screen, eng.Snapshot(), HUD{})
			out := screen.String()

			if tc.expect == "" {
				for _, s := range []string{"SNAKE", "Paused", "Game Over"} {
					if strings.Contains(out, s) {
						t.Errorf("unexpected overlay %q", s)
					}
				}
				return
			}
			if !strings.Contains(out, tc.expect) {
				t.Errorf("overlay %q not drawn", tc.expect)
			}
		})
	}
}

func TestDrawBoardTooSmall(t *testing.T) {
	screen := core.NewScreen(30, 10)
	DrawBoard(screen, newTestEngine(t).Snapshot(), HUD{})

	out := screen.String()
	if !strings.Contains(out, "Window too small") || !strings.Contains(out, "Need 42x24") {
		t.Errorf("expected too-small message, got:\n%s", out)
	}
}

func TestDrawBoardClipsCellsOutsideGrid(t *testing.T) {
	snap := game.Snapshot{
		GridSize: 5,
		Snake:    []core.Point{{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 5}},
		Status:   game.StatusRunning,
	}
	screen := core.NewScreen(40, 12)
	DrawBoard(screen, snap, HUD{})

	w, _ := BoardSize(5)
	frameX := (40 - w) / 2
	if got := screen.Get(frameX, hudHeight+1); got != '│' {
		t.Errorf("left border overwritten by off-grid head: %q", got)
	}
	if got := screen.Get(frameX+1, hudHeight+1+5); got != '─' {
		t.Errorf("bottom border overwritten by off-grid segment: %q", got)
	}
	if got := screen.Get(frameX+1, hudHeight+1); got != '▓' {
		t.Errorf("in-grid segment not drawn: %q", got)
	}
}

func TestHUDGuestAndBest(t *testing.T) {
	screen := core.NewScreen(80, 30)
	DrawBoard(screen, newTestEngine(t).Snapshot(), HUD{HighScore: 120})

	hud := screen.Row(0)
	if !strings.Contains(hud, "guest") || !strings.Contains(hud, "Best: 120") {
		t.Errorf("unexpected HUD: %q", hud)
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	screen := core.NewScreen(10, 2)
	screen.DrawTextColored(0, 0, "ab", core.ColorRed)
	screen.DrawText(2, 0, "cd")

	out := RenderScreen(screen)
	if lines := strings.Split(out, "\n"); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(out, "ab") || !strings.Contains(out, "cd") {
		t.Errorf("text lost in %q", out)
	}
}
