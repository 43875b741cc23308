package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-snake/internal/clock"
	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/scores"
)

// Options configures a game session.
type Options struct {
	Rules     game.Config
	Runtime   core.RuntimeConfig
	User      string // Empty plays as guest; guest scores are not saved
	Scores    *scores.Service
	ShotsDir  string // Screenshot directory; empty means ~/.snake/screenshots
	HighScore int    // Best score known at session start
}

// Model is the Bubble Tea model for a snake session: the board, and the
// leaderboard screen on top of it.
type Model struct {
	engine   *game.Engine
	clock    *clock.Clock
	recorder *scores.Recorder
	opts     Options
	screen   *core.Screen
	keys     KeyMap
	help     help.Model

	gen       int // Frame loop generation; bumping it stops the running loop
	highScore int
	message   string
	messageAt time.Time

	board     *LeaderboardModel
	showBoard bool
	quitting  bool
}

// NewModel creates a session model.
func NewModel(opts Options) (Model, error) {
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = time.Now().UnixNano()
	}
	if opts.Runtime.FrameRate <= 0 {
		opts.Runtime.FrameRate = 60
	}

	eng, err := game.New(opts.Rules, game.WithSeed(opts.Runtime.Seed))
	if err != nil {
		return Model{}, err
	}

	m := Model{
		engine:    eng,
		clock:     clock.New(eng.Speed, eng.Tick),
		opts:      opts,
		screen:    core.NewScreen(opts.Runtime.ScreenW, max(opts.Runtime.ScreenH-1, 1)),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		highScore: opts.HighScore,
	}
	if opts.Scores != nil {
		m.recorder = opts.Scores.Attach(eng, opts.User)
	}
	return m, nil
}

// Init starts the frame loop and, for signed-in players, fetches the best score.
func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.gen, m.opts.Runtime.FrameRate), m.loadHighScore())
}

type highScoreMsg int

func (m Model) loadHighScore() tea.Cmd {
	svc, user := m.opts.Scores, m.opts.User
	if svc == nil || user == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		high, err := svc.HighScore(ctx, user)
		if err != nil {
			return nil
		}
		return highScoreMsg(high)
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Runtime.ScreenW = wsm.Width
		m.opts.Runtime.ScreenH = wsm.Height
		m.screen.Resize(wsm.Width, max(wsm.Height-1, 1))
		m.help.Width = wsm.Width
	}

	if m.showBoard {
		return m.updateBoard(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case FrameMsg:
		return m.handleFrame(msg)

	case highScoreMsg:
		m.highScore = max(m.highScore, int(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	switch action := m.keys.Action(msg); action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionBoard:
		return m.openBoard()

	case core.ActionRestart:
		if m.engine.Apply(action) {
			m.clock.Reset()
		}

	case core.ActionNone:

	default:
		m.engine.Apply(action)
	}

	return m, nil
}

// handleFrame feeds the clock, which ticks the engine when the game's speed allows.
func (m Model) handleFrame(msg FrameMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}

	wasOver := m.engine.Status() == game.StatusOver
	m.clock.Frame(msg.Time)
	if !wasOver && m.engine.Status() == game.StatusOver {
		m.highScore = max(m.highScore, m.engine.Snapshot().Score)
	}

	if m.message != "" && msg.Time.Sub(m.messageAt) > 3*time.Second {
		m.message = ""
	}

	return m, frameCmd(m.gen, m.opts.Runtime.FrameRate)
}

// openBoard pauses a running game and shows the leaderboard.
// The frame loop is stopped until the board closes.
func (m Model) openBoard() (tea.Model, tea.Cmd) {
	if m.engine.Status() == game.StatusRunning && !m.engine.Snapshot().Paused {
		m.engine.TogglePause()
	}
	m.gen++

	var source ScoreSource
	if m.opts.Scores != nil {
		source = m.opts.Scores
	}
	board := NewLeaderboardModel(source, m.opts.User, m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
	m.board = &board
	m.showBoard = true
	return m, board.Init()
}

// updateBoard routes messages to the leaderboard while it is shown.
func (m Model) updateBoard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.board.Update(msg)
	board := next.(LeaderboardModel)
	m.board = &board

	if board.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if board.Done() {
		m.showBoard = false
		m.board = nil
		m.gen++
		return m, frameCmd(m.gen, m.opts.Runtime.FrameRate)
	}
	return m, cmd
}

// saveScreenshot saves the current board to a text file.
func (m *Model) saveScreenshot() {
	DrawBoard(m.screen, m.engine.Snapshot(), m.hud())

	dir := m.opts.ShotsDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			m.flash("screenshot failed")
			return
		}
		dir = filepath.Join(home, ".snake", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.flash("screenshot failed")
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("snake_%s.txt", timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.flash("screenshot failed")
		return
	}
	m.flash("saved " + filepath.Base(path))
}

func (m *Model) flash(text string) {
	m.message = text
	m.messageAt = time.Now()
}

func (m Model) hud() HUD {
	return HUD{User: m.opts.User, HighScore: m.highScore, Message: m.message}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showBoard && m.board != nil {
		return m.board.View()
	}

	DrawBoard(m.screen, m.engine.Snapshot(), m.hud())
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(centerText(m.help.View(m.keys), m.screen.Width()))
}

// Snapshot exposes the engine state, mainly for tests.
func (m Model) Snapshot() game.Snapshot {
	return m.engine.Snapshot()
}

// Run starts the Bubble Tea program with a new session model.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err = p.Run()
	if model.recorder != nil {
		model.recorder.Detach()
	}
	return err
}
