package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-snake/internal/storage"
)

// Leaderboard layout constants
const (
	topLimit     = 10 // Rows on the global tab
	historyLimit = 50 // Rows on the personal tab
	loadTimeout  = 5 * time.Second
)

// ScoreSource is what the leaderboard reads from. *scores.Service satisfies it.
type ScoreSource interface {
	TopScores(ctx context.Context, limit int) ([]storage.ScoreEntry, error)
	UserScores(ctx context.Context, username string, limit int) ([]storage.ScoreEntry, error)
}

type boardTab int

const (
	tabTop boardTab = iota
	tabMine
)

func (t boardTab) String() string {
	if t == tabMine {
		return "My scores"
	}
	return "Top 10"
}

// LeaderboardKeyMap defines the key bindings for the leaderboard.
type LeaderboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k LeaderboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Refresh, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k LeaderboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Refresh, k.Back, k.Quit},
	}
}

// DefaultLeaderboardKeyMap returns default key bindings.
func DefaultLeaderboardKeyMap() LeaderboardKeyMap {
	return LeaderboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev tab"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "tab"),
			key.WithHelp("esc/tab", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scoresLoadedMsg carries the result of a background query.
type scoresLoadedMsg struct {
	tab     boardTab
	entries []storage.ScoreEntry
	err     error
}

// LeaderboardModel is the Bubble Tea model for the leaderboard screen.
type LeaderboardModel struct {
	source   ScoreSource
	user     string
	tabs     []boardTab
	tab      int
	scores   []storage.ScoreEntry
	err      error
	loading  bool
	table    table.Model
	help     help.Model
	keys     LeaderboardKeyMap
	width    int
	height   int
	quitting bool
	done     bool // True if user pressed back (not quit)
}

// NewLeaderboardModel creates a leaderboard. The personal tab is only shown
// for a signed-in user.
func NewLeaderboardModel(source ScoreSource, user string, width, height int) LeaderboardModel {
	tabs := []boardTab{tabTop}
	if user != "" {
		tabs = append(tabs, tabMine)
	}

	h := help.New()
	h.ShowAll = false

	m := LeaderboardModel{
		source:  source,
		user:    user,
		tabs:    tabs,
		keys:    DefaultLeaderboardKeyMap(),
		help:    h,
		width:   width,
		height:  height,
		loading: true,
	}
	m.table = m.createTable()
	return m
}

// createTable creates a new table with columns for the current tab.
func (m *LeaderboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: 20},
		{Title: "Score", Width: 8},
		{Title: "Date", Width: 14},
	}
	if m.current() == tabMine {
		columns[0].Title = "#"
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 5)), // Leave room for header, tabs, help
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m LeaderboardModel) current() boardTab {
	if len(m.tabs) == 0 {
		return tabTop
	}
	return m.tabs[m.tab]
}

// load queries the active tab in the background.
func (m LeaderboardModel) load() tea.Cmd {
	tab, source, user := m.current(), m.source, m.user
	return func() tea.Msg {
		if source == nil {
			return scoresLoadedMsg{tab: tab}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var entries []storage.ScoreEntry
		var err error
		if tab == tabMine {
			entries, err = source.UserScores(ctx, user, historyLimit)
		} else {
			entries, err = source.TopScores(ctx, topLimit)
		}
		return scoresLoadedMsg{tab: tab, entries: entries, err: err}
	}
}

// updateTableRows updates the table with current scores.
func (m *LeaderboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.Username,
			fmt.Sprintf("%d", s.Score),
			s.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// Init starts loading the first tab.
func (m LeaderboardModel) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the leaderboard.
func (m LeaderboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case scoresLoadedMsg:
		// Ignore results for a tab the user already left
		if msg.tab != m.current() {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.scores = msg.entries
		m.updateTableRows()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.done = true
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			return m.switchTab(1)

		case key.Matches(msg, m.keys.PrevTab):
			return m.switchTab(-1)

		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load()

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

func (m LeaderboardModel) switchTab(delta int) (tea.Model, tea.Cmd) {
	if len(m.tabs) < 2 {
		return m, nil
	}
	m.tab = (m.tab + delta + len(m.tabs)) % len(m.tabs)
	m.scores = nil
	m.err = nil
	m.loading = true
	m.table = m.createTable()
	return m, m.load()
}

// View renders the leaderboard.
func (m LeaderboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	b.WriteString(centerText(titleStyle.Render("HIGH SCORES"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m LeaderboardModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Padding(0, 1)

	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(t.String())
		} else {
			tabs[i] = tabStyle.Render(t.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderTableContent renders the table or a status message.
func (m LeaderboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loading:
		return emptyStyle.Render("Loading...")
	case m.err != nil:
		return emptyStyle.Foreground(lipgloss.Color("9")).Render("Could not load scores:\n" + m.err.Error())
	case len(m.scores) == 0:
		return emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
	}

	return m.table.View()
}

// Done returns true if the user wants to leave the leaderboard.
func (m LeaderboardModel) Done() bool {
	return m.done
}

// IsQuitting returns true if user wants to quit entirely.
func (m LeaderboardModel) IsQuitting() bool {
	return m.quitting
}

// Rows returns the scores on the active tab.
func (m LeaderboardModel) Rows() []storage.ScoreEntry {
	return m.scores
}

// standaloneBoard quits the program on Back instead of returning to a game.
type standaloneBoard struct {
	LeaderboardModel
}

func (s standaloneBoard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := s.LeaderboardModel.Update(msg)
	s.LeaderboardModel = next.(LeaderboardModel)
	if s.Done() {
		return s, tea.Quit
	}
	return s, cmd
}

// RunLeaderboard runs the leaderboard as its own program.
func RunLeaderboard(source ScoreSource, user string, width, height int) error {
	p := tea.NewProgram(
		standaloneBoard{NewLeaderboardModel(source, user, width, height)},
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
