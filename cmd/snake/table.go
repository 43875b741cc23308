package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vovakirdan/tui-snake/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const dateFormat = "2006-01-02 15:04"

// scoreTable renders entries with a rank column. withUser adds the player column.
func scoreTable(entries []storage.ScoreEntry, withUser bool) string {
	headers := []string{"#", "Score", "Date"}
	if withUser {
		headers = []string{"#", "Player", "Score", "Date"}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, e := range entries {
		cells := []string{strconv.Itoa(i + 1), strconv.Itoa(e.Score), e.CreatedAt.Local().Format(dateFormat)}
		if withUser {
			cells = []string{strconv.Itoa(i + 1), e.Username, strconv.Itoa(e.Score), e.CreatedAt.Local().Format(dateFormat)}
		}
		t.Row(cells...)
	}
	return t.String()
}

// statsTable renders a two-column summary of a player's games.
func statsTable(s *storage.UserStats) string {
	last := "never"
	if !s.LastPlayed.IsZero() {
		last = s.LastPlayed.Local().Format(dateFormat)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Row("Games", strconv.Itoa(s.GamesCount)).
		Row("Best", strconv.Itoa(s.HighScore)).
		Row("Average", fmt.Sprintf("%.1f", s.AvgScore)).
		Row("Total", strconv.FormatInt(s.TotalScore, 10)).
		Row("Last played", last).
		String()
}
