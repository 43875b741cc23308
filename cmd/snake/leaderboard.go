package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/platform/tui"
	"github.com/vovakirdan/tui-snake/internal/scores"
)

var (
	flagBoardLimit       int
	flagBoardInteractive bool
	flagBoardUser        string
)

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"top"},
	Short:   "Show the top scores",
	Long: `Display the best scores of all players.

With --interactive the leaderboard opens in a full-screen view with a
"My scores" tab for --user.

Examples:
  snake leaderboard
  snake leaderboard --limit 25
  snake leaderboard --interactive --user alice`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().IntVarP(&flagBoardLimit, "limit", "n", scores.DefaultLimit, "Number of scores to show")
	leaderboardCmd.Flags().BoolVarP(&flagBoardInteractive, "interactive", "i", false, "Open the full-screen leaderboard")
	leaderboardCmd.Flags().StringVarP(&flagBoardUser, "user", "u", "", "Player for the 'My scores' tab")
}

func runLeaderboard(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer svc.Close()

	if flagBoardInteractive {
		width, height := terminalSize()
		return tui.RunLeaderboard(svc.scores, flagBoardUser, width, height)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := svc.scores.TopScores(ctx, flagBoardLimit)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Leaderboard"))
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snake play --user <name>' to set the first high score!")
		return nil
	}
	fmt.Println(scoreTable(entries, true))
	return nil
}
