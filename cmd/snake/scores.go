package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/account"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <name>",
	Short: "Show a player's score history",
	Long: `Display a player's most recent games, newest first.

Examples:
  snake scores alice
  snake scores alice --limit 50
  snake scores stats alice`,
	Args: cobra.ExactArgs(1),
	RunE: runScores,
}

var statsCmd = &cobra.Command{
	Use:   "stats <name>",
	Short: "Show a player's totals",
	Long: `Display games played, best, average and total score for a player.

Examples:
  snake scores stats alice`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 20, "Number of games to show")
	scoresCmd.AddCommand(statsCmd)
}

func runScores(_ *cobra.Command, args []string) error {
	user := args[0]
	if err := account.ValidateUsername(user); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := svc.scores.UserScores(ctx, user, flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Scores - " + user))
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		return nil
	}
	fmt.Println(scoreTable(entries, false))

	high, err := svc.scores.HighScore(ctx, user)
	if err == nil {
		fmt.Println()
		fmt.Printf("Best: %d\n", high)
	}
	return nil
}

func runStats(_ *cobra.Command, args []string) error {
	user := args[0]
	if err := account.ValidateUsername(user); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openServices(cfg, newLogger(cfg, os.Stderr))
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := svc.scores.Stats(ctx, user)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Stats - " + user))
	fmt.Println()
	fmt.Println(statsTable(stats))
	return nil
}
