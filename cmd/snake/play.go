package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/platform/tui"
)

var flagPlayUser string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a game in this terminal.

Without --user you play as a guest and scores are not saved.
With --user you are asked for your password and every finished game
is added to the leaderboard.

Controls:
  Arrows/WASD/HJKL  - Steer (the first one starts the game)
  P/Space           - Pause
  R                 - Restart (after game over)
  Tab               - Leaderboard
  Ctrl+S            - Save a screenshot
  Q/Ctrl+C          - Quit

Difficulty options:
  easy   - Slow start, gentle speed-up
  normal - Default pace
  hard   - Fast start, steep speed-up
  fixed  - Speed never changes

Examples:
  snake play
  snake play --user alice
  snake play --difficulty hard --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&flagPlayUser, "user", "u", "", "Account to play as (guest if empty)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog := fileLogger(cfg)
	defer closeLog()

	width, height := terminalSize()
	opts := tui.Options{
		Rules: cfg.GameRules(),
		Runtime: core.RuntimeConfig{
			ScreenW:   width,
			ScreenH:   height,
			FrameRate: cfg.Clock.FrameRate,
			Seed:      flagSeed,
		},
	}

	svc, err := openServices(cfg, logger)
	if err != nil {
		if flagPlayUser != "" {
			return err
		}
		// Guests can play without the database
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("playing without database", "error", err)
	} else {
		defer svc.Close()
		opts.Scores = svc.scores
	}

	if flagPlayUser != "" {
		secret, err := readSecret(fmt.Sprintf("Password for %s: ", flagPlayUser))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		tok, err := svc.accounts.Authenticate(ctx, flagPlayUser, secret)
		cancel()
		if err != nil {
			return err
		}
		opts.User = string(tok)
	}

	logger.Info("game started", "user", opts.User, "grid", cfg.Game.GridSize)
	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
