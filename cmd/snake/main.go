// snake is a terminal snake game with accounts and a shared leaderboard.
//
// Usage:
//
//	snake play [--user name]    - Play in this terminal
//	snake register <name>       - Create an account
//	snake scores <name>         - Show a player's score history
//	snake scores stats <name>   - Show a player's totals
//	snake leaderboard           - Show the top scores
//	snake serve                 - Serve the game over SSH and the web
//
// Global flags:
//
//	--config <path>      - Config file (default: search ~/.snake, ./configs)
//	--db <path>          - Database path (default: from config, ~/.snake/snake.db)
//	--seed <value>       - RNG seed for reproducible food placement
//	--log-level <level>  - debug, info, warn or error
//	--difficulty <name>  - easy, normal, hard or fixed
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/account"
	"github.com/vovakirdan/tui-snake/internal/config"
	"github.com/vovakirdan/tui-snake/internal/scores"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

var (
	// Global flags
	flagConfig     string
	flagDBPath     string
	flagSeed       int64
	flagLogLevel   string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake - the classic game in your terminal",
	Long: `Snake is the classic grid game for the terminal, playable locally,
over SSH or in a browser. Signed-in players' scores go to a shared leaderboard.

Available commands:
  play         - Play in this terminal
  register     - Create an account
  scores       - Show a player's scores
  leaderboard  - Show the top scores
  serve        - Start the SSH and web servers

Examples:
  snake play
  snake play --user alice --difficulty hard
  snake register alice
  snake leaderboard --interactive
  snake serve --ssh :2222 --web :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the database (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	preset, err := config.ParseDifficulty(flagDifficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)

	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the process logger writing to w.
func newLogger(cfg config.Config, w io.Writer) *log.Logger {
	level, _ := cfg.LogLevel() // Already validated
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake",
		Level:           level,
	})
}

// fileLogger logs to the configured file, for commands that own the terminal.
// The returned close func is never nil.
func fileLogger(cfg config.Config) (*log.Logger, func()) {
	path, err := config.ExpandHome(cfg.Log.File)
	if err != nil || path == "" {
		return newLogger(cfg, io.Discard), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return newLogger(cfg, io.Discard), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return newLogger(cfg, io.Discard), func() {}
	}
	return newLogger(cfg, f), func() { f.Close() }
}

// services bundles the store and the services built on it.
type services struct {
	store    *storage.Store
	accounts *account.Service
	scores   *scores.Service
}

func openServices(cfg config.Config, logger *log.Logger) (*services, error) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &services{
		store:    store,
		accounts: account.NewService(store),
		scores:   scores.NewService(store, logger),
	}, nil
}

// Close waits for pending score writes, then closes the store.
func (s *services) Close() {
	s.scores.Close()
	s.store.Close()
}
