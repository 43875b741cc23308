package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Create an account",
	Long: `Create an account for the leaderboard. The same account signs in
locally (snake play --user), over SSH and in the browser.

Names are 3-20 letters, digits, '_' or '-'. Passwords are 4-72 bytes.

Examples:
  snake register alice
  echo s3cret | snake register bob`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func runRegister(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	secret, err := readNewSecret()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.accounts.Register(ctx, args[0], secret); err != nil {
		return err
	}

	fmt.Printf("Account %s created.\n", args[0])
	fmt.Printf("Play with 'snake play --user %s'.\n", args[0])
	return nil
}
