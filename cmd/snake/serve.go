package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-snake/internal/config"
	"github.com/vovakirdan/tui-snake/internal/platform/tui"
	"github.com/vovakirdan/tui-snake/internal/platform/web"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagWebAddr     string
	flagNoSSH       bool
	flagNoWeb       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and web servers",
	Long: `Serve the game over SSH and in the browser. Both front ends share the
account store and the leaderboard.

SSH users sign in with their account password; each connection plays
its own game. The web server serves a small browser client at / and the
game websocket at /ws.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.snake/host_key

Examples:
  snake serve                          # SSH on :23234, web on :8080
  snake serve --ssh :2222 --no-web     # SSH only
  snake serve --web :9000 --no-ssh     # Web only
  snake serve --db ./snake.db

Users can connect with:
  ssh alice@localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (overrides config)")
	serveCmd.Flags().StringVar(&flagWebAddr, "web", "", "Web server address (overrides config)")
	serveCmd.Flags().BoolVar(&flagNoSSH, "no-ssh", false, "Do not start the SSH server")
	serveCmd.Flags().BoolVar(&flagNoWeb, "no-web", false, "Do not start the web server")
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagNoSSH && flagNoWeb {
		return errors.New("nothing to serve: both --no-ssh and --no-web are set")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.SSH.IdleTimeoutMinutes = flagIdleTimeout
	}
	if flagWebAddr != "" {
		cfg.Web.Address = flagWebAddr
	}

	logger := newLogger(cfg, os.Stderr)

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if !flagNoSSH {
		hostKey, err := expandOptional(cfg.SSH.HostKeyPath)
		if err != nil {
			return err
		}
		sshSrv, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     cfg.SSH.Address,
			HostKeyPath: hostKey,
			IdleTimeout: cfg.SSH.IdleTimeout(),
			Rules:       cfg.GameRules(),
			FrameRate:   cfg.Clock.FrameRate,
		}, svc.accounts, svc.scores, logger.WithPrefix("snake-ssh"))
		if err != nil {
			return fmt.Errorf("creating SSH server: %w", err)
		}
		g.Go(func() error { return sshSrv.ListenAndServe(ctx) })
		logger.Info("SSH enabled", "connect", fmt.Sprintf("ssh <user>@localhost -p %s", port(cfg.SSH.Address)))
	}

	if !flagNoWeb {
		webSrv := web.NewServer(web.Config{
			Address:   cfg.Web.Address,
			Rules:     cfg.GameRules(),
			FrameRate: cfg.Clock.FrameRate,
		}, svc.accounts, svc.scores, logger.WithPrefix("snake-web"))
		g.Go(func() error { return webSrv.ListenAndServe(ctx) })
	}

	logger.Info("press Ctrl+C to stop")
	err = g.Wait()

	start := time.Now()
	svc.scores.Close()
	logger.Info("stopped", "flush", time.Since(start).Round(time.Millisecond))
	return err
}

// expandOptional expands ~ in a path that may be empty.
func expandOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return config.ExpandHome(path)
}

// port returns the port part of a listen address.
func port(addr string) string {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return p
}
