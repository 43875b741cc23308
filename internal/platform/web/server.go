// Package web serves the game to browsers: a websocket endpoint that runs
// one game per connection, JSON score endpoints and a small static client.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-snake/internal/account"
	"github.com/vovakirdan/tui-snake/internal/clock"
	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/scores"
)

//go:embed static
var staticFiles embed.FS

// Config holds configuration for the web server.
type Config struct {
	Address   string
	Rules     game.Config
	FrameRate int

	// NewSource builds the frame source of each session. Defaults to a
	// clock.Ticker at FrameRate.
	NewSource func() clock.Source
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:   ":8080",
		Rules:     game.DefaultConfig(),
		FrameRate: 60,
	}
}

// Accounts is the account surface the server needs. *account.Service satisfies it.
type Accounts interface {
	Register(ctx context.Context, username, secret string) error
	Authenticate(ctx context.Context, username, secret string) (account.Token, error)
}

// Server is the HTTP and websocket front end.
type Server struct {
	cfg      Config
	accounts Accounts
	scores   *scores.Service
	logger   *log.Logger
	upgrader websocket.Upgrader

	ctx      context.Context
	cancel   context.CancelFunc
	sessions sync.WaitGroup
}

// NewServer creates a web server.
func NewServer(cfg Config, accounts Accounts, svc *scores.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "snake-web",
		})
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:      cfg,
		accounts: accounts,
		scores:   svc,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The client is served from this origin; browsers elsewhere are allowed too.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/scores/{user}", s.handleUserScores)

	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServerFS(static))
	return mux
}

func (s *Server) newSource() clock.Source {
	if s.cfg.NewSource != nil {
		return s.cfg.NewSource()
	}
	return clock.NewTicker(s.cfg.FrameRate)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	newSession(s, conn).serve(s.ctx)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", scores.DefaultLimit)
	if limit > 100 {
		limit = 100
	}

	entries, err := s.scores.TopScores(r.Context(), limit)
	if err != nil {
		s.logger.Error("leaderboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cannot load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, newScoresResponse(entries))
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	if err := account.ValidateUsername(user); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := parseIntQuery(r, "limit", 20)

	entries, err := s.scores.UserScores(r.Context(), user, min(limit, 100))
	if err != nil {
		s.logger.Error("score history query failed", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "cannot load scores")
		return
	}
	writeJSON(w, http.StatusOK, newScoresResponse(entries))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting web server", "address", s.cfg.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.cancel()
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close ends every running game session and waits for them to finish.
func (s *Server) Close() {
	s.cancel()
	s.sessions.Wait()
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.cfg.Address
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorMessage{Type: MsgError, Error: msg})
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
