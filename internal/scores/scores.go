// Package scores persists finished games and answers leaderboard queries.
//
// Submission is fire-and-forget: a GameEnded event schedules a write on its
// own goroutine and the game loop never waits for it. Failures are logged
// and dropped.
package scores

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

// DefaultLimit is the leaderboard size used when callers pass zero.
const DefaultLimit = 10

// Store is the persistence the service needs. *storage.Store satisfies it.
type Store interface {
	SaveScore(ctx context.Context, username string, score int, runID string) (int64, error)
	UserScores(ctx context.Context, username string, limit int) ([]storage.ScoreEntry, error)
	TopScores(ctx context.Context, limit int) ([]storage.ScoreEntry, error)
	HighScore(ctx context.Context, username string) (int, error)
	Stats(ctx context.Context, username string) (*storage.UserStats, error)
}

// Service wraps a Store with asynchronous submission.
type Service struct {
	store   Store
	logger  *log.Logger
	timeout time.Duration

	mu     sync.Mutex // Orders wg.Add against Close
	closed bool
	wg     sync.WaitGroup
}

// NewService creates a score service. A nil logger discards output.
func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		store:   store,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Submit records a score in the background. It returns immediately.
// After Close the score is logged and dropped.
func (s *Service) Submit(username string, score int, runID string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("score dropped after shutdown", "user", username, "score", score, "run", runID)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, err := s.store.SaveScore(ctx, username, score, runID); err != nil {
			s.logger.Warn("score submit failed", "user", username, "score", score, "run", runID, "error", err)
			return
		}
		s.logger.Debug("score saved", "user", username, "score", score, "run", runID)
	}()
}

// Wait blocks until all pending submissions finish. It must not race with
// Submit; use Close when other goroutines may still submit.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close stops accepting submissions and waits for pending ones.
// It is safe to call more than once.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
}

// UserScores returns the user's most recent games, newest first.
func (s *Service) UserScores(ctx context.Context, username string, limit int) ([]storage.ScoreEntry, error) {
	return s.store.UserScores(ctx, username, limit)
}

// TopScores returns the global leaderboard, highest first.
func (s *Service) TopScores(ctx context.Context, limit int) ([]storage.ScoreEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.store.TopScores(ctx, limit)
}

// HighScore returns the user's best score, 0 if none.
func (s *Service) HighScore(ctx context.Context, username string) (int, error) {
	return s.store.HighScore(ctx, username)
}

// Stats returns aggregated numbers for one user.
func (s *Service) Stats(ctx context.Context, username string) (*storage.UserStats, error) {
	return s.store.Stats(ctx, username)
}

// Recorder ties one engine to one player. Every game the engine plays gets
// a fresh run ID when it starts and is submitted when it ends.
type Recorder struct {
	svc      *Service
	username string
	runID    string
	cancel   func()
}

// Attach subscribes a recorder to eng. Games played by an empty username
// are not recorded.
func (s *Service) Attach(eng *game.Engine, username string) *Recorder {
	r := &Recorder{svc: s, username: username, runID: uuid.NewString()}
	r.cancel = eng.Subscribe(r.handle)
	return r
}

func (r *Recorder) handle(ev game.Event) {
	switch ev := ev.(type) {
	case game.Started:
		r.runID = uuid.NewString()
	case game.GameEnded:
		if r.username == "" {
			r.svc.logger.Debug("guest game not recorded", "score", ev.Score)
			return
		}
		r.svc.Submit(r.username, ev.Score, r.runID)
	}
}

// RunID identifies the current (or last finished) game.
func (r *Recorder) RunID() string {
	return r.runID
}

// Detach stops recording.
func (r *Recorder) Detach() {
	r.cancel()
}
