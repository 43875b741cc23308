package scores

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// failingStore rejects every write.
type failingStore struct {
	storage.Store
	mu    sync.Mutex
	calls int
}

func (f *failingStore) SaveScore(context.Context, string, int, string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 0, errors.New("disk full")
}

// playToWall drives a fresh engine straight up into the top wall.
func playToWall(t *testing.T, eng *game.Engine) game.GameEnded {
	t.Helper()
	var ended game.GameEnded
	cancel := eng.Subscribe(func(ev game.Event) {
		if e, ok := ev.(game.GameEnded); ok {
			ended = e
		}
	})
	defer cancel()

	eng.Apply(core.ActionUp)
	for i := 0; i < 100 && eng.Status() != game.StatusOver; i++ {
		eng.Tick()
	}
	if eng.Status() != game.StatusOver {
		t.Fatal("game did not end")
	}
	return ended
}

func TestSubmitPersists(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewService(store, nil)

	svc.Submit("alice", 40, "run-1")
	svc.Submit("alice", 70, "run-2")
	svc.Wait()

	got, err := svc.UserScores(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("UserScores() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 scores, got %v", got)
	}

	high, _ := svc.HighScore(ctx, "alice")
	if high != 70 {
		t.Errorf("HighScore = %d, expected 70", high)
	}
}

func TestSubmitFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	store := &failingStore{}
	svc := NewService(store, logger)

	svc.Submit("alice", 10, "run")
	svc.Wait()

	if store.calls != 1 {
		t.Errorf("SaveScore called %d times, expected 1", store.calls)
	}
	if !strings.Contains(buf.String(), "score submit failed") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	svc := NewService(openTestStore(t), log.New(&buf))

	svc.Submit("alice", 10, "before")
	svc.Close()
	svc.Submit("alice", 99, "after")
	svc.Close() // idempotent

	got, err := svc.UserScores(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("UserScores() failed: %v", err)
	}
	if len(got) != 1 || got[0].RunID != "before" {
		t.Errorf("saved %v, expected only the run submitted before Close", got)
	}
	if !strings.Contains(buf.String(), "score dropped after shutdown") {
		t.Errorf("dropped score not logged: %q", buf.String())
	}
}

func TestCloseWhileSubmitting(t *testing.T) {
	svc := NewService(openTestStore(t), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Submit("alice", i, "")
		}()
	}
	svc.Close()
	wg.Wait()
	svc.Close()
}

func TestRecorderSubmitsOnGameEnded(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewService(store, nil)

	eng, err := game.New(game.DefaultConfig(), game.WithSeed(3))
	if err != nil {
		t.Fatalf("game.New() failed: %v", err)
	}
	rec := svc.Attach(eng, "alice")

	ended := playToWall(t, eng)
	// Ticks after game over must not submit again
	eng.Tick()
	eng.Tick()
	svc.Wait()

	got, _ := svc.UserScores(ctx, "alice", 10)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 submission, got %v", got)
	}
	if got[0].Score != ended.Score {
		t.Errorf("saved score %d, game ended with %d", got[0].Score, ended.Score)
	}
	if got[0].RunID != rec.RunID() || got[0].RunID == "" {
		t.Errorf("run id = %q, recorder has %q", got[0].RunID, rec.RunID())
	}
}

func TestRecorderNewRunIDPerGame(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewService(store, nil)

	eng, _ := game.New(game.DefaultConfig(), game.WithSeed(5))
	svc.Attach(eng, "alice")

	playToWall(t, eng)
	eng.Apply(core.ActionRestart)
	playToWall(t, eng)
	svc.Wait()

	got, _ := svc.UserScores(ctx, "alice", 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 games, got %v", got)
	}
	if got[0].RunID == got[1].RunID {
		t.Errorf("both games share run id %q", got[0].RunID)
	}
}

func TestRecorderSkipsGuestsAndDetach(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewService(store, nil)

	guest, _ := game.New(game.DefaultConfig(), game.WithSeed(1))
	svc.Attach(guest, "")
	playToWall(t, guest)

	detached, _ := game.New(game.DefaultConfig(), game.WithSeed(1))
	svc.Attach(detached, "bob").Detach()
	playToWall(t, detached)
	svc.Wait()

	top, err := svc.TopScores(ctx, 0)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("expected no scores, got %v", top)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := NewService(openTestStore(t), nil)

	svc.Submit("alice", 10, "a")
	svc.Submit("alice", 20, "b")
	svc.Wait()

	stats, err := svc.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 20 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
