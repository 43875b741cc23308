package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/tui-snake/internal/account"
	"github.com/vovakirdan/tui-snake/internal/clock"
	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/scores"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

type testEnv struct {
	srv      *Server
	ts       *httptest.Server
	accounts *account.Service
	scores   *scores.Service
	sources  chan *clock.Manual
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}

	env := &testEnv{
		accounts: account.NewService(store, account.WithCost(bcrypt.MinCost)),
		scores:   scores.NewService(store, nil),
		sources:  make(chan *clock.Manual, 4),
	}
	cfg := DefaultConfig()
	cfg.NewSource = func() clock.Source {
		m := clock.NewManual()
		env.sources <- m
		return m
	}
	env.srv = NewServer(cfg, env.accounts, env.scores, nil)
	env.ts = httptest.NewServer(env.srv.Handler())

	t.Cleanup(func() {
		env.ts.Close()
		env.srv.Close()
		env.scores.Close()
		store.Close()
	})

	if err := env.accounts.Register(context.Background(), "alice", "hunter2"); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return env
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// source waits for the frame source of the session that just logged in.
func (e *testEnv) source(t *testing.T) *clock.Manual {
	t.Helper()
	select {
	case m := <-e.sources:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("session did not start a frame loop")
		return nil
	}
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
}

// read decodes the next message and checks its type.
func read[T any](t *testing.T, conn *websocket.Conn, wantType string) T {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() failed: %v", err)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		t.Fatalf("bad message %s: %v", data, err)
	}
	if head.Type != wantType {
		t.Fatalf("got %s, expected type %q", data, wantType)
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("cannot decode %s: %v", data, err)
	}
	return out
}

func login(t *testing.T, conn *websocket.Conn, user, secret string) Welcome {
	t.Helper()
	send(t, conn, ClientMessage{Type: MsgLogin, User: user, Secret: secret})
	w := read[Welcome](t, conn, MsgWelcome)
	read[Snapshot](t, conn, MsgSnapshot)
	return w
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	send(t, conn, ClientMessage{Type: MsgLogin, User: "alice", Secret: "wrong"})
	if e := read[ErrorMessage](t, conn, MsgError); e.Error != "invalid username or password" {
		t.Errorf("error = %q", e.Error)
	}

	send(t, conn, ClientMessage{Type: MsgLogin, User: "nobody", Secret: "hunter2"})
	if e := read[ErrorMessage](t, conn, MsgError); e.Error != "invalid username or password" {
		t.Errorf("unknown user should look like a wrong password, got %q", e.Error)
	}

	send(t, conn, ClientMessage{Type: MsgInput, Action: "up"})
	if e := read[ErrorMessage](t, conn, MsgError); !strings.Contains(e.Error, "expected login") {
		t.Errorf("input before login: %q", e.Error)
	}

	// The connection is still usable
	w := login(t, conn, "alice", "hunter2")
	if w.User != "alice" || w.Session == "" {
		t.Errorf("unexpected welcome: %+v", w)
	}
}

func TestRegisterOverSocket(t *testing.T) {
	env := newTestEnv(t)

	conn := env.dial(t)
	send(t, conn, ClientMessage{Type: MsgRegister, User: "alice", Secret: "other"})
	if e := read[ErrorMessage](t, conn, MsgError); !strings.Contains(e.Error, "taken") {
		t.Errorf("duplicate register: %q", e.Error)
	}

	send(t, conn, ClientMessage{Type: MsgRegister, User: "bob", Secret: "s3cret"})
	w := read[Welcome](t, conn, MsgWelcome)
	if w.User != "bob" || w.HighScore != 0 {
		t.Errorf("unexpected welcome: %+v", w)
	}

	if _, err := env.accounts.Authenticate(context.Background(), "bob", "s3cret"); err != nil {
		t.Errorf("registered account cannot log in: %v", err)
	}
}

func TestPlayToWallAndSubmit(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	login(t, conn, "alice", "hunter2")
	src := env.source(t)

	// Left starts the game and is accepted against the initial heading.
	send(t, conn, ClientMessage{Type: MsgInput, Action: "left"})
	snap := read[Snapshot](t, conn, MsgSnapshot)
	if snap.Status != "running" {
		t.Fatalf("status = %q, expected running", snap.Status)
	}

	now := time.Unix(1000, 0)
	var ended Ended
	for i := 0; i < 30; i++ {
		src.Send(now)
		now = now.Add(game.DefaultConfig().InitialSpeed)

		snap = read[Snapshot](t, conn, MsgSnapshot)
		if snap.Status == "game_over" {
			ended = read[Ended](t, conn, MsgEnded)
			break
		}
	}

	if ended.Reason != "wall" {
		t.Fatalf("ended = %+v, expected a wall collision", ended)
	}
	if ended.Score != snap.Score || ended.Run == "" {
		t.Errorf("ended %+v does not match final snapshot %+v", ended, snap)
	}

	// Submission is asynchronous
	env.scores.Wait()
	got, err := env.scores.UserScores(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("UserScores() failed: %v", err)
	}
	if len(got) != 1 || got[0].Score != ended.Score || got[0].RunID != ended.Run {
		t.Errorf("saved %v, expected score %d run %s", got, ended.Score, ended.Run)
	}

	// Restart returns to a fresh game
	send(t, conn, ClientMessage{Type: MsgInput, Action: "restart"})
	snap = read[Snapshot](t, conn, MsgSnapshot)
	if snap.Status != "ready" || snap.Score != 0 || len(snap.Snake) != 3 {
		t.Errorf("after restart: %+v", snap)
	}
}

func TestSameAxisInputStartsGame(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	login(t, conn, "alice", "hunter2")

	// Down is rejected against the initial heading but still starts the game.
	send(t, conn, ClientMessage{Type: MsgInput, Action: "down"})
	snap := read[Snapshot](t, conn, MsgSnapshot)
	if snap.Status != "running" || snap.Direction != "up" {
		t.Errorf("status = %q direction = %q, expected running up", snap.Status, snap.Direction)
	}
}

func TestUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	login(t, conn, "alice", "hunter2")

	send(t, conn, ClientMessage{Type: MsgInput, Action: "jump"})
	if e := read[ErrorMessage](t, conn, MsgError); !strings.Contains(e.Error, "jump") {
		t.Errorf("error = %q", e.Error)
	}
}

func TestPauseStopsSnapshots(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	login(t, conn, "alice", "hunter2")
	src := env.source(t)

	send(t, conn, ClientMessage{Type: MsgInput, Action: "pause"}) // starts the game
	read[Snapshot](t, conn, MsgSnapshot)
	send(t, conn, ClientMessage{Type: MsgInput, Action: "pause"})
	if snap := read[Snapshot](t, conn, MsgSnapshot); !snap.Paused {
		t.Fatal("expected paused snapshot")
	}

	// A paused game does not tick, so a frame produces nothing; the
	// next message is the reply to the following input.
	src.Send(time.Unix(1000, 0))
	send(t, conn, ClientMessage{Type: MsgInput, Action: "jump"})
	read[ErrorMessage](t, conn, MsgError)
}

func TestLeaderboardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.scores.Submit("alice", 30, "a")
	env.scores.Submit("bob", 90, "b")
	env.scores.Wait()

	resp, err := http.Get(env.ts.URL + "/api/leaderboard?limit=1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body ScoresResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Scores) != 1 || body.Scores[0].User != "bob" || body.Scores[0].Score != 90 {
		t.Errorf("unexpected leaderboard: %+v", body.Scores)
	}
}

func TestUserScoresEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.scores.Submit("alice", 10, "a")
	env.scores.Wait()

	resp, err := http.Get(env.ts.URL + "/api/scores/alice")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var body ScoresResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Scores) != 1 || body.Scores[0].Run != "a" {
		t.Errorf("unexpected history: %+v", body.Scores)
	}

	bad, err := http.Get(env.ts.URL + "/api/scores/no%20spaces")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", bad.StatusCode)
	}
}

func TestStaticClient(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestCloseEndsSessions(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	login(t, conn, "alice", "hunter2")
	env.source(t)

	done := make(chan struct{})
	go func() {
		env.srv.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
}
