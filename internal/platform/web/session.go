package web

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-snake/internal/account"
	"github.com/vovakirdan/tui-snake/internal/clock"
	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/scores"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	loginWait    = 60 * time.Second
	maxMessage   = 4096
	lookupWait   = 5 * time.Second
	loginRetries = 5
)

var errNotLogin = errors.New("expected login or register")

// session is one connected player. After login, every write to the socket
// and every engine call happens on the clock.Run goroutine.
type session struct {
	id       string
	conn     *websocket.Conn
	srv      *Server
	logger   *log.Logger
	user     string
	engine   *game.Engine
	clock    *clock.Clock
	recorder *scores.Recorder
	ended    *game.GameEnded
	lastTick uint64
	cancel   context.CancelFunc
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		conn:   conn,
		srv:    srv,
		logger: srv.logger.With("session", id[:8]),
	}
}

// serve runs the session until the client leaves or ctx is cancelled.
func (s *session) serve(ctx context.Context) {
	defer s.conn.Close()
	// Unblock pending reads on server shutdown.
	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	s.conn.SetReadLimit(maxMessage)

	user, err := s.login(ctx)
	if err != nil {
		s.logger.Debug("login aborted", "error", err)
		return
	}
	s.user = user
	s.logger = s.logger.With("user", user)

	if err := s.startGame(); err != nil {
		s.logger.Error("cannot start game", "error", err)
		_ = s.send(ErrorMessage{Type: MsgError, Error: "cannot start game"})
		return
	}
	defer s.recorder.Detach()

	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	// Keep the read deadline alive with pings; WriteControl may run
	// concurrently with the loop's writes.
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.pingLoop(ctx)

	inbox := make(chan func())
	go s.readLoop(ctx, inbox)

	s.logger.Info("game session started")
	clock.Run(ctx, s.srv.newSource(), s.clock, inbox)
	s.logger.Info("game session ended")
}

// login reads login/register requests until one succeeds.
func (s *session) login(ctx context.Context) (string, error) {
	for attempt := 0; attempt < loginRetries; attempt++ {
		_ = s.conn.SetReadDeadline(time.Now().Add(loginWait))

		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return "", err
		}

		lookup, cancel := context.WithTimeout(ctx, lookupWait)
		user, err := s.authenticate(lookup, msg)
		cancel()

		if err == nil {
			return user, nil
		}
		s.logger.Info("login rejected", "user", msg.User, "reason", err)
		if err := s.send(ErrorMessage{Type: MsgError, Error: loginError(err)}); err != nil {
			return "", err
		}
	}
	return "", errors.New("too many failed logins")
}

func (s *session) authenticate(ctx context.Context, msg ClientMessage) (string, error) {
	switch msg.Type {
	case MsgRegister:
		if err := s.srv.accounts.Register(ctx, msg.User, msg.Secret); err != nil {
			return "", err
		}
		s.logger.Info("account registered", "user", msg.User)
		fallthrough
	case MsgLogin:
		tok, err := s.srv.accounts.Authenticate(ctx, msg.User, msg.Secret)
		if err != nil {
			return "", err
		}
		return string(tok), nil
	default:
		return "", fmt.Errorf("%w, got %q", errNotLogin, msg.Type)
	}
}

// loginError turns an account error into a client-facing message.
// Unknown users and wrong passwords look the same from outside.
func loginError(err error) string {
	switch {
	case errors.Is(err, account.ErrNotFound), errors.Is(err, account.ErrWrongSecret):
		return "invalid username or password"
	case errors.Is(err, account.ErrAlreadyExists),
		errors.Is(err, account.ErrInvalidUsername),
		errors.Is(err, account.ErrInvalidSecret):
		return err.Error()
	case errors.Is(err, errNotLogin):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "server busy, try again"
	default:
		return "login failed"
	}
}

// startGame creates the engine and greets the player.
func (s *session) startGame() error {
	eng, err := game.New(s.srv.cfg.Rules, game.WithSeed(time.Now().UnixNano()))
	if err != nil {
		return err
	}
	s.engine = eng
	s.clock = clock.New(eng.Speed, s.tick)
	s.recorder = s.srv.scores.Attach(eng, s.user)
	eng.Subscribe(func(ev game.Event) {
		if e, ok := ev.(game.GameEnded); ok {
			s.ended = &e
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), lookupWait)
	high, err := s.srv.scores.HighScore(ctx, s.user)
	cancel()
	if err != nil {
		s.logger.Warn("cannot load high score", "error", err)
	}

	if err := s.send(Welcome{Type: MsgWelcome, Session: s.id, User: s.user, HighScore: high}); err != nil {
		return err
	}
	return s.pushSnapshot()
}

// tick runs on the loop goroutine once per game period.
func (s *session) tick() {
	s.engine.Tick()

	snap := s.engine.Snapshot()
	if snap.Ticks == s.lastTick {
		return
	}
	s.lastTick = snap.Ticks
	s.publish(snap)
}

// apply runs on the loop goroutine for every input message.
func (s *session) apply(a core.Action) {
	before := s.engine.Status()
	// A rejected heading can still start a Ready game.
	if !s.engine.Apply(a) && s.engine.Status() == before {
		return
	}
	if a == core.ActionRestart {
		s.clock.Reset()
		s.lastTick = 0
	}
	s.publish(s.engine.Snapshot())
}

// publish pushes a snapshot, followed by the end notice if the game just ended.
func (s *session) publish(snap game.Snapshot) {
	err := s.send(newSnapshot(s.recorder.RunID(), snap))
	if err == nil && s.ended != nil {
		err = s.send(newEnded(s.recorder.RunID(), *s.ended))
		s.ended = nil
	}
	if err != nil {
		s.logger.Debug("write failed", "error", err)
		s.cancel()
	}
}

func (s *session) pushSnapshot() error {
	return s.send(newSnapshot(s.recorder.RunID(), s.engine.Snapshot()))
}

// reply sends from the loop goroutine and ends the session if the write fails.
func (s *session) reply(v any) {
	if err := s.send(v); err != nil {
		s.logger.Debug("write failed", "error", err)
		s.cancel()
	}
}

func (s *session) send(v any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

// readLoop decodes client messages and hands them to the loop goroutine.
func (s *session) readLoop(ctx context.Context, inbox chan<- func()) {
	defer s.cancel()

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}

		fn := s.handler(msg)
		select {
		case inbox <- fn:
		case <-ctx.Done():
			return
		}
	}
}

// handler maps one client message to work for the loop goroutine.
func (s *session) handler(msg ClientMessage) func() {
	if msg.Type != MsgInput {
		return func() {
			s.reply(ErrorMessage{Type: MsgError, Error: fmt.Sprintf("unexpected message %q", msg.Type)})
		}
	}

	action := core.ParseAction(msg.Action)
	if action == core.ActionNone {
		return func() {
			s.reply(ErrorMessage{Type: MsgError, Error: fmt.Sprintf("unknown action %q", msg.Action)})
		}
	}
	return func() { s.apply(action) }
}

func (s *session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.cancel()
				return
			}
		}
	}
}
