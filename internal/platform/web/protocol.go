package web

import (
	"time"

	"github.com/vovakirdan/tui-snake/internal/game"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

// Message types. Every frame on the socket is a JSON object with a "type".
const (
	MsgLogin    = "login"
	MsgRegister = "register"
	MsgInput    = "input"

	MsgWelcome  = "welcome"
	MsgSnapshot = "snapshot"
	MsgEnded    = "ended"
	MsgError    = "error"
)

// ClientMessage is anything the browser sends.
type ClientMessage struct {
	Type   string `json:"type"`
	User   string `json:"user,omitempty"`
	Secret string `json:"secret,omitempty"`
	Action string `json:"action,omitempty"` // up, down, left, right, pause, restart
}

// Welcome confirms a login and opens the game.
type Welcome struct {
	Type      string `json:"type"`
	Session   string `json:"session"`
	User      string `json:"user"`
	HighScore int    `json:"high_score"`
}

// Cell is a grid coordinate on the wire.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snapshot is the board state after a tick or an accepted input.
type Snapshot struct {
	Type      string `json:"type"`
	Run       string `json:"run"`
	GridSize  int    `json:"grid_size"`
	Snake     []Cell `json:"snake"` // Head first
	Food      *Cell  `json:"food,omitempty"`
	Direction string `json:"direction"`
	Score     int    `json:"score"`
	SpeedMS   int64  `json:"speed_ms"`
	Paused    bool   `json:"paused"`
	Status    string `json:"status"`
	Ticks     uint64 `json:"ticks"`
}

// Ended is sent once per game, right after the final snapshot.
type Ended struct {
	Type   string `json:"type"`
	Run    string `json:"run"`
	Score  int    `json:"score"`
	Length int    `json:"length"`
	Reason string `json:"reason"`
}

// ErrorMessage reports a rejected request. The connection stays open.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ScoreRow is one leaderboard or history entry in the HTTP API.
type ScoreRow struct {
	User      string    `json:"user"`
	Score     int       `json:"score"`
	Run       string    `json:"run,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoresResponse wraps score lists returned by the HTTP API.
type ScoresResponse struct {
	Scores []ScoreRow `json:"scores"`
}

func newSnapshot(run string, s game.Snapshot) Snapshot {
	snake := make([]Cell, len(s.Snake))
	for i, p := range s.Snake {
		snake[i] = Cell{X: p.X, Y: p.Y}
	}

	msg := Snapshot{
		Type:      MsgSnapshot,
		Run:       run,
		GridSize:  s.GridSize,
		Snake:     snake,
		Direction: s.Direction.String(),
		Score:     s.Score,
		SpeedMS:   s.Speed.Milliseconds(),
		Paused:    s.Paused,
		Status:    s.Status.String(),
		Ticks:     s.Ticks,
	}
	if s.HasFood {
		msg.Food = &Cell{X: s.Food.X, Y: s.Food.Y}
	}
	return msg
}

func newEnded(run string, e game.GameEnded) Ended {
	return Ended{
		Type:   MsgEnded,
		Run:    run,
		Score:  e.Score,
		Length: e.Length,
		Reason: e.Reason.String(),
	}
}

func newScoresResponse(entries []storage.ScoreEntry) ScoresResponse {
	rows := make([]ScoreRow, len(entries))
	for i, e := range entries {
		rows[i] = ScoreRow{User: e.Username, Score: e.Score, Run: e.RunID, CreatedAt: e.CreatedAt}
	}
	return ScoresResponse{Scores: rows}
}
