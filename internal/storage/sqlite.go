// Package storage provides SQLite-based persistence for accounts and scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite" // Pure Go SQLite driver
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors returned by account operations.
var (
	ErrUserExists   = errors.New("storage: user already exists")
	ErrUserNotFound = errors.New("storage: user not found")
)

// Store manages the SQLite database connection.
// It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// User is a registered account.
type User struct {
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// ScoreEntry represents a single finished game.
type ScoreEntry struct {
	ID        int64
	Username  string
	Score     int
	RunID     string
	CreatedAt time.Time
}

// UserStats contains aggregated statistics for one player.
type UserStats struct {
	Username   string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SQLite only supports one writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL REFERENCES users(username),
			score INTEGER NOT NULL,
			run_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(username, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUser inserts a new account. Returns ErrUserExists if the name is taken.
func (s *Store) CreateUser(ctx context.Context, username string, passwordHash []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("storage: cannot create user: %w", err)
	}
	return nil
}

// GetUser loads an account. Returns ErrUserNotFound if it does not exist.
func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	var u User
	var createdAt any
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password_hash, created_at FROM users WHERE username = ?",
		username,
	).Scan(&u.Username, &u.PasswordHash, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query user: %w", err)
	}

	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// SaveScore records a finished game for the given user.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(ctx context.Context, username string, score int, runID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO scores (username, score, run_id) VALUES (?, ?, ?)",
		username, score, runID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the best N scores across all users, highest first.
// Ties go to the earlier game.
func (s *Store) TopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	return s.queryScores(ctx,
		`SELECT id, username, score, run_id, created_at
		 FROM scores
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
}

// UserScores retrieves the most recent N scores of one user, newest first.
func (s *Store) UserScores(ctx context.Context, username string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	return s.queryScores(ctx,
		`SELECT id, username, score, run_id, created_at
		 FROM scores
		 WHERE username = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		username, limit,
	)
}

func (s *Store) queryScores(ctx context.Context, query string, args ...any) ([]ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Username, &e.Score, &e.RunID, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the best score of one user.
// Returns 0 if the user has no scores.
func (s *Store) HighScore(ctx context.Context, username string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM scores WHERE username = ?",
		username,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// Stats retrieves aggregated statistics for one user.
func (s *Store) Stats(ctx context.Context, username string) (*UserStats, error) {
	stats := &UserStats{Username: username}

	var lastPlayed any
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM scores WHERE username = ?`,
		username,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get user stats: %w", err)
	}

	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// parseTime handles both time.Time and the string form SQLite returns for
// CURRENT_TIMESTAMP columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// isUniqueViolation reports whether err is a primary key or UNIQUE conflict.
func isUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
