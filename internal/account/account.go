// Package account registers players and checks their credentials.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/tui-snake/internal/storage"
)

var (
	ErrAlreadyExists   = errors.New("account: username already taken")
	ErrNotFound        = errors.New("account: no such user")
	ErrWrongSecret     = errors.New("account: wrong password")
	ErrInvalidUsername = errors.New("account: username must be 3-20 letters, digits, '_' or '-'")
	ErrInvalidSecret   = errors.New("account: password must be 4-72 bytes")
)

const (
	minSecretLen = 4
	// bcrypt ignores everything after 72 bytes.
	maxSecretLen = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// Token identifies an authenticated session. It is the username.
type Token string

// Repository is the persistence the service needs. *storage.Store satisfies it.
type Repository interface {
	CreateUser(ctx context.Context, username string, passwordHash []byte) error
	GetUser(ctx context.Context, username string) (*storage.User, error)
}

// Service implements registration and login.
type Service struct {
	repo Repository
	cost int
}

// Option configures a Service.
type Option func(*Service)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates an account service on top of repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateUsername reports whether name is acceptable for a new account.
func ValidateUsername(name string) error {
	if !usernamePattern.MatchString(name) {
		return ErrInvalidUsername
	}
	return nil
}

// Register creates a new account.
func (s *Service) Register(ctx context.Context, username, secret string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if len(secret) < minSecretLen || len(secret) > maxSecretLen {
		return ErrInvalidSecret
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return fmt.Errorf("account: cannot hash password: %w", err)
	}

	err = s.repo.CreateUser(ctx, username, hash)
	if errors.Is(err, storage.ErrUserExists) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("account: register %q: %w", username, err)
	}
	return nil
}

// Authenticate checks a username/password pair and returns a session token.
func (s *Service) Authenticate(ctx context.Context, username, secret string) (Token, error) {
	u, err := s.repo.GetUser(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("account: authenticate %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrWrongSecret
		}
		return "", fmt.Errorf("account: authenticate %q: %w", username, err)
	}

	return Token(u.Username), nil
}

// Exists reports whether an account with the given name is registered.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.GetUser(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("account: lookup %q: %w", username, err)
	}
	return true, nil
}
