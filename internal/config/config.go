// Package config provides YAML-based configuration loading and difficulty
// presets for the snake game and its servers.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-snake/internal/game"
)

// Config is the full application configuration.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Clock   ClockConfig   `yaml:"clock"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
	Web     WebConfig     `yaml:"web"`
	Log     LogConfig     `yaml:"log"`
}

// GameConfig holds the rules of a game. Durations are in milliseconds.
type GameConfig struct {
	GridSize       int `yaml:"grid_size"`
	InitialLength  int `yaml:"initial_length"`
	InitialSpeedMS int `yaml:"initial_speed_ms"`
	MinSpeedMS     int `yaml:"min_speed_ms"`
	SpeedStepMS    int `yaml:"speed_step_ms"`
	ScoreStep      int `yaml:"score_step"`
}

// ClockConfig controls the frame source.
type ClockConfig struct {
	FrameRate int `yaml:"frame_rate"` // Frames per second
}

// StorageConfig locates the database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SSHConfig configures the wish server.
type SSHConfig struct {
	Address            string `yaml:"address"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// IdleTimeout returns the idle timeout as a duration.
func (c SSHConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

// WebConfig configures the HTTP/websocket server.
type WebConfig struct {
	Address string `yaml:"address"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log destination while the TUI owns the terminal
}

// GameRules converts the game section into engine rules.
func (c Config) GameRules() game.Config {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return game.Config{
		GridSize:      c.Game.GridSize,
		InitialLength: c.Game.InitialLength,
		InitialSpeed:  ms(c.Game.InitialSpeedMS),
		MinSpeed:      ms(c.Game.MinSpeedMS),
		SpeedStep:     ms(c.Game.SpeedStepMS),
		ScoreStep:     c.Game.ScoreStep,
	}
}

// LogLevel parses the configured level.
func (c Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("config: %w", err)
	}
	return lvl, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error

	if err := c.GameRules().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Clock.FrameRate <= 0 || c.Clock.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("clock.frame_rate must be in 1..240, got %d", c.Clock.FrameRate))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.SSH.IdleTimeoutMinutes < 0 {
		errs = append(errs, fmt.Errorf("ssh.idle_timeout_minutes must not be negative, got %d", c.SSH.IdleTimeoutMinutes))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
