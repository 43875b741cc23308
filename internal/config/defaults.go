package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// Default returns the built-in configuration.
// It mirrors defaults/snake.yaml and is used if the embedded file is unreadable.
func Default() Config {
	return Config{
		Game: GameConfig{
			GridSize:       20,
			InitialLength:  3,
			InitialSpeedMS: 150,
			MinSpeedMS:     50,
			SpeedStepMS:    2,
			ScoreStep:      10,
		},
		Clock: ClockConfig{
			FrameRate: 60,
		},
		Storage: StorageConfig{
			Path: "~/.snake/snake.db",
		},
		SSH: SSHConfig{
			Address:            ":23234",
			IdleTimeoutMinutes: 30,
		},
		Web: WebConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.snake/snake.log",
		},
	}
}
