package config

import (
	"fmt"
	"strings"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Presets lists every preset in menu order.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}

// ParseDifficulty converts a name to a preset. Empty means no preset.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	if s == "" {
		return "", nil
	}
	p := DifficultyPreset(strings.ToLower(s))
	for _, known := range Presets {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
}

// IsFixedPreset returns true if the preset disables speed progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyPreset adjusts the game section for a difficulty preset.
// Grid size and scoring are left alone.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Game.InitialSpeedMS = 200
		cfg.Game.MinSpeedMS = 80
		cfg.Game.SpeedStepMS = 2
	case DifficultyNormal:
		cfg.Game.InitialSpeedMS = 150
		cfg.Game.MinSpeedMS = 50
		cfg.Game.SpeedStepMS = 2
	case DifficultyHard:
		cfg.Game.InitialSpeedMS = 100
		cfg.Game.MinSpeedMS = 40
		cfg.Game.SpeedStepMS = 3
	case DifficultyFixed:
		cfg.Game.SpeedStepMS = 0
	}
}
