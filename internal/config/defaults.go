package config

import (
	_ "embed"
)

//go:embed defaults/defense.yaml
var defaultYAML []byte

// Default returns the default configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			DefaultMap:    "original",
			Credits:       500,
			Lives:         20,
			SellRatio:     0.7,
			NextWaveDelay: 5,
			EarlyBonus:    0.5,
		},
		Difficulty: DifficultyConfig{
			Preset:      string(DifficultyNormal),
			HealthScale: 1.0,
			RewardScale: 1.0,
		},
		Simulation: SimulationConfig{
			Speed:           1,
			CrashGuardSteps: 10,
		},
		Saves: SavesConfig{
			Dir:              "~/.defense/saves",
			AutoSaveInterval: 30,
		},
		Leaderboard: LeaderboardConfig{
			Path: "~/.defense/leaderboard.db",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.defense/defense.log",
		},
	}
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultYAML
}
