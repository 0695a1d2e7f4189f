// Package config provides YAML-based configuration for the defense game:
// starting resources, difficulty, save and leaderboard locations.
package config

// Config contains all configuration of the game.
type Config struct {
	Game        GameConfig        `yaml:"game"`
	Difficulty  DifficultyConfig  `yaml:"difficulty"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Saves       SavesConfig       `yaml:"saves"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Log         LogConfig         `yaml:"log"`
}

// GameConfig defines the economy and rules of a game.
type GameConfig struct {
	DefaultMap    string  `yaml:"default_map"`
	Credits       int     `yaml:"credits"`
	Lives         int     `yaml:"lives"`
	SellRatio     float64 `yaml:"sell_ratio"`      // share of a tower's value refunded on sell
	NextWaveDelay float64 `yaml:"next_wave_delay"` // seconds before the next wave may be called
	EarlyBonus    float64 `yaml:"early_bonus"`     // share of the remaining reward paid for calling early
}

// SimulationConfig defines clock parameters.
type SimulationConfig struct {
	Speed           int    `yaml:"speed"` // steps per frame
	Seed            uint64 `yaml:"seed"`  // 0 = random
	CrashGuardSteps int    `yaml:"crash_guard_steps"`
}

// SavesConfig defines where save games go.
type SavesConfig struct {
	Dir              string  `yaml:"dir"`
	AutoSaveInterval float64 `yaml:"autosave_interval"` // seconds of simulated time, 0 = off
}

// LeaderboardConfig defines the leaderboard database.
type LeaderboardConfig struct {
	Path string `yaml:"path"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"`
	// File receives the log while the terminal UI owns the screen.
	File string `yaml:"file"`
}
