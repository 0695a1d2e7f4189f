package config

import "math"

// DifficultyPreset names a predefined difficulty.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// DifficultyConfig scales enemies and rewards.
type DifficultyConfig struct {
	Preset      string  `yaml:"preset"`
	HealthScale float64 `yaml:"health_scale"` // multiplies every enemy's health
	RewardScale float64 `yaml:"reward_scale"` // multiplies every kill reward
	// WaveGrowth is added to the health factor for each completed cycle of
	// the wave table.
	WaveGrowth float64 `yaml:"wave_growth"`
}

// ParsePreset converts a user supplied name; unknown names yield normal.
func ParsePreset(name string) DifficultyPreset {
	switch DifficultyPreset(name) {
	case DifficultyEasy, DifficultyHard:
		return DifficultyPreset(name)
	default:
		return DifficultyNormal
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	preset = ParsePreset(string(preset))
	cfg.Difficulty.Preset = string(preset)

	switch preset {
	case DifficultyEasy:
		cfg.Game.Lives = max(cfg.Game.Lives, 30)
		cfg.Difficulty.HealthScale = clampF(cfg.Difficulty.HealthScale*0.75, 0.1, 10)
	case DifficultyHard:
		cfg.Game.Lives = min(cfg.Game.Lives, 10)
		cfg.Difficulty.HealthScale = clampF(cfg.Difficulty.HealthScale*1.5, 0.1, 10)
		cfg.Difficulty.RewardScale = clampF(cfg.Difficulty.RewardScale*0.8, 0.1, 10)
	}
	if cfg.Difficulty.WaveGrowth <= 0 {
		cfg.Difficulty.WaveGrowth = 0.5
	}
}

// Scaling computes enemy strength from the difficulty and the wave cycle.
type Scaling struct {
	cfg DifficultyConfig
}

// NewScaling creates a scaling for cfg.
func NewScaling(cfg DifficultyConfig) Scaling {
	return Scaling{cfg: cfg}
}

// Health returns the health factor for enemies of a wave in the given
// cycle of the wave table. extra is the wave's own multiplier.
func (s Scaling) Health(cycle int, extra float64) float64 {
	f := s.cfg.HealthScale
	if f <= 0 {
		f = 1
	}
	growth := s.cfg.WaveGrowth
	if extra > 0 {
		growth = extra
	}
	return f * (1 + float64(cycle)*growth)
}

// Reward returns a scaled kill reward, never below 1.
func (s Scaling) Reward(base int, cycle int, extra float64) int {
	f := s.cfg.RewardScale
	if f <= 0 {
		f = 1
	}
	if extra > 0 {
		f *= 1 + float64(cycle)*extra
	}
	return max(1, int(math.Round(float64(base)*f)))
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
