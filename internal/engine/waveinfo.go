package engine

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// ErrBadWaves is returned when the wave table is structurally invalid.
var ErrBadWaves = errors.New("engine: invalid wave table")

// EnemyInfo describes one enemy of a wave.
type EnemyInfo struct {
	Kind      string
	PathIndex int
	// Delay is the time in seconds after the previous enemy of the wave.
	Delay  float64
	Offset core.Vec2
}

// WaveInfo describes one wave of the global wave table.
type WaveInfo struct {
	Enemies []EnemyInfo
	// Extend is how many times the wave is repeated when started.
	Extend     int
	MaxExtend  int
	WaveReward int
	// HealthMultiplier scales enemy health for repeated rounds.
	HealthMultiplier float64
	RewardMultiplier float64
}

// ParseWaveInfos reads the "waves" list of a wave table document.
func ParseWaveInfos(doc *kvstore.Store) ([]WaveInfo, error) {
	list, err := doc.StoreList("waves")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadWaves, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no waves", ErrBadWaves)
	}

	waves := make([]WaveInfo, 0, len(list))
	for i, w := range list {
		info, err := newWaveInfo(w)
		if err != nil {
			return nil, fmt.Errorf("%w: wave %d: %w", ErrBadWaves, i, err)
		}
		waves = append(waves, info)
	}
	return waves, nil
}

func newWaveInfo(doc *kvstore.Store) (WaveInfo, error) {
	w := WaveInfo{
		Extend:           doc.IntOr("extend", 0),
		MaxExtend:        doc.IntOr("maxExtend", 0),
		WaveReward:       doc.IntOr("waveReward", 0),
		HealthMultiplier: doc.FloatOr("healthMultiplier", 0),
		RewardMultiplier: doc.FloatOr("rewardMultiplier", 0),
	}

	enemies, err := doc.StoreList("enemies")
	if err != nil {
		return WaveInfo{}, err
	}
	for _, e := range enemies {
		kind, err := e.String("kind")
		if err != nil {
			return WaveInfo{}, err
		}
		w.Enemies = append(w.Enemies, EnemyInfo{
			Kind:      kind,
			PathIndex: e.IntOr("pathIndex", 0),
			Delay:     e.FloatOr("delay", 0),
			Offset:    core.V(e.FloatOr("offsetX", 0), e.FloatOr("offsetY", 0)),
		})
	}
	return w, nil
}

// Round returns the wave to play for a zero-based wave number. Past the end
// of the table the last waves are cycled and each cycle is stronger.
func Round(waves []WaveInfo, number int) (info WaveInfo, cycle int) {
	if len(waves) == 0 {
		return WaveInfo{}, 0
	}
	if number < len(waves) {
		return waves[number], 0
	}
	return waves[number%len(waves)], number / len(waves)
}
