package game

import (
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/config"
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/entities"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/registry"
	"github.com/vovakirdan/tui-defense/internal/stream"
)

var (
	// ErrWaveNotReady is returned when the next wave is requested too early.
	ErrWaveNotReady = errors.New("game: next wave not ready")
	// ErrGameOver is returned for player actions after the game ended.
	ErrGameOver = errors.New("game: game over")
)

// WaveListener observes wave progress.
type WaveListener interface {
	WaveNumberChanged(waveNumber int)
	NextWaveReadyChanged(ready bool)
	RemainingEnemiesChanged(remaining int)
}

// WaveManager sends waves from the engine's wave table and keeps one
// attender per running wave. It is ticked by the engine after every
// entity.
type WaveManager struct {
	log     *log.Logger
	clock   *engine.Clock
	eng     *engine.Engine
	reg     *registry.Registry
	board   *ScoreBoard
	state   *GameState
	scaling config.Scaling

	earlyBonusRatio float64
	readyTimer      *engine.TickTimer

	waveNumber    int
	nextWaveReady bool
	active        []*WaveAttender

	listeners core.Listeners[WaveListener]
}

// NewWaveManager creates a wave manager and attaches it to the engine
// driven by clock.
func NewWaveManager(clock *engine.Clock, reg *registry.Registry, board *ScoreBoard, state *GameState, cfg config.Config, logger *log.Logger) *WaveManager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &WaveManager{
		log:             logger.With("component", "waves"),
		clock:           clock,
		eng:             clock.Engine(),
		reg:             reg,
		board:           board,
		state:           state,
		scaling:         config.NewScaling(cfg.Difficulty),
		earlyBonusRatio: cfg.Game.EarlyBonus,
		readyTimer:      engine.NewInterval(max(cfg.Game.NextWaveDelay, 0)),
		nextWaveReady:   true,
	}
	m.eng.AddTickListener(m)
	return m
}

func (m *WaveManager) WaveNumber() int      { return m.waveNumber }
func (m *WaveManager) IsNextWaveReady() bool { return m.nextWaveReady }

// ActiveWaves returns the number of waves still running.
func (m *WaveManager) ActiveWaves() int { return len(m.active) }

// RemainingEnemies returns the enemies of running waves that are alive or
// not yet spawned.
func (m *WaveManager) RemainingEnemies() int {
	n := 0
	for _, a := range m.active {
		n += a.Remaining()
	}
	return n
}

// AddListener registers l.
func (m *WaveManager) AddListener(l WaveListener) { m.listeners.Add(l) }

// RemoveListener unregisters l.
func (m *WaveManager) RemoveListener(l WaveListener) { m.listeners.Remove(l) }

// StartNextWave sends the next wave. Calling it while other waves are
// still running pays the early bonus. From another goroutine the request
// is posted to the clock and nil is returned.
func (m *WaveManager) StartNextWave() error {
	if posted(m.clock, m.log, "next wave", m.StartNextWave) {
		return nil
	}

	if m.state.IsGameOver() {
		return ErrGameOver
	}
	if !m.nextWaveReady {
		return ErrWaveNotReady
	}
	if len(m.eng.WaveInfos()) == 0 {
		return ErrWaveNotReady
	}

	if len(m.active) > 0 && m.board.EarlyBonus() > 0 {
		m.board.GiveCredits(m.board.EarlyBonus(), true)
	}

	info, cycle := engine.Round(m.eng.WaveInfos(), m.waveNumber)
	a := newWaveAttender(m, m.waveNumber, info, cycle, m.extendFor(info, cycle))
	m.active = append(m.active, a)
	m.log.Debug("wave started", "wave", m.waveNumber, "enemies", a.total, "cycle", cycle)

	m.waveNumber++
	m.state.GameStarted()
	m.setNextWaveReady(false)
	m.readyTimer.Reset()
	m.updateBonus()
	m.waveNumberChanged()
	return nil
}

func (m *WaveManager) extendFor(info engine.WaveInfo, cycle int) int {
	if info.MaxExtend > info.Extend {
		return min(info.Extend+cycle, info.MaxExtend)
	}
	return info.Extend
}

// Tick advances the running waves and the next-wave delay.
func (m *WaveManager) Tick() {
	for _, a := range slices.Clone(m.active) {
		a.tick()
	}
	if !m.nextWaveReady && m.readyTimer.Tick() {
		m.setNextWaveReady(true)
	}
}

func (m *WaveManager) attenderFinished(a *WaveAttender) {
	i := slices.Index(m.active, a)
	if i < 0 {
		return
	}
	m.active = slices.Delete(m.active, i, i+1)
	m.board.GiveCredits(a.waveReward(), true)
	m.log.Debug("wave finished", "wave", a.index, "reward", a.waveReward())

	if len(m.active) == 0 {
		m.setNextWaveReady(true)
	}
	m.updateBonus()
	m.remainingChanged()
}

func (m *WaveManager) setNextWaveReady(ready bool) {
	if m.nextWaveReady == ready {
		return
	}
	m.nextWaveReady = ready
	for _, l := range m.listeners.Snapshot() {
		l.NextWaveReadyChanged(ready)
	}
}

func (m *WaveManager) waveNumberChanged() {
	for _, l := range m.listeners.Snapshot() {
		l.WaveNumberChanged(m.waveNumber)
	}
}

func (m *WaveManager) remainingChanged() {
	n := m.RemainingEnemies()
	for _, l := range m.listeners.Snapshot() {
		l.RemainingEnemiesChanged(n)
	}
}

// updateBonus publishes the reward of the next wave and the early bonus,
// a share of the reward still outstanding in running waves.
func (m *WaveManager) updateBonus() {
	waveBonus := 0
	if waves := m.eng.WaveInfos(); len(waves) > 0 {
		info, cycle := engine.Round(waves, m.waveNumber)
		waveBonus = m.scaling.Reward(info.WaveReward, cycle, info.RewardMultiplier)
	}
	outstanding := 0
	for _, a := range m.active {
		outstanding += a.outstandingReward()
	}
	m.board.SetBonus(waveBonus, int(m.earlyBonusRatio*float64(outstanding)))
}

// ResetState forgets all waves.
func (m *WaveManager) ResetState() {
	for _, a := range m.active {
		a.detach()
	}
	m.active = nil
	m.waveNumber = 0
	m.readyTimer.Reset()
	m.setNextWaveReady(true)
	m.updateBonus()
	m.waveNumberChanged()
	m.remainingChanged()
}

// WriteState stores the wave progress under "waveManager".
func (m *WaveManager) WriteState(doc *kvstore.Store) {
	s := kvstore.New()
	s.PutInt("waveNumber", m.waveNumber)
	s.PutBool("nextWaveReady", m.nextWaveReady)
	list := make([]*kvstore.Store, 0, len(m.active))
	for _, a := range m.active {
		w := kvstore.New()
		w.PutInt("waveIndex", a.index)
		w.PutInt("extend", a.extend)
		w.PutInt("spawned", a.spawned)
		list = append(list, w)
	}
	s.PutStoreList("activeWaves", list)
	doc.PutStore("waveManager", s)
}

// ReadState restores the wave progress. Enemies of the running waves are
// reattached once the entities are loaded, see GameLoaded.
func (m *WaveManager) ReadState(doc *kvstore.Store) error {
	m.ResetState()

	s, err := doc.Store("waveManager")
	if err != nil {
		return nil
	}
	m.waveNumber = max(s.IntOr("waveNumber", 0), 0)
	m.setNextWaveReady(s.BoolOr("nextWaveReady", true))

	if !s.Has("activeWaves") {
		return nil
	}
	list, err := s.StoreList("activeWaves")
	if err != nil {
		return err
	}
	for _, w := range list {
		index, err := w.Int("waveIndex")
		if err != nil {
			return err
		}
		if index < 0 {
			return kvstore.OutOfRange("waveIndex", index)
		}
		info, cycle := engine.Round(m.eng.WaveInfos(), index)
		a := newWaveAttender(m, index, info, cycle, w.IntOr("extend", m.extendFor(info, cycle)))
		a.spawned = min(max(w.IntOr("spawned", 0), 0), a.total)
		a.resetTimer()
		m.active = append(m.active, a)
	}
	return nil
}

// GameLoaded reattaches loaded enemies to the waves that spawned them.
func (m *WaveManager) GameLoaded() {
	enemies := stream.Cast[engine.Entity, *entities.Enemy](m.eng.EntitiesByType(engine.TypeEnemy))
	for e := range enemies.All() {
		for _, a := range m.active {
			if a.index == e.Wave() {
				a.attach(e)
				break
			}
		}
	}
	m.updateBonus()
	m.waveNumberChanged()
	m.remainingChanged()
}
