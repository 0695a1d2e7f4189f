// Package game wires the simulation core into a playable tower defense:
// economy, waves, tower actions, loading and saving.
package game

import (
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"sort"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/config"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/entities"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/persist"
	"github.com/vovakirdan/tui-defense/internal/registry"
	"github.com/vovakirdan/tui-defense/internal/resources"
)

// Options configures a Game.
type Options struct {
	Config config.Config
	Logger *log.Logger
	// Resources is the map and wave pack; nil means the embedded one.
	Resources fs.FS
	// Saves is the save directory; nil disables saving.
	Saves *SaveGameRepository
	// Leaderboard receives final scores; may be nil.
	Leaderboard LeaderboardRecorder
}

// Game is one running tower defense session.
type Game struct {
	cfg config.Config
	log *log.Logger

	Engine     *engine.Engine
	Clock      *engine.Clock
	Registry   *registry.Registry
	Persister  *persist.GamePersister
	Maps       *MapRepository
	Saves      *SaveGameRepository
	ScoreBoard *ScoreBoard
	State      *GameState
	Waves      *WaveManager
	Towers     *TowerControl
	Loader     *GameLoader

	autoSave *engine.TickTimer
	snapshot atomic.Pointer[Snapshot]
}

// New wires a game. No map is loaded yet; call Loader.LoadMap or
// Loader.AutoLoadGame.
func New(opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	pack := opts.Resources
	if pack == nil {
		pack = resources.FS()
	}
	cfg := opts.Config

	eng := engine.New(logger)
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	eng.Seed(seed)

	clock := engine.NewClock(eng, logger)
	clock.SetSpeed(cfg.Simulation.Speed)

	reg := registry.New(eng)
	entities.Register(reg)

	maps, err := NewMapRepository(pack, cfg.Game.DefaultMap)
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:       cfg,
		log:       logger.With("component", "game"),
		Engine:    eng,
		Clock:     clock,
		Registry:  reg,
		Persister: persist.NewGamePersister(),
		Maps:      maps,
		Saves:     opts.Saves,
	}
	g.ScoreBoard = NewScoreBoard(cfg.Game.Credits, cfg.Game.Lives)
	g.State = NewGameState(g.ScoreBoard, opts.Leaderboard, logger)
	g.Waves = NewWaveManager(clock, reg, g.ScoreBoard, g.State, cfg, logger)
	g.Towers = NewTowerControl(clock, reg, g.ScoreBoard, g.State, cfg.Game.SellRatio, logger)
	g.Loader = NewGameLoader(LoaderOptions{
		Clock:      clock,
		Registry:   reg,
		Persister:  g.Persister,
		Migrator:   persist.NewMigrator(logger),
		Maps:       maps,
		Saves:      opts.Saves,
		Resources:  pack,
		CrashGuard: cfg.Simulation.CrashGuardSteps,
		Logger:     logger,
	})
	g.State.bind(g.Loader.CurrentMapID, g.Waves.WaveNumber)

	// The document is read in this order.
	g.Persister.Register(g.Loader)
	g.Persister.Register(g.State)
	g.Persister.Register(g.ScoreBoard)
	g.Persister.Register(g.Waves)
	g.Persister.Register(NewEntityPersister(reg))

	g.Loader.AddListener(g.Waves)
	g.Loader.AddListener(g)
	clock.AddStepListener(g)

	if cfg.Saves.AutoSaveInterval > 0 && opts.Saves != nil {
		g.autoSave = engine.NewInterval(cfg.Saves.AutoSaveInterval)
	}

	g.log.Debug("game created", "seed", seed, "maps", len(maps.Maps()))
	return g, nil
}

// Snapshot returns the state published after the latest step or load.
func (g *Game) Snapshot() *Snapshot {
	if s := g.snapshot.Load(); s != nil {
		return s
	}
	return &Snapshot{}
}

// StepCompleted publishes a snapshot and drives the periodic auto-save.
func (g *Game) StepCompleted(int) {
	if g.autoSave != nil && !g.Clock.IsPaused() && !g.State.IsGameOver() && g.autoSave.Tick() {
		if err := g.AutoSave(); err != nil {
			g.log.Error("auto-save", "err", err)
		}
	}
	g.snapshot.Store(g.buildSnapshot())
}

// GameLoaded publishes the freshly loaded state.
func (g *Game) GameLoaded() {
	if g.autoSave != nil {
		g.autoSave.Reset()
	}
	g.snapshot.Store(g.buildSnapshot())
}

// Document returns the current game as a save document. Only the
// simulation goroutine may call it.
func (g *Game) Document() *kvstore.Store {
	return g.Persister.WriteState()
}

// SaveGame writes the current game into a new save slot.
func (g *Game) SaveGame() error {
	if posted(g.Clock, g.log, "save game", g.SaveGame) {
		return nil
	}
	if g.Saves == nil {
		return fmt.Errorf("game: saving is disabled")
	}
	info := SaveGameInfo{
		MapID: g.Loader.CurrentMapID(),
		Score: g.ScoreBoard.Score(),
		Wave:  g.Waves.WaveNumber(),
		Lives: g.ScoreBoard.Lives(),
	}
	if m, err := g.Maps.Map(info.MapID); err == nil {
		info.MapTitle = m.Title
	}
	saved, err := g.Saves.Save(g.Document(), info)
	if err != nil {
		return err
	}
	g.log.Info("game saved", "id", saved.ID, "map", saved.MapID, "wave", saved.Wave)
	return nil
}

// AutoSave replaces the auto-save with the current game. A finished game
// removes the auto-save instead. Nothing is written after a fault right
// after a load.
func (g *Game) AutoSave() error {
	if posted(g.Clock, g.log, "auto-save", g.AutoSave) {
		return nil
	}
	if g.Saves == nil {
		return nil
	}
	if g.Loader.Crashed() {
		g.log.Warn("auto-save skipped after early fault")
		return nil
	}
	if g.State.IsGameOver() {
		return g.Saves.DeleteAutoSave()
	}
	return g.Saves.WriteAutoSave(g.Document())
}

// TogglePause pauses or resumes the simulation.
func (g *Game) TogglePause() {
	g.Clock.SetPaused(!g.Clock.IsPaused())
}

// CycleSpeed switches between normal speed and fast forward.
func (g *Game) CycleSpeed() {
	if g.Clock.Speed() > 1 {
		g.Clock.SetSpeed(1)
		return
	}
	g.Clock.SetSpeed(fastForward)
}

const fastForward = 4

// BuyTower builds a tower; see TowerControl.
func (g *Game) BuyTower(kind string, plateau engine.EntityID) error {
	return g.Towers.BuyTower(kind, plateau)
}

// SellTower sells a tower; see TowerControl.
func (g *Game) SellTower(id engine.EntityID) error { return g.Towers.SellTower(id) }

// UpgradeTower upgrades a tower; see TowerControl.
func (g *Game) UpgradeTower(id engine.EntityID) error { return g.Towers.UpgradeTower(id) }

// StartNextWave sends the next wave; see WaveManager.
func (g *Game) StartNextWave() error { return g.Waves.StartNextWave() }

// Restart starts the current map over.
func (g *Game) Restart() error { return g.Loader.Restart() }

// TowerKinds returns the towers the player can buy, cheapest first.
func (g *Game) TowerKinds() []registry.EntityInfo {
	kinds := g.Registry.ListByType(engine.TypeTower)
	sort.SliceStable(kinds, func(i, j int) bool { return kinds[i].Value < kinds[j].Value })
	return kinds
}
