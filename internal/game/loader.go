package game

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/persist"
	"github.com/vovakirdan/tui-defense/internal/registry"
	"github.com/vovakirdan/tui-defense/internal/resources"
)

// ErrCorruptSave is returned when a save game could not be restored. The
// loader has started a fresh map instead.
var ErrCorruptSave = errors.New("game: save game could not be loaded")

// LoadListener is notified on the simulation goroutine after a map or a
// save game has been loaded.
type LoadListener interface {
	GameLoaded()
}

// GameLoader replaces the running game with a fresh map or a save game.
// It persists the map id and, as an error listener of the clock, deletes
// the auto-save when the simulation faults right after a load.
type GameLoader struct {
	log        *log.Logger
	clock      *engine.Clock
	eng        *engine.Engine
	reg        *registry.Registry
	persister  *persist.GamePersister
	migrator   *persist.Migrator
	maps       *MapRepository
	saves      *SaveGameRepository
	pack       fs.FS
	crashGuard int

	mapID   string
	waves   []engine.WaveInfo
	crashed bool

	listeners core.Listeners[LoadListener]
}

// LoaderOptions wires a GameLoader.
type LoaderOptions struct {
	Clock      *engine.Clock
	Registry   *registry.Registry
	Persister  *persist.GamePersister
	Migrator   *persist.Migrator
	Maps       *MapRepository
	Saves      *SaveGameRepository
	Resources  fs.FS
	CrashGuard int
	Logger     *log.Logger
}

// NewGameLoader creates a loader and registers it with the clock.
func NewGameLoader(opts LoaderOptions) *GameLoader {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &GameLoader{
		log:        logger.With("component", "loader"),
		clock:      opts.Clock,
		eng:        opts.Clock.Engine(),
		reg:        opts.Registry,
		persister:  opts.Persister,
		migrator:   opts.Migrator,
		maps:       opts.Maps,
		saves:      opts.Saves,
		pack:       opts.Resources,
		crashGuard: opts.CrashGuard,
	}
	opts.Clock.RegisterErrorListener(l)
	return l
}

// Crashed reports whether the simulation faulted within the crash guard
// of the current load. The game must not be auto-saved in that state.
func (l *GameLoader) Crashed() bool { return l.crashed }

// CurrentMapID returns the id of the loaded map.
func (l *GameLoader) CurrentMapID() string { return l.mapID }

// AddListener registers l.
func (l *GameLoader) AddListener(ll LoadListener) { l.listeners.Add(ll) }

// RemoveListener unregisters l.
func (l *GameLoader) RemoveListener(ll LoadListener) { l.listeners.Remove(ll) }

// LoadMap starts a fresh game on a map.
func (l *GameLoader) LoadMap(id string) error {
	if posted(l.clock, l.log, "load map", func() error { return l.LoadMap(id) }) {
		return nil
	}
	if err := l.initialize(id, nil); err != nil {
		return err
	}
	l.log.Info("map loaded", "map", id)
	return nil
}

// Restart starts the current map over.
func (l *GameLoader) Restart() error {
	if posted(l.clock, l.log, "restart", l.Restart) {
		return nil
	}
	id := l.mapID
	if id == "" {
		id = l.maps.DefaultMapID()
	}
	return l.LoadMap(id)
}

// LoadGame restores a save game from path, migrating older layouts. When
// the document cannot be used the default map is started and an error
// wrapping ErrCorruptSave is returned.
func (l *GameLoader) LoadGame(path string) error {
	if posted(l.clock, l.log, "load game", func() error { return l.LoadGame(path) }) {
		return nil
	}

	doc, err := readDocument(path)
	if err == nil {
		err = l.migrator.Migrate(doc)
	}
	var mapID string
	if err == nil {
		mapID, err = doc.String("mapId")
	}
	if err == nil {
		_, err = l.maps.Map(mapID)
	}
	if err != nil {
		return l.fallback(path, err)
	}

	if err := l.initialize(mapID, doc); err != nil {
		l.log.Warn("save game rejected", "path", path, "err", err)
		return err
	}
	l.log.Info("game loaded", "path", path, "map", mapID)
	return nil
}

func (l *GameLoader) fallback(path string, cause error) error {
	l.log.Warn("save game unusable, starting default map", "path", path, "err", cause)
	if err := l.initialize(l.maps.DefaultMapID(), nil); err != nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCorruptSave, cause)
}

// AutoLoadGame resumes the auto-save, or starts the default map when
// there is none.
func (l *GameLoader) AutoLoadGame() error {
	if posted(l.clock, l.log, "auto-load", l.AutoLoadGame) {
		return nil
	}
	if l.saves != nil && l.saves.HasAutoSave() {
		return l.LoadGame(l.saves.AutoSavePath())
	}
	return l.LoadMap(l.maps.DefaultMapID())
}

func readDocument(path string) (*kvstore.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return kvstore.FromStream(f)
}

// initialize clears the engine and sets up mapID from doc, or from the
// map's defaults when doc is nil. A document that fails to read leaves a
// fresh game on the same map.
func (l *GameLoader) initialize(mapID string, doc *kvstore.Store) error {
	gm, err := l.maps.Load(mapID)
	if err != nil {
		return err
	}
	waves, err := l.waveInfos()
	if err != nil {
		return err
	}

	l.eng.Clear()
	l.eng.SetGameMap(gm)
	l.eng.SetWaveInfos(waves)
	l.mapID = mapID
	l.crashed = false

	var readErr error
	if doc != nil {
		if readErr = l.persister.ReadState(doc); readErr != nil {
			l.eng.Clear()
		}
	}
	if doc == nil || readErr != nil {
		l.persister.ResetState()
		if err := l.placePlateaus(gm); err != nil {
			return err
		}
	}

	for _, ll := range l.listeners.Snapshot() {
		ll.GameLoaded()
	}
	if readErr != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSave, readErr)
	}
	return nil
}

func (l *GameLoader) waveInfos() ([]engine.WaveInfo, error) {
	if l.waves != nil {
		return l.waves, nil
	}
	doc, err := kvstore.FromResources(l.pack, resources.WavesID)
	if err != nil {
		return nil, err
	}
	waves, err := engine.ParseWaveInfos(doc)
	if err != nil {
		return nil, err
	}
	l.waves = waves
	return waves, nil
}

func (l *GameLoader) placePlateaus(gm *engine.GameMap) error {
	for _, info := range gm.Plateaus {
		ent, err := l.reg.Create(info.Kind)
		if err != nil {
			return fmt.Errorf("map %s: %w", l.mapID, err)
		}
		ent.SetPosition(info.Position)
		l.eng.Add(ent)
	}
	return nil
}

// Error deletes the auto-save when the simulation faults within the crash
// guard of a load, so a broken save is not resumed over and over.
func (l *GameLoader) Error(err error, stepsSinceLoad int) {
	l.log.Error("simulation fault", "steps", stepsSinceLoad, "err", err)
	if stepsSinceLoad >= l.crashGuard {
		return
	}
	l.crashed = true
	if l.saves == nil {
		return
	}
	if derr := l.saves.DeleteAutoSave(); derr != nil {
		l.log.Error("delete auto-save", "err", derr)
		return
	}
	l.log.Warn("auto-save deleted after early fault", "steps", stepsSinceLoad)
}

// ResetState does nothing; the map id is set by the load itself.
func (l *GameLoader) ResetState() {}

// WriteState stores the map id.
func (l *GameLoader) WriteState(doc *kvstore.Store) {
	doc.PutString("mapId", l.mapID)
}

// ReadState does nothing; LoadGame reads the map id before the other
// persisters run.
func (l *GameLoader) ReadState(*kvstore.Store) error { return nil }
