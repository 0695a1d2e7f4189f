package persist

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// ErrUnknownVersion is returned when a document matches no known layout.
var ErrUnknownVersion = errors.New("persist: unrecognized save game version")

// migration upgrades a document from version from to from+1.
type migration struct {
	from  int
	apply func(doc *kvstore.Store) error
}

// Migrator upgrades save documents to CurrentVersion.
type Migrator struct {
	log        *log.Logger
	migrations []migration
}

// NewMigrator creates a migrator knowing every historical layout.
func NewMigrator(logger *log.Logger) *Migrator {
	m := &Migrator{}
	if logger != nil {
		m.log = logger.With("component", "migrator")
	}
	m.migrations = []migration{
		{from: 1, apply: migrateV1},
		{from: 2, apply: migrateV2},
	}
	return m
}

// DetectVersion returns the layout version of doc, or 0 if unrecognized.
// Documents written since version 3 carry an explicit version; older ones
// are recognized by the keys their layout introduced.
func DetectVersion(doc *kvstore.Store) int {
	if doc.Has(VersionKey) {
		v, err := doc.Int(VersionKey)
		if err != nil || v < 1 {
			return 0
		}
		return v
	}
	if !doc.Has("mapId") {
		return 0
	}
	if _, err := doc.Store("scoreBoard"); err == nil {
		return 2
	}
	if doc.Has("lives") && doc.Has("credits") {
		return 1
	}
	return 0
}

// Migrate upgrades doc in place to CurrentVersion. On failure doc is left
// unmodified and the error wraps ErrUnknownVersion.
func (m *Migrator) Migrate(doc *kvstore.Store) error {
	version := DetectVersion(doc)
	if version == 0 || version > CurrentVersion {
		return fmt.Errorf("%w: version %d", ErrUnknownVersion, version)
	}
	if version == CurrentVersion {
		return nil
	}

	work := doc.Clone()
	for _, mig := range m.migrations {
		if mig.from < version {
			continue
		}
		if err := mig.apply(work); err != nil {
			return fmt.Errorf("%w: migrating from version %d: %w", ErrUnknownVersion, mig.from, err)
		}
		if m.log != nil {
			m.log.Info("migrated save game", "from", mig.from, "to", mig.from+1)
		}
	}
	work.PutInt(VersionKey, CurrentVersion)
	doc.Replace(work)
	return nil
}

// migrateV1 moves the flat score keys into the scoreBoard sub-document and
// renames the entity tag from name to kind.
func migrateV1(doc *kvstore.Store) error {
	board := kvstore.New()
	for _, key := range []string{"credits", "lives", "score", "waveBonus", "earlyBonus"} {
		if !doc.Has(key) {
			continue
		}
		v, err := doc.Int(key)
		if err != nil {
			return err
		}
		board.PutInt(key, v)
		doc.Delete(key)
	}
	doc.PutStore("scoreBoard", board)

	if !doc.Has("entities") {
		return nil
	}
	entities, err := doc.StoreList("entities")
	if err != nil {
		return err
	}
	for i, ent := range entities {
		if ent.Has("kind") {
			continue
		}
		if err := ent.Rename("name", "kind"); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
	}
	return nil
}

// migrateV2 moves wave progress into waveManager and the final score into
// gameState.
func migrateV2(doc *kvstore.Store) error {
	waves, err := subStore(doc, "waveManager")
	if err != nil {
		return err
	}
	if doc.Has("waveNumber") {
		v, err := doc.Int("waveNumber")
		if err != nil {
			return err
		}
		waves.PutInt("waveNumber", v)
		doc.Delete("waveNumber")
	}
	if doc.Has("nextWaveReady") {
		v, err := doc.Bool("nextWaveReady")
		if err != nil {
			return err
		}
		waves.PutBool("nextWaveReady", v)
		doc.Delete("nextWaveReady")
	}
	if doc.Has("activeWaves") {
		list, err := doc.StoreList("activeWaves")
		if err != nil {
			return err
		}
		waves.PutStoreList("activeWaves", list)
		doc.Delete("activeWaves")
	}

	state, err := subStore(doc, "gameState")
	if err != nil {
		return err
	}
	if doc.Has("finalScore") {
		v, err := doc.Int("finalScore")
		if err != nil {
			return err
		}
		state.PutInt("finalScore", v)
		doc.Delete("finalScore")
	}
	if !state.Has("started") {
		state.PutBool("started", waves.IntOr("waveNumber", 0) > 0)
	}
	return nil
}

// subStore returns the sub-document at key, creating it when absent.
func subStore(doc *kvstore.Store, key string) (*kvstore.Store, error) {
	if !doc.Has(key) {
		s := kvstore.New()
		doc.PutStore(key, s)
		return s, nil
	}
	return doc.Store(key)
}
