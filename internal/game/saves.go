package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-defense/internal/config"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

const (
	autoSaveFile = "autosave.yaml"
	stateFile    = "state.yaml"
	infoFile     = "info.yaml"
)

// ErrUnknownSave is returned for slot ids that do not exist.
var ErrUnknownSave = errors.New("game: unknown save game")

// SaveGameInfo describes a save slot.
type SaveGameInfo struct {
	ID       string    `yaml:"-"`
	MapID    string    `yaml:"map_id"`
	MapTitle string    `yaml:"map_title"`
	Score    int       `yaml:"score"`
	Wave     int       `yaml:"wave"`
	Lives    int       `yaml:"lives"`
	SavedAt  time.Time `yaml:"saved_at"`
}

// SaveGameRepository keeps save slots under a directory. Each slot is a
// directory named by a UUID holding the state document and a descriptor.
type SaveGameRepository struct {
	dir string
}

// NewSaveGameRepository opens dir, creating it when missing.
func NewSaveGameRepository(dir string) (*SaveGameRepository, error) {
	expanded, err := config.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("game: create save directory: %w", err)
	}
	return &SaveGameRepository{dir: expanded}, nil
}

// Dir returns the save directory.
func (r *SaveGameRepository) Dir() string { return r.dir }

// AutoSavePath returns the location of the auto-save document.
func (r *SaveGameRepository) AutoSavePath() string {
	return filepath.Join(r.dir, autoSaveFile)
}

// HasAutoSave reports whether an auto-save exists.
func (r *SaveGameRepository) HasAutoSave() bool {
	_, err := os.Stat(r.AutoSavePath())
	return err == nil
}

// WriteAutoSave replaces the auto-save with doc.
func (r *SaveGameRepository) WriteAutoSave(doc *kvstore.Store) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return writeFileAtomic(r.AutoSavePath(), data)
}

// DeleteAutoSave removes the auto-save. A missing file is not an error.
func (r *SaveGameRepository) DeleteAutoSave() error {
	err := os.Remove(r.AutoSavePath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("game: delete auto-save: %w", err)
	}
	return nil
}

// Save writes doc into a new slot and returns its descriptor.
func (r *SaveGameRepository) Save(doc *kvstore.Store, info SaveGameInfo) (SaveGameInfo, error) {
	info.ID = uuid.NewString()
	if info.SavedAt.IsZero() {
		info.SavedAt = time.Now()
	}

	slot := filepath.Join(r.dir, info.ID)
	if err := os.MkdirAll(slot, 0o755); err != nil {
		return SaveGameInfo{}, fmt.Errorf("game: create save slot: %w", err)
	}

	state, err := doc.Marshal()
	if err != nil {
		return SaveGameInfo{}, err
	}
	if err := writeFileAtomic(filepath.Join(slot, stateFile), state); err != nil {
		return SaveGameInfo{}, err
	}
	desc, err := yaml.Marshal(&info)
	if err != nil {
		return SaveGameInfo{}, fmt.Errorf("game: encode save info: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(slot, infoFile), desc); err != nil {
		return SaveGameInfo{}, err
	}
	return info, nil
}

// List returns every readable slot, newest first.
func (r *SaveGameRepository) List() ([]SaveGameInfo, error) {
	dirents, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("game: list saves: %w", err)
	}
	var out []SaveGameInfo
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		info, err := r.Get(d.Name())
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

// Get reads the descriptor of a slot.
func (r *SaveGameRepository) Get(id string) (SaveGameInfo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SaveGameInfo{}, fmt.Errorf("%w: %q", ErrUnknownSave, id)
	}
	data, err := os.ReadFile(filepath.Join(r.dir, id, infoFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SaveGameInfo{}, fmt.Errorf("%w: %q", ErrUnknownSave, id)
		}
		return SaveGameInfo{}, err
	}
	var info SaveGameInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return SaveGameInfo{}, fmt.Errorf("game: save info %s: %w", id, err)
	}
	info.ID = id
	return info, nil
}

// StatePath returns the state document of a slot.
func (r *SaveGameRepository) StatePath(id string) (string, error) {
	if _, err := r.Get(id); err != nil {
		return "", err
	}
	return filepath.Join(r.dir, id, stateFile), nil
}

// Delete removes a slot.
func (r *SaveGameRepository) Delete(id string) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(r.dir, id)); err != nil {
		return fmt.Errorf("game: delete save %s: %w", id, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("game: write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("game: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("game: write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("game: write %s: %w", filepath.Base(path), err)
	}
	return nil
}
