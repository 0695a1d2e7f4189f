package game

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/resources"
)

// ErrUnknownMap is returned for map ids missing from the resource pack.
var ErrUnknownMap = errors.New("game: unknown map")

// MapInfo describes one playable map.
type MapInfo struct {
	ID    string
	Title string
	Order int
}

// MapRepository is the catalog of maps in a resource pack.
type MapRepository struct {
	pack      fs.FS
	maps      []MapInfo
	defaultID string
}

// NewMapRepository reads the title of every map document in pack.
// defaultID falls back to the first map when it is not in the pack.
func NewMapRepository(pack fs.FS, defaultID string) (*MapRepository, error) {
	files, err := fs.Glob(pack, path.Join(resources.MapsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("game: listing maps: %w", err)
	}

	r := &MapRepository{pack: pack}
	for _, f := range files {
		doc, err := kvstore.FromResources(pack, f)
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(path.Base(f), ".yaml")
		r.maps = append(r.maps, MapInfo{
			ID:    id,
			Title: doc.StringOr("title", id),
			Order: doc.IntOr("order", 1<<20),
		})
	}
	if len(r.maps) == 0 {
		return nil, fmt.Errorf("game: no maps in resource pack")
	}

	sort.Slice(r.maps, func(i, j int) bool {
		if r.maps[i].Order != r.maps[j].Order {
			return r.maps[i].Order < r.maps[j].Order
		}
		return r.maps[i].ID < r.maps[j].ID
	})

	r.defaultID = r.maps[0].ID
	if _, err := r.Map(defaultID); err == nil {
		r.defaultID = defaultID
	}
	return r, nil
}

// Maps returns every map in display order.
func (r *MapRepository) Maps() []MapInfo {
	return append([]MapInfo(nil), r.maps...)
}

// Map returns the descriptor of a map.
func (r *MapRepository) Map(id string) (MapInfo, error) {
	for _, m := range r.maps {
		if m.ID == id {
			return m, nil
		}
	}
	return MapInfo{}, fmt.Errorf("%w: %q", ErrUnknownMap, id)
}

// DefaultMapID returns the map started when nothing else is requested.
func (r *MapRepository) DefaultMapID() string {
	return r.defaultID
}

// Load parses the static document of a map.
func (r *MapRepository) Load(id string) (*engine.GameMap, error) {
	if _, err := r.Map(id); err != nil {
		return nil, err
	}
	doc, err := kvstore.FromResources(r.pack, path.Join(resources.MapsDir, id))
	if err != nil {
		return nil, err
	}
	m, err := engine.NewGameMap(doc)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", id, err)
	}
	return m, nil
}
