package engine

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// ErrBadMap is returned when a map document is structurally invalid.
var ErrBadMap = errors.New("engine: invalid map document")

// PlateauInfo places one plateau entity on the map.
type PlateauInfo struct {
	Kind     string
	Position core.Vec2
}

// MapPath is an ordered list of waypoints enemies walk along.
type MapPath struct {
	Waypoints []core.Vec2
}

// Length returns the total length of the path.
func (p MapPath) Length() float64 {
	var l float64
	for i := 1; i < len(p.Waypoints); i++ {
		l += p.Waypoints[i-1].DistanceTo(p.Waypoints[i])
	}
	return l
}

// GameMap is the static description of a level. It is parsed once per load
// and never mutated afterwards.
type GameMap struct {
	Title    string
	Width    int
	Height   int
	Plateaus []PlateauInfo
	Paths    []MapPath
}

// NewGameMap parses a map document:
//
//	title: Original
//	width: 10
//	height: 15
//	plateaus: [{kind: basicPlateau, x: 1, y: 2}, ...]
//	paths: [{waypoints: [{x: 0, y: 5}, ...]}, ...]
func NewGameMap(doc *kvstore.Store) (*GameMap, error) {
	m := &GameMap{Title: doc.StringOr("title", "")}

	var err error
	if m.Width, err = positive(doc, "width"); err != nil {
		return nil, err
	}
	if m.Height, err = positive(doc, "height"); err != nil {
		return nil, err
	}

	plateaus, err := doc.StoreList("plateaus")
	if err != nil && !errors.Is(err, kvstore.ErrMissingKey) {
		return nil, fmt.Errorf("%w: %w", ErrBadMap, err)
	}
	for i, p := range plateaus {
		kind, err := p.String("kind")
		if err != nil {
			return nil, fmt.Errorf("%w: plateau %d: %w", ErrBadMap, i, err)
		}
		pos, err := p.XY()
		if err != nil {
			return nil, fmt.Errorf("%w: plateau %d: %w", ErrBadMap, i, err)
		}
		m.Plateaus = append(m.Plateaus, PlateauInfo{Kind: kind, Position: pos})
	}

	paths, err := doc.StoreList("paths")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMap, err)
	}
	for i, p := range paths {
		points, err := p.StoreList("waypoints")
		if err != nil {
			return nil, fmt.Errorf("%w: path %d: %w", ErrBadMap, i, err)
		}
		if len(points) < 2 {
			return nil, fmt.Errorf("%w: path %d has %d waypoints", ErrBadMap, i, len(points))
		}
		var path MapPath
		for _, wp := range points {
			v, err := wp.XY()
			if err != nil {
				return nil, fmt.Errorf("%w: path %d: %w", ErrBadMap, i, err)
			}
			path.Waypoints = append(path.Waypoints, v)
		}
		m.Paths = append(m.Paths, path)
	}
	return m, nil
}

// Path returns the path with the given index.
func (m *GameMap) Path(i int) (MapPath, bool) {
	if i < 0 || i >= len(m.Paths) {
		return MapPath{}, false
	}
	return m.Paths[i], true
}

// Bounds returns the playable area.
func (m *GameMap) Bounds() core.Rect {
	return core.NewRect(0, 0, m.Width, m.Height)
}

func positive(doc *kvstore.Store, key string) (int, error) {
	v, err := doc.Int(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadMap, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %d", ErrBadMap, key, v)
	}
	return int(v), nil
}
