package tui

import (
	"math"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/game"
)

// Terminal cells are about twice as tall as wide; one map unit gets
// twice as many columns as rows.
const aspect = 2

var pathCell = core.Cell{Rune: '·', Color: core.ColorGray}

// drawOrder lists entity types from bottom to top.
var drawOrder = []engine.EntityType{
	engine.TypeDecoration,
	engine.TypePlateau,
	engine.TypeTower,
	engine.TypeEffect,
	engine.TypeEnemy,
	engine.TypeShot,
}

// mapView projects map coordinates onto screen cells inside a border.
type mapView struct {
	sx, sy float64
	cols   int
	rows   int
}

// newMapView fits a map of the snapshot's size into width x height cells.
func newMapView(snap *game.Snapshot, width, height int) mapView {
	mw, mh := max(snap.Width, 1), max(snap.Height, 1)
	sy := math.Floor(float64(height-3) / float64(mh))
	sy = math.Min(sy, math.Floor(float64(width-3)/float64(mw*aspect)))
	sy = math.Max(sy, 1)
	sx := sy * aspect
	return mapView{
		sx:   sx,
		sy:   sy,
		cols: int(float64(mw)*sx) + 3,
		rows: int(float64(mh)*sy) + 3,
	}
}

func (v mapView) cell(p core.Vec2) (int, int) {
	return 1 + int(math.Round(p.X*v.sx)), 1 + int(math.Round(p.Y*v.sy))
}

// drawMap renders the snapshot into s. cursor is the selected plateau.
func drawMap(s *core.Screen, snap *game.Snapshot, v mapView, cursor *game.EntityView) {
	s.Clear()
	s.DrawBox(core.NewRect(0, 0, v.cols, v.rows), core.ColorGray)

	for _, path := range snap.Paths {
		for i := 1; i < len(path.Waypoints); i++ {
			x0, y0 := v.cell(path.Waypoints[i-1])
			x1, y1 := v.cell(path.Waypoints[i])
			s.DrawLine(x0, y0, x1, y1, pathCell)
		}
	}

	for _, t := range drawOrder {
		for _, e := range snap.Entities {
			if e.Type != t {
				continue
			}
			x, y := v.cell(e.Position)
			s.SetCell(x, y, core.Cell{Rune: e.Glyph, Color: entityColor(e)})
		}
	}

	if cursor != nil {
		x, y := v.cell(cursor.Position)
		s.SetCell(x-1, y, core.Cell{Rune: '[', Color: core.ColorWhite})
		s.SetCell(x+1, y, core.Cell{Rune: ']', Color: core.ColorWhite})
	}
}

// entityColor dims enemies that are almost dead.
func entityColor(e game.EntityView) core.Color {
	if e.Type == engine.TypeEnemy && e.Health > 0 && e.Health < 0.25 {
		return core.ColorOrange
	}
	return e.Color
}

// moveCursor picks the plateau closest to cur in direction dir. Plateaus
// off to the side count extra. The cursor stays when nothing lies that way.
func moveCursor(plateaus []game.EntityView, cur int, dir core.Vec2) int {
	if cur < 0 || cur >= len(plateaus) {
		return 0
	}
	from := plateaus[cur].Position
	best, bestScore := cur, math.Inf(1)
	for i, p := range plateaus {
		if i == cur {
			continue
		}
		d := p.Position.Sub(from)
		along := d.X*dir.X + d.Y*dir.Y
		if along <= 1e-9 {
			continue
		}
		across := math.Abs(d.X*dir.Y - d.Y*dir.X)
		if score := along + 2*across; score < bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
