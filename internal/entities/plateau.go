package entities

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
)

// samePlace is the distance under which two positions are the same spot.
const samePlace = 1e-6

// Plateau is a building site. At most one tower occupies it.
type Plateau struct {
	engine.Base
	occupant engine.EntityID
}

// NewPlateau creates a pending plateau.
func NewPlateau(e *engine.Engine) *Plateau {
	return &Plateau{Base: engine.NewBase(e)}
}

func (p *Plateau) Kind() string            { return KindPlateau }
func (p *Plateau) Type() engine.EntityType { return engine.TypePlateau }
func (p *Plateau) Tick()                   {}

// Occupant returns the tower on this plateau, or zero.
func (p *Plateau) Occupant() engine.EntityID {
	return p.occupant
}

// IsFree reports whether a tower can be built here.
func (p *Plateau) IsFree() bool {
	return p.occupant == 0
}

func (p *Plateau) occupy(id engine.EntityID) {
	p.occupant = id
}

func (p *Plateau) release(id engine.EntityID) {
	if p.occupant == id {
		p.occupant = 0
	}
}

// PlateauAt returns the live plateau at pos.
func PlateauAt(eng *engine.Engine, pos core.Vec2) (*Plateau, bool) {
	ent, ok := eng.EntitiesByType(engine.TypePlateau).
		Filter(engine.InRange(pos, samePlace)).
		First()
	if !ok {
		return nil, false
	}
	p, ok := ent.(*Plateau)
	return p, ok
}
