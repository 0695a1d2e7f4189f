package entities

import (
	"github.com/vovakirdan/tui-defense/internal/engine"
)

var canonProperties = TowerProperties{
	Value:         200,
	Damage:        120,
	Range:         2.5,
	Reload:        1.0,
	MaxLevel:      10,
	EnhanceBase:   1.2,
	EnhanceCost:   60,
	EnhanceDamage: 40,
	EnhanceRange:  0.1,
	EnhanceReload: 0.05,
}

// Canon fires a shell at its target whenever it is reloaded.
type Canon struct {
	Tower
}

// NewCanon creates a pending canon.
func NewCanon(e *engine.Engine) *Canon {
	return &Canon{Tower: newTower(e, canonProperties)}
}

func (c *Canon) Kind() string { return KindCanon }

func (c *Canon) Tick() {
	c.Tower.Tick()

	target, ok := c.Target()
	if !ok || !c.IsReloaded() {
		return
	}
	c.Engine().Add(NewShot(c.Engine(), KindCanonShot, c.ID(), c.Position(), target, c.Damage()))
	c.fired()
}
