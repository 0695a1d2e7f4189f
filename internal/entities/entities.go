// Package entities implements the concrete entity kinds of the game and
// registers them with a registry.
package entities

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/registry"
)

// Kind names. They are written into save games and map documents.
const (
	KindPlateau       = "basicPlateau"
	KindCanon         = "canon"
	KindMakotoDolphin = "makotoDolphin"
	KindDolphinSummon = "dolphinSummon"
	KindSoldier       = "soldier"
	KindBlob          = "blob"
	KindCanonShot     = "canonShot"
	KindWaterShot     = "waterShot"
)

// Stateful is implemented by entities that persist fields beyond kind and
// position.
type Stateful interface {
	WriteState(doc *kvstore.Store)
	ReadState(doc *kvstore.Store) error
}

// Register adds every entity kind to r.
func Register(r *registry.Registry) {
	r.MustRegister(KindPlateau, registry.EntityInfo{
		Title:       "Plateau",
		Type:        engine.TypePlateau,
		Glyph:       '□',
		Color:       core.ColorGray,
		Description: "Building site for one tower",
	}, func(e *engine.Engine) engine.Entity { return NewPlateau(e) })

	r.MustRegister(KindCanon, registry.EntityInfo{
		Title:       "Canon",
		Type:        engine.TypeTower,
		Glyph:       'C',
		Color:       core.ColorYellow,
		Description: "Fires shells at the nearest enemy",
		Value:       canonProperties.Value,
	}, func(e *engine.Engine) engine.Entity { return NewCanon(e) })

	r.MustRegister(KindMakotoDolphin, registry.EntityInfo{
		Title:       "Makoto Dolphin",
		Type:        engine.TypeTower,
		Glyph:       'D',
		Color:       core.ColorCyan,
		Description: "Sprays water and summons dolphins that hunt nearby enemies",
		Value:       dolphinProperties.Value,
	}, func(e *engine.Engine) engine.Entity { return NewMakotoDolphin(e) })

	r.MustRegister(KindDolphinSummon, registry.EntityInfo{
		Title: "Dolphin",
		Type:  engine.TypeEffect,
		Glyph: '~',
		Color: core.ColorBlue,
	}, func(e *engine.Engine) engine.Entity { return NewDolphinSummon(e, 0, core.Vec2{}, 0) })

	r.MustRegister(KindSoldier, registry.EntityInfo{
		Title:       "Soldier",
		Type:        engine.TypeEnemy,
		Glyph:       's',
		Color:       core.ColorRed,
		Description: "Fast and fragile",
		Value:       soldierProperties.Reward,
	}, func(e *engine.Engine) engine.Entity { return NewEnemy(e, KindSoldier, soldierProperties) })

	r.MustRegister(KindBlob, registry.EntityInfo{
		Title:       "Blob",
		Type:        engine.TypeEnemy,
		Glyph:       'B',
		Color:       core.ColorMagenta,
		Description: "Slow and tough",
		Value:       blobProperties.Reward,
	}, func(e *engine.Engine) engine.Entity { return NewEnemy(e, KindBlob, blobProperties) })

	r.MustRegister(KindCanonShot, registry.EntityInfo{
		Title: "Shell",
		Type:  engine.TypeShot,
		Glyph: '*',
		Color: core.ColorOrange,
	}, func(e *engine.Engine) engine.Entity { return newShot(e, KindCanonShot, canonShotSpeed) })

	r.MustRegister(KindWaterShot, registry.EntityInfo{
		Title: "Water",
		Type:  engine.TypeShot,
		Glyph: 'o',
		Color: core.ColorCyan,
	}, func(e *engine.Engine) engine.Entity { return newShot(e, KindWaterShot, waterShotSpeed) })
}
