package entities

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
)

const (
	canonShotSpeed = 6.0
	waterShotSpeed = 4.0
)

// Shot flies to its target and damages it on arrival. Target and owner are
// held by id: a shot whose target is gone disappears.
type Shot struct {
	engine.Base

	kind   string
	speed  float64
	owner  engine.EntityID
	target engine.EntityID
	damage float64
}

func newShot(e *engine.Engine, kind string, speed float64) *Shot {
	return &Shot{Base: engine.NewBase(e), kind: kind, speed: speed}
}

// NewShot creates a pending shot of kind fired by owner from pos.
func NewShot(e *engine.Engine, kind string, owner engine.EntityID, pos core.Vec2, target *Enemy, damage float64) *Shot {
	speed := canonShotSpeed
	if kind == KindWaterShot {
		speed = waterShotSpeed
	}
	s := newShot(e, kind, speed)
	s.owner = owner
	s.target = target.ID()
	s.damage = damage
	s.SetPosition(pos)
	return s
}

func (s *Shot) Kind() string            { return s.kind }
func (s *Shot) Type() engine.EntityType { return engine.TypeShot }

// Target returns the id of the targeted enemy.
func (s *Shot) Target() engine.EntityID { return s.target }

func (s *Shot) Tick() {
	if !s.IsLive() {
		return
	}
	target, ok := liveEnemy(s.Engine(), s.target)
	if !ok {
		s.Remove()
		return
	}

	pos, hit := s.Position().MoveTowards(target.Position(), s.speed/engine.TargetFrameRate)
	s.SetPosition(pos)
	if !hit {
		return
	}

	target.Damage(s.damage)
	if owner, ok := s.Engine().Entity(s.owner); ok {
		if t, ok := owner.(TowerEntity); ok {
			t.TowerBase().ReportDamageInflicted(s.damage)
		}
	}
	s.Remove()
}
