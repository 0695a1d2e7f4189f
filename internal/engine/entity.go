package engine

import (
	"github.com/vovakirdan/tui-defense/internal/core"
)

// Entity is the capability every simulation object implements. The set of
// implementations is closed: only types embedding Base satisfy it, so the
// container can rely on the lifecycle bookkeeping Base carries.
type Entity interface {
	// Kind is the registry name; it is also the serialization tag.
	Kind() string
	// Type is the index category.
	Type() EntityType

	// Init runs once when the entity becomes live.
	Init()
	// Tick runs once per simulation step while live.
	Tick()
	// Clean runs once when the entity is removed.
	Clean()

	ID() EntityID
	Position() core.Vec2
	SetPosition(core.Vec2)
	Remove()
	State() State

	base() *Base
}

// RemovedListener is notified after an entity has been removed.
type RemovedListener interface {
	EntityRemoved(e Entity)
}

// RemovedFunc adapts a function to RemovedListener.
type RemovedFunc func(e Entity)

// EntityRemoved calls f(e).
func (f RemovedFunc) EntityRemoved(e Entity) { f(e) }

// Base carries identity, position and lifecycle state. Concrete entities
// embed it and override Init and Clean when they need to.
type Base struct {
	engine    *Engine
	id        EntityID
	pos       core.Vec2
	state     State
	flagged   bool
	listeners []RemovedListener
}

// NewBase binds a base to the engine the entity will live in.
func NewBase(e *Engine) Base {
	return Base{engine: e}
}

func (b *Base) base() *Base { return b }

// Engine returns the owning engine.
func (b *Base) Engine() *Engine { return b.engine }

// ID returns the identity assigned on Add, or zero while pending.
func (b *Base) ID() EntityID { return b.id }

// Position returns the map position.
func (b *Base) Position() core.Vec2 { return b.pos }

// SetPosition moves the entity.
func (b *Base) SetPosition(p core.Vec2) { b.pos = p }

// State returns the lifecycle state.
func (b *Base) State() State { return b.state }

// IsLive reports whether the entity is live and not flagged for removal.
func (b *Base) IsLive() bool { return b.state == StateLive && !b.flagged }

// Init is a no-op default.
func (b *Base) Init() {}

// Clean is a no-op default.
func (b *Base) Clean() {}

// Remove asks the owning engine to remove this entity. During a step the
// removal takes effect at the end of the step.
func (b *Base) Remove() {
	if b.engine != nil {
		b.engine.removeByID(b.id, b)
	}
}

// AddRemovedListener registers a listener for this instance only.
func (b *Base) AddRemovedListener(l RemovedListener) {
	b.listeners = append(b.listeners, l)
}

// DistanceTo returns the distance between the entity and a point.
func (b *Base) DistanceTo(p core.Vec2) float64 {
	return b.pos.DistanceTo(p)
}

// InRange returns a predicate selecting entities within r of center.
func InRange(center core.Vec2, r float64) func(Entity) bool {
	return func(e Entity) bool {
		return e.Position().DistanceTo(center) <= r
	}
}

// DistanceTo returns a metric measuring the distance of an entity to p.
func DistanceTo(p core.Vec2) func(Entity) float64 {
	return func(e Entity) float64 {
		return e.Position().DistanceTo(p)
	}
}

// OfKind returns a predicate selecting entities of the given kind.
func OfKind(kind string) func(Entity) bool {
	return func(e Entity) bool {
		return e.Kind() == kind
	}
}
