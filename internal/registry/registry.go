// Package registry maps entity kind names to factories. The kind name is
// also the tag written into save games and static map documents, so a
// registered name is part of the persisted format.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
)

var (
	// ErrDuplicateKind is returned when a kind is registered twice.
	ErrDuplicateKind = errors.New("registry: kind already registered")
	// ErrUnknownKind is returned for kinds without a factory.
	ErrUnknownKind = errors.New("registry: unknown kind")
)

// EntityInfo contains metadata about a registered kind. It is available
// without constructing an entity (shop listings, legends).
type EntityInfo struct {
	Kind        string
	Title       string
	Type        engine.EntityType
	Glyph       rune
	Color       core.Color
	Description string
	// Value is the purchase price for towers and the reward for enemies.
	Value int
}

// Factory creates a new pending entity bound to the given engine.
type Factory func(e *engine.Engine) engine.Entity

type entry struct {
	info    EntityInfo
	factory Factory
}

// Registry holds the factories of one game instance.
type Registry struct {
	engine *engine.Engine

	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty registry whose entities live in e.
func New(e *engine.Engine) *Registry {
	return &Registry{
		engine:  e,
		entries: make(map[string]entry),
	}
}

// Register adds a factory for kind. info.Kind is set to kind.
func (r *Registry) Register(kind string, info EntityInfo, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[kind]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKind, kind)
	}
	info.Kind = kind
	r.entries[kind] = entry{info: info, factory: f}
	return nil
}

// MustRegister is Register for startup wiring. Panics on a duplicate kind.
func (r *Registry) MustRegister(kind string, info EntityInfo, f Factory) {
	if err := r.Register(kind, info, f); err != nil {
		panic(err)
	}
}

// Create instantiates a new pending entity of the given kind. The caller
// adds it to the engine.
func (r *Registry) Create(kind string) (engine.Entity, error) {
	r.mu.RLock()
	e, ok := r.entries[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return e.factory(r.engine), nil
}

// Info returns the metadata of a kind.
func (r *Registry) Info(kind string) (EntityInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[kind]
	if !ok {
		return EntityInfo{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return e.info, nil
}

// List returns information about all registered kinds, sorted by kind.
func (r *Registry) List() []EntityInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EntityInfo, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// ListByType returns the kinds of one entity type, sorted by kind.
func (r *Registry) ListByType(t engine.EntityType) []EntityInfo {
	var result []EntityInfo
	for _, info := range r.List() {
		if info.Type == t {
			result = append(result, info)
		}
	}
	return result
}

// Exists checks if a kind is registered.
func (r *Registry) Exists(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[kind]
	return ok
}

// Engine returns the engine new entities are bound to.
func (r *Registry) Engine() *engine.Engine {
	return r.engine
}
