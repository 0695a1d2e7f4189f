package game

import (
	"fmt"

	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/entities"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/registry"
)

// persistedTypes are written in this order so towers find their plateau
// when they are read back. Shots and summons are transient.
var persistedTypes = []engine.EntityType{
	engine.TypePlateau,
	engine.TypeTower,
	engine.TypeEnemy,
}

// EntityPersister stores the persistent entities of a game as the
// "entities" list. Each element holds kind, x and y plus the entity's own
// fields.
type EntityPersister struct {
	eng *engine.Engine
	reg *registry.Registry
}

// NewEntityPersister creates a persister for the entities of reg's engine.
func NewEntityPersister(reg *registry.Registry) *EntityPersister {
	return &EntityPersister{eng: reg.Engine(), reg: reg}
}

// ResetState does nothing: loaders clear the engine themselves.
func (p *EntityPersister) ResetState() {}

// WriteState appends every persistent entity.
func (p *EntityPersister) WriteState(doc *kvstore.Store) {
	var list []*kvstore.Store
	for _, t := range persistedTypes {
		for ent := range p.eng.EntitiesByType(t).All() {
			list = append(list, p.write(ent))
		}
	}
	doc.PutStoreList("entities", list)
}

func (p *EntityPersister) write(ent engine.Entity) *kvstore.Store {
	s := kvstore.New()
	s.PutString("kind", ent.Kind())
	s.PutXY(ent.Position())
	if st, ok := ent.(entities.Stateful); ok {
		st.WriteState(s)
	}
	return s
}

// ReadState creates and adds the listed entities. A missing list loads
// nothing; an unknown kind fails the load.
func (p *EntityPersister) ReadState(doc *kvstore.Store) error {
	if !doc.Has("entities") {
		return nil
	}
	list, err := doc.StoreList("entities")
	if err != nil {
		return err
	}
	for i, s := range list {
		ent, err := p.read(s)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		p.eng.Add(ent)
	}
	return nil
}

func (p *EntityPersister) read(s *kvstore.Store) (engine.Entity, error) {
	kind, err := s.String("kind")
	if err != nil {
		return nil, err
	}
	ent, err := p.reg.Create(kind)
	if err != nil {
		return nil, err
	}
	pos, err := s.XY()
	if err != nil {
		return nil, err
	}
	ent.SetPosition(pos)
	if st, ok := ent.(entities.Stateful); ok {
		if err := st.ReadState(s); err != nil {
			return nil, err
		}
	}
	return ent, nil
}
