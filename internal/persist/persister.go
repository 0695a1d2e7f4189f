// Package persist composes the save-game document from the stateful
// components of a game and migrates documents written by older versions.
package persist

import (
	"fmt"

	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// CurrentVersion is the layout version written by GamePersister.
const CurrentVersion = 3

// VersionKey holds the layout version of a save document.
const VersionKey = "version"

// Persister is implemented by every stateful component of a game.
//
// WriteState adds the component's keys to the document, ReadState restores
// the component from a document of the current layout and ResetState
// establishes the state of a freshly created component.
type Persister interface {
	ResetState()
	WriteState(doc *kvstore.Store)
	ReadState(doc *kvstore.Store) error
}

// GamePersister runs every registered persister in registration order.
// All methods must be called on the simulation goroutine.
type GamePersister struct {
	persisters []Persister
}

// NewGamePersister creates an empty composition.
func NewGamePersister() *GamePersister {
	return &GamePersister{}
}

// Register appends a persister.
func (g *GamePersister) Register(p Persister) {
	g.persisters = append(g.persisters, p)
}

// ResetState resets every component.
func (g *GamePersister) ResetState() {
	for _, p := range g.persisters {
		p.ResetState()
	}
}

// WriteState builds a complete save document.
func (g *GamePersister) WriteState() *kvstore.Store {
	doc := kvstore.New()
	doc.PutInt(VersionKey, CurrentVersion)
	for _, p := range g.persisters {
		p.WriteState(doc)
	}
	return doc
}

// ReadState restores every component from doc, stopping at the first error.
func (g *GamePersister) ReadState(doc *kvstore.Store) error {
	for i, p := range g.persisters {
		if err := p.ReadState(doc); err != nil {
			return fmt.Errorf("persist: component %d (%T): %w", i, p, err)
		}
	}
	return nil
}
