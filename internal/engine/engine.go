package engine

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/stream"
)

// Engine is the entity lifecycle container. It is not safe for concurrent
// use: every method must run on the simulation goroutine (see Clock).
type Engine struct {
	log *log.Logger

	nextID   EntityID
	entities []Entity
	byType   [typeCount][]Entity
	byID     map[EntityID]Entity

	staged  []Entity
	flagged []Entity
	inStep  bool
	steps   int

	tickers []TickListener
	rng     *rand.Rand

	gameMap *GameMap
	waves   []WaveInfo
}

// TickListener is ticked once per step after every entity. Unlike
// entities, tick listeners survive Clear.
type TickListener interface {
	Tick()
}

// New creates an empty engine.
func New(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		log:  logger.With("component", "engine"),
		byID: make(map[EntityID]Entity, 256),
		rng:  rand.New(rand.NewPCG(1, 1)),
	}
}

// Seed reseeds the random source used by entities.
func (e *Engine) Seed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Rand returns the random source. Only the simulation goroutine may use it.
func (e *Engine) Rand() *rand.Rand {
	return e.rng
}

// AddTickListener registers l. During a step it is first ticked in the
// next step.
func (e *Engine) AddTickListener(l TickListener) {
	e.tickers = append(slices.Clip(e.tickers), l)
}

// RemoveTickListener unregisters l.
func (e *Engine) RemoveTickListener(l TickListener) {
	i := slices.Index(e.tickers, l)
	if i < 0 {
		return
	}
	e.tickers = slices.Concat(e.tickers[:i], e.tickers[i+1:])
}

// Add registers an entity. Outside a step it becomes live immediately and
// its Init hook runs; during a step it is staged and becomes live at the
// start of the next step. Adding an entity twice is a contract violation.
func (e *Engine) Add(ent Entity) {
	b := ent.base()
	if b.state != StatePending || b.id != 0 {
		panic(fmt.Sprintf("engine: %s entity %d added in state %s", ent.Kind(), b.id, b.state))
	}
	if b.engine == nil {
		b.engine = e
	}
	e.nextID++
	b.id = e.nextID

	if e.inStep {
		e.staged = append(e.staged, ent)
		return
	}
	e.activate(ent)
}

func (e *Engine) activate(ent Entity) {
	b := ent.base()
	b.state = StateLive
	e.entities = append(e.entities, ent)
	e.byType[ent.Type()] = append(e.byType[ent.Type()], ent)
	e.byID[b.id] = ent
	ent.Init()
}

// Remove removes an entity. Outside a step it is removed at once; during a
// step it stays tick- and query-eligible until the step completes.
func (e *Engine) Remove(ent Entity) {
	e.removeByID(ent.ID(), ent.base())
}

func (e *Engine) removeByID(id EntityID, b *Base) {
	switch b.state {
	case StateRemoved:
		return
	case StatePending:
		if id == 0 {
			b.state = StateRemoved
			return
		}
		e.staged = slices.DeleteFunc(e.staged, func(s Entity) bool { return s.ID() == id })
		b.state = StateRemoved
		return
	}

	ent, ok := e.byID[id]
	if !ok {
		return
	}
	if e.inStep {
		if !b.flagged {
			b.flagged = true
			e.flagged = append(e.flagged, ent)
		}
		return
	}
	e.deactivate([]Entity{ent})
}

// deactivate drops entities from every index and runs their cleanup hooks.
// Index slices are rebuilt rather than edited in place so streams handed
// out earlier keep a consistent view.
func (e *Engine) deactivate(batch []Entity) {
	gone := make(map[EntityID]struct{}, len(batch))
	for _, ent := range batch {
		ent.base().state = StateRemoved
		gone[ent.ID()] = struct{}{}
		delete(e.byID, ent.ID())
	}
	keep := func(s []Entity) []Entity {
		out := make([]Entity, 0, len(s))
		for _, ent := range s {
			if _, ok := gone[ent.ID()]; !ok {
				out = append(out, ent)
			}
		}
		return out
	}
	e.entities = keep(e.entities)
	for t := range e.byType {
		e.byType[t] = keep(e.byType[t])
	}

	for _, ent := range batch {
		e.finish(ent)
	}
}

func (e *Engine) finish(ent Entity) {
	b := ent.base()
	b.flagged = false
	ent.Clean()
	listeners := b.listeners
	b.listeners = nil
	for _, l := range listeners {
		l.EntityRemoved(ent)
	}
}

// Step advances the simulation by one tick: staged entities become live,
// every live entity ticks in the order it was added, then entities removed
// during the step are dropped. A panic in any hook is recovered and
// returned as a *FaultError.
func (e *Engine) Step() (err error) {
	e.inStep = true
	defer func() {
		e.inStep = false
		if r := recover(); r != nil {
			err = newFault(r, e.steps)
		}
	}()

	e.applyStaged()

	for _, ent := range e.entities {
		if ent.base().state != StateLive {
			continue
		}
		ent.Tick()
	}
	for _, l := range e.tickers {
		l.Tick()
	}

	e.flushRemovals()
	e.steps++
	return nil
}

func (e *Engine) applyStaged() {
	for len(e.staged) > 0 {
		batch := e.staged
		e.staged = nil
		for _, ent := range batch {
			if ent.base().state == StatePending {
				e.activate(ent)
			}
		}
	}
}

func (e *Engine) flushRemovals() {
	for len(e.flagged) > 0 {
		batch := e.flagged
		e.flagged = nil
		e.deactivate(batch)
	}
}

// Clear removes every entity, resets the per-type indices and the step
// counter. Used before a map or save game is loaded.
func (e *Engine) Clear() {
	all := e.entities
	staged := e.staged

	e.entities = nil
	for t := range e.byType {
		e.byType[t] = nil
	}
	e.byID = make(map[EntityID]Entity, 256)
	e.staged = nil
	e.flagged = nil
	e.steps = 0

	for _, ent := range staged {
		ent.base().state = StateRemoved
	}
	for _, ent := range all {
		ent.base().state = StateRemoved
	}
	for _, ent := range all {
		e.finish(ent)
	}
	e.log.Debug("cleared", "entities", len(all))
}

// StepsSinceLoad returns the number of completed steps since the last Clear.
func (e *Engine) StepsSinceLoad() int {
	return e.steps
}

// InStep reports whether a step is running.
func (e *Engine) InStep() bool {
	return e.inStep
}

// EntitiesByType returns a stream over the live entities of type t as of
// this call. Removals during a step are deferred, so the stream stays valid
// for the rest of the step; it must not be kept across steps.
func (e *Engine) EntitiesByType(t EntityType) *stream.Stream[Entity] {
	return stream.FromSlice(e.byType[t])
}

// Entities returns a stream over every live entity in add order.
func (e *Engine) Entities() *stream.Stream[Entity] {
	return stream.FromSlice(e.entities)
}

// Entity looks up a live entity by id.
func (e *Engine) Entity(id EntityID) (Entity, bool) {
	ent, ok := e.byID[id]
	return ent, ok
}

// Count returns the number of live entities of type t.
func (e *Engine) Count(t EntityType) int {
	return len(e.byType[t])
}

// Len returns the number of live entities.
func (e *Engine) Len() int {
	return len(e.entities)
}

// SetGameMap installs the static map descriptor for the loaded game.
func (e *Engine) SetGameMap(m *GameMap) {
	e.gameMap = m
}

// GameMap returns the loaded map, or nil before the first load.
func (e *Engine) GameMap() *GameMap {
	return e.gameMap
}

// SetWaveInfos installs the static wave table.
func (e *Engine) SetWaveInfos(w []WaveInfo) {
	e.waves = w
}

// WaveInfos returns the static wave table.
func (e *Engine) WaveInfos() []WaveInfo {
	return e.waves
}
