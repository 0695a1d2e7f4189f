package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-defense/internal/core"
)

// probe records its hooks and runs an optional tick callback.
type probe struct {
	Base
	kind   string
	typ    EntityType
	inits  int
	ticks  int
	cleans int
	onTick func(p *probe)
}

func newProbe(e *Engine, kind string, typ EntityType) *probe {
	return &probe{Base: NewBase(e), kind: kind, typ: typ}
}

func (p *probe) Kind() string     { return p.kind }
func (p *probe) Type() EntityType { return p.typ }
func (p *probe) Init()            { p.inits++ }
func (p *probe) Clean()           { p.cleans++ }
func (p *probe) Tick() {
	p.ticks++
	if p.onTick != nil {
		p.onTick(p)
	}
}

func TestAddOutsideStep(t *testing.T) {
	e := New(nil)
	p := newProbe(e, "a", TypeEnemy)
	e.Add(p)

	if p.State() != StateLive {
		t.Fatalf("state = %s, want live", p.State())
	}
	if p.inits != 1 {
		t.Errorf("Init called %d times, want 1", p.inits)
	}
	if p.ID() == 0 {
		t.Error("ID not assigned")
	}
	if got, ok := e.Entity(p.ID()); !ok || got != p {
		t.Error("Entity(id) lookup failed")
	}
	if e.Count(TypeEnemy) != 1 {
		t.Errorf("Count(enemy) = %d, want 1", e.Count(TypeEnemy))
	}
}

func TestIDsAreUnique(t *testing.T) {
	e := New(nil)
	seen := map[EntityID]bool{}
	for range 50 {
		p := newProbe(e, "a", TypeShot)
		e.Add(p)
		if seen[p.ID()] {
			t.Fatalf("duplicate id %d", p.ID())
		}
		seen[p.ID()] = true
	}
	e.Clear()
	p := newProbe(e, "a", TypeShot)
	e.Add(p)
	if seen[p.ID()] {
		t.Errorf("id %d reused after Clear", p.ID())
	}
}

func TestAddTwicePanics(t *testing.T) {
	e := New(nil)
	p := newProbe(e, "a", TypeTower)
	e.Add(p)

	defer func() {
		if recover() == nil {
			t.Error("second Add did not panic")
		}
	}()
	e.Add(p)
}

func TestAddDuringStepIsStaged(t *testing.T) {
	e := New(nil)
	var child *probe
	spawner := newProbe(e, "spawner", TypeTower)
	spawner.onTick = func(p *probe) {
		if child != nil {
			return
		}
		child = newProbe(e, "child", TypeShot)
		e.Add(child)
		if child.State() != StatePending {
			t.Errorf("child state during step = %s, want pending", child.State())
		}
		if e.Count(TypeShot) != 0 {
			t.Error("staged child visible to queries in the same step")
		}
	}
	e.Add(spawner)

	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if child.ticks != 0 {
		t.Errorf("child ticked %d times in the step it was added", child.ticks)
	}
	if child.State() != StatePending {
		t.Errorf("child state after step = %s, want pending", child.State())
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if child.State() != StateLive || child.inits != 1 {
		t.Errorf("child state = %s inits = %d, want live and 1", child.State(), child.inits)
	}
	if child.ticks != 1 {
		t.Errorf("child ticks = %d, want 1", child.ticks)
	}
}

func TestRemoveDuringStepIsDeferred(t *testing.T) {
	e := New(nil)
	victim := newProbe(e, "victim", TypeEnemy)
	var visible int

	killer := newProbe(e, "killer", TypeTower)
	killer.onTick = func(p *probe) {
		victim.Remove()
	}
	watcher := newProbe(e, "watcher", TypeTower)
	watcher.onTick = func(p *probe) {
		visible = e.EntitiesByType(TypeEnemy).Count()
	}

	e.Add(killer)
	e.Add(victim)
	e.Add(watcher)

	var removed []Entity
	victim.AddRemovedListener(RemovedFunc(func(ent Entity) {
		removed = append(removed, ent)
	}))

	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}

	if victim.ticks != 1 {
		t.Errorf("victim ticks = %d, want 1 (flagged entities finish the step)", victim.ticks)
	}
	if visible != 1 {
		t.Errorf("enemies visible mid-step = %d, want 1", visible)
	}
	if victim.State() != StateRemoved {
		t.Errorf("victim state = %s, want removed", victim.State())
	}
	if victim.cleans != 1 {
		t.Errorf("Clean called %d times, want 1", victim.cleans)
	}
	if len(removed) != 1 || removed[0] != victim {
		t.Errorf("removed listeners = %v, want [victim]", removed)
	}
	if e.Count(TypeEnemy) != 0 {
		t.Errorf("Count(enemy) = %d, want 0", e.Count(TypeEnemy))
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if victim.ticks != 1 {
		t.Error("removed entity ticked again")
	}
}

func TestRemoveTwiceIsNoop(t *testing.T) {
	e := New(nil)
	p := newProbe(e, "a", TypeEnemy)
	e.Add(p)
	p.Remove()
	p.Remove()
	e.Remove(p)
	if p.cleans != 1 {
		t.Errorf("Clean called %d times, want 1", p.cleans)
	}
}

func TestStreamSurvivesRemoval(t *testing.T) {
	e := New(nil)
	var enemies []*probe
	for range 3 {
		p := newProbe(e, "enemy", TypeEnemy)
		e.Add(p)
		enemies = append(enemies, p)
	}

	s := e.EntitiesByType(TypeEnemy)
	enemies[1].Remove()

	if n := s.Count(); n != 3 {
		t.Errorf("stream count = %d, want 3 (snapshot taken before removal)", n)
	}
	if n := e.EntitiesByType(TypeEnemy).Count(); n != 2 {
		t.Errorf("fresh stream count = %d, want 2", n)
	}
}

func TestEntitiesByTypeTargeting(t *testing.T) {
	e := New(nil)
	at := func(x, y float64) *probe {
		p := newProbe(e, "enemy", TypeEnemy)
		p.SetPosition(core.V(x, y))
		e.Add(p)
		return p
	}
	at(5, 0)
	near := at(1, 0)
	at(1, 0)
	at(0, 9)

	center := core.V(0, 0)
	got, ok := e.EntitiesByType(TypeEnemy).
		Filter(InRange(center, 6)).
		Min(DistanceTo(center))
	if !ok {
		t.Fatal("Min() found nothing")
	}
	if got != near {
		t.Errorf("nearest = %d, want %d (first of tied entities)", got.ID(), near.ID())
	}
}

func TestTickOrderIsAddOrder(t *testing.T) {
	e := New(nil)
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		p := newProbe(e, name, TypeEffect)
		p.onTick = func(p *probe) { order = append(order, p.kind) }
		e.Add(p)
	}
	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if strings.Join(order, "") != "abc" {
		t.Errorf("tick order = %v, want [a b c]", order)
	}
}

func TestClear(t *testing.T) {
	e := New(nil)
	live := newProbe(e, "live", TypeTower)
	e.Add(live)

	var staged *probe
	live.onTick = func(p *probe) {
		if staged == nil {
			staged = newProbe(e, "staged", TypeShot)
			e.Add(staged)
		}
	}
	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if e.StepsSinceLoad() != 1 {
		t.Fatalf("StepsSinceLoad() = %d, want 1", e.StepsSinceLoad())
	}

	e.Clear()

	if live.State() != StateRemoved || staged.State() != StateRemoved {
		t.Errorf("states after Clear = %s, %s, want removed", live.State(), staged.State())
	}
	if live.cleans != 1 {
		t.Errorf("Clean called %d times, want 1", live.cleans)
	}
	if e.Len() != 0 || e.Count(TypeTower) != 0 {
		t.Errorf("engine not empty after Clear: len=%d", e.Len())
	}
	if e.StepsSinceLoad() != 0 {
		t.Errorf("StepsSinceLoad() = %d after Clear, want 0", e.StepsSinceLoad())
	}

	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if staged.ticks != 0 || live.ticks != 1 {
		t.Error("cleared entities ticked after Clear")
	}
}

func TestClearDuringStep(t *testing.T) {
	e := New(nil)
	a := newProbe(e, "a", TypeTower)
	b := newProbe(e, "b", TypeTower)
	a.onTick = func(p *probe) { e.Clear() }
	e.Add(a)
	e.Add(b)

	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if b.ticks != 0 {
		t.Error("entity ticked after Clear in the same step")
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
}

func TestStepFault(t *testing.T) {
	e := New(nil)
	for range 3 {
		if err := e.Step(); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}

	boom := errors.New("boom")
	p := newProbe(e, "bad", TypeEnemy)
	p.onTick = func(*probe) { panic(boom) }
	e.Add(p)

	err := e.Step()
	var fe *FaultError
	if !errors.As(err, &fe) {
		t.Fatalf("Step() error = %v, want *FaultError", err)
	}
	if fe.StepsSinceLoad != 3 {
		t.Errorf("StepsSinceLoad = %d, want 3", fe.StepsSinceLoad)
	}
	if !errors.Is(err, boom) {
		t.Error("fault does not wrap the panic value")
	}
	if len(fe.Stack) == 0 {
		t.Error("fault has no stack")
	}
	if e.InStep() {
		t.Error("engine still in step after fault")
	}
}

func TestDescriptors(t *testing.T) {
	e := New(nil)
	if e.GameMap() != nil {
		t.Error("GameMap() not nil before load")
	}
	m := &GameMap{Width: 4, Height: 3}
	e.SetGameMap(m)
	e.SetWaveInfos([]WaveInfo{{WaveReward: 10}})
	if e.GameMap() != m {
		t.Error("GameMap() did not return the installed map")
	}
	if len(e.WaveInfos()) != 1 {
		t.Errorf("WaveInfos() len = %d, want 1", len(e.WaveInfos()))
	}
}

type tickCounter struct {
	ticks int
	seen  []int // live probe ticks observed at each tick
	probe *probe
}

func (c *tickCounter) Tick() {
	c.ticks++
	if c.probe != nil {
		c.seen = append(c.seen, c.probe.ticks)
	}
}

func TestTickListeners(t *testing.T) {
	e := New(nil)
	p := newProbe(e, "tower", TypeTower)
	e.Add(p)

	c := &tickCounter{probe: p}
	e.AddTickListener(c)
	for i := 0; i < 3; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}
	if c.ticks != 3 {
		t.Fatalf("listener ticks = %d, expected 3", c.ticks)
	}
	// listeners run after the entities of the same step
	if c.seen[0] != 1 || c.seen[2] != 3 {
		t.Errorf("entity ticks seen by listener = %v, expected [1 2 3]", c.seen)
	}

	e.Clear()
	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if c.ticks != 4 {
		t.Errorf("listener ticks after Clear = %d, expected 4", c.ticks)
	}

	e.RemoveTickListener(c)
	e.RemoveTickListener(c)
	if err := e.Step(); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if c.ticks != 4 {
		t.Errorf("removed listener ticked: %d", c.ticks)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a, b := New(nil), New(nil)
	a.Seed(42)
	b.Seed(42)
	for i := 0; i < 10; i++ {
		if x, y := a.Rand().Float64(), b.Rand().Float64(); x != y {
			t.Fatalf("draw %d differs: %v != %v", i, x, y)
		}
	}
	b.Seed(43)
	if a.Rand().Uint64() == b.Rand().Uint64() {
		t.Error("different seeds produced the same draw")
	}
}
