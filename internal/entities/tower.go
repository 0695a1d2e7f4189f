package entities

import (
	"math"

	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// TowerProperties are the static stats of a tower kind.
type TowerProperties struct {
	Value    int
	Damage   float64
	Range    float64
	Reload   float64 // seconds between shots
	MaxLevel int

	// Enhancement: the n-th enhancement costs EnhanceCost*EnhanceBase^(n-1)
	// and adds the Enhance* deltas scaled the same way.
	EnhanceBase   float64
	EnhanceCost   int
	EnhanceDamage float64
	EnhanceRange  float64
	EnhanceReload float64
}

// TowerEntity is implemented by every tower kind.
type TowerEntity interface {
	engine.Entity
	TowerBase() *Tower
}

// Tower holds the state shared by all tower kinds. Kinds embed it and
// call Tower.Tick from their own Tick.
type Tower struct {
	engine.Base

	props           TowerProperties
	level           int
	value           int
	damage          float64
	rng             float64
	reload          float64
	damageInflicted float64

	reloadTimer *engine.TickTimer
	reloaded    bool
	plateau     engine.EntityID
	aimer       Aimer
}

func newTower(e *engine.Engine, props TowerProperties) Tower {
	return Tower{
		Base:        engine.NewBase(e),
		props:       props,
		level:       1,
		value:       props.Value,
		damage:      props.Damage,
		rng:         props.Range,
		reload:      props.Reload,
		reloadTimer: engine.NewInterval(props.Reload),
		reloaded:    true,
	}
}

// TowerBase returns the shared tower state.
func (t *Tower) TowerBase() *Tower { return t }

func (t *Tower) Type() engine.EntityType { return engine.TypeTower }

// Init occupies the plateau under the tower.
func (t *Tower) Init() {
	eng := t.Engine()
	if p, ok := t.plateauEntity(); ok {
		p.occupy(t.ID())
		return
	}
	if p, ok := PlateauAt(eng, t.Position()); ok && p.IsFree() {
		t.plateau = p.ID()
		p.occupy(t.ID())
	}
}

// Clean frees the plateau.
func (t *Tower) Clean() {
	if p, ok := t.plateauEntity(); ok {
		p.release(t.ID())
	}
}

func (t *Tower) plateauEntity() (*Plateau, bool) {
	if t.plateau == 0 {
		return nil, false
	}
	ent, ok := t.Engine().Entity(t.plateau)
	if !ok {
		return nil, false
	}
	p, ok := ent.(*Plateau)
	return p, ok
}

// Tick reloads and updates the target.
func (t *Tower) Tick() {
	if !t.reloaded && t.reloadTimer.Tick() {
		t.reloaded = true
	}
	t.aimer.tick(t)
}

// SetPlateau binds the tower to a plateau before it is added.
func (t *Tower) SetPlateau(id engine.EntityID) { t.plateau = id }

// Plateau returns the plateau the tower stands on.
func (t *Tower) Plateau() engine.EntityID { return t.plateau }

func (t *Tower) Level() int               { return t.level }
func (t *Tower) MaxLevel() int            { return t.props.MaxLevel }
func (t *Tower) Value() int               { return t.value }
func (t *Tower) Damage() float64          { return t.damage }
func (t *Tower) Range() float64           { return t.rng }
func (t *Tower) ReloadTime() float64      { return t.reload }
func (t *Tower) DamageInflicted() float64 { return t.damageInflicted }

// Target returns the current target of the tower.
func (t *Tower) Target() (*Enemy, bool) {
	return t.aimer.Target(t.Engine())
}

// ReportDamageInflicted credits damage dealt by the tower's shots and summons.
func (t *Tower) ReportDamageInflicted(d float64) {
	t.damageInflicted += d
}

// IsReloaded reports whether the tower may fire.
func (t *Tower) IsReloaded() bool { return t.reloaded }

// fired starts the reload.
func (t *Tower) fired() {
	t.reloaded = false
}

// IsEnhanceable reports whether the tower can gain a level.
func (t *Tower) IsEnhanceable() bool {
	return t.level < t.props.MaxLevel
}

// EnhanceCost returns the price of the next level.
func (t *Tower) EnhanceCost() int {
	return int(math.Round(float64(t.props.EnhanceCost) * t.enhanceFactor()))
}

func (t *Tower) enhanceFactor() float64 {
	return math.Pow(t.props.EnhanceBase, float64(t.level-1))
}

// Enhance raises the tower's level. The cost is added to its value.
func (t *Tower) Enhance() {
	if !t.IsEnhanceable() {
		return
	}
	t.value += t.EnhanceCost()
	t.levelUp()
}

func (t *Tower) levelUp() {
	f := t.enhanceFactor()
	t.damage += t.props.EnhanceDamage * f
	t.rng += t.props.EnhanceRange
	t.reload = math.Max(0.1, t.reload-t.props.EnhanceReload)
	t.reloadTimer.SetInterval(t.reload)
	t.level++
}

// WriteState stores level, value and damage statistics.
func (t *Tower) WriteState(doc *kvstore.Store) {
	doc.PutInt("level", t.level)
	doc.PutInt("value", t.value)
	doc.PutFloat("damageInflicted", t.damageInflicted)
}

// ReadState restores the fields written by WriteState. Missing fields keep
// the values of a new tower.
func (t *Tower) ReadState(doc *kvstore.Store) error {
	level := min(doc.IntOr("level", 1), t.props.MaxLevel)
	for t.level < level {
		t.levelUp()
	}
	t.value = doc.IntOr("value", t.value)
	t.damageInflicted = doc.FloatOr("damageInflicted", 0)
	return nil
}

// Aimer keeps a tower's target. The target is held by id so a removed
// enemy is never dereferenced.
type Aimer struct {
	target engine.EntityID
}

func (a *Aimer) tick(t *Tower) {
	if e, ok := a.Target(t.Engine()); ok && e.DistanceTo(t.Position()) <= t.rng {
		return
	}
	a.target = 0
	if e, ok := NearestEnemy(t.Engine(), t.Position(), t.rng); ok {
		a.target = e.ID()
	}
}

// Target returns the live target, if any.
func (a *Aimer) Target(eng *engine.Engine) (*Enemy, bool) {
	if a.target == 0 {
		return nil, false
	}
	return liveEnemy(eng, a.target)
}
