package entities

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
	"github.com/vovakirdan/tui-defense/internal/stream"
)

// EnemyProperties are the static stats of an enemy kind.
type EnemyProperties struct {
	Health float64
	Speed  float64 // map units per second
	Reward int
}

var (
	soldierProperties = EnemyProperties{Health: 300, Speed: 1.0, Reward: 10}
	blobProperties    = EnemyProperties{Health: 900, Speed: 0.6, Reward: 25}
)

// EnemyListener is notified when an enemy leaves the game.
type EnemyListener interface {
	// EnemyKilled is called when the enemy's health drops to zero.
	EnemyKilled(e *Enemy)
	// EnemyFinished is called when the enemy reaches the end of its path.
	EnemyFinished(e *Enemy)
}

// Enemy walks along a map path until it is killed or reaches the end.
type Enemy struct {
	engine.Base

	kind      string
	props     EnemyProperties
	health    float64
	maxHealth float64
	reward    int

	wave      int
	pathIndex int
	waypoint  int
	offset    core.Vec2

	listeners []EnemyListener
}

// NewEnemy creates a pending enemy of the given kind.
func NewEnemy(e *engine.Engine, kind string, props EnemyProperties) *Enemy {
	return &Enemy{
		Base:      engine.NewBase(e),
		kind:      kind,
		props:     props,
		health:    props.Health,
		maxHealth: props.Health,
		reward:    props.Reward,
		wave:      -1,
	}
}

func (e *Enemy) Kind() string            { return e.kind }
func (e *Enemy) Type() engine.EntityType { return engine.TypeEnemy }

func (e *Enemy) Health() float64    { return e.health }
func (e *Enemy) MaxHealth() float64 { return e.maxHealth }
func (e *Enemy) Reward() int        { return e.reward }
func (e *Enemy) Speed() float64     { return e.props.Speed }

// Wave returns the wave number that spawned the enemy, or -1.
func (e *Enemy) Wave() int { return e.wave }

// Prepare sets up a spawned enemy: wave membership, scaled health and
// reward, and the start of its path.
func (e *Enemy) Prepare(wave int, healthFactor float64, reward int, pathIndex int, offset core.Vec2) {
	e.wave = wave
	e.maxHealth = e.props.Health * healthFactor
	e.health = e.maxHealth
	e.reward = reward
	e.pathIndex = pathIndex
	e.offset = offset
	e.waypoint = 0
	if path, ok := e.path(); ok {
		e.SetPosition(path.Waypoints[0].Add(offset))
		e.waypoint = 1
	}
}

func (e *Enemy) path() (engine.MapPath, bool) {
	m := e.Engine().GameMap()
	if m == nil {
		return engine.MapPath{}, false
	}
	return m.Path(e.pathIndex)
}

// AddEnemyListener registers l for this enemy.
func (e *Enemy) AddEnemyListener(l EnemyListener) {
	e.listeners = append(e.listeners, l)
}

// RemoveEnemyListener unregisters l.
func (e *Enemy) RemoveEnemyListener(l EnemyListener) {
	for i, v := range e.listeners {
		if v == l {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *Enemy) Tick() {
	if !e.IsLive() {
		return
	}
	path, ok := e.path()
	if !ok || e.waypoint >= len(path.Waypoints) {
		e.finish()
		return
	}

	target := path.Waypoints[e.waypoint].Add(e.offset)
	pos, reached := e.Position().MoveTowards(target, e.props.Speed/engine.TargetFrameRate)
	e.SetPosition(pos)
	if reached {
		e.waypoint++
		if e.waypoint >= len(path.Waypoints) {
			e.finish()
		}
	}
}

// DistanceRemaining returns the distance left to the end of the path.
func (e *Enemy) DistanceRemaining() float64 {
	path, ok := e.path()
	if !ok || e.waypoint >= len(path.Waypoints) {
		return 0
	}
	d := e.Position().DistanceTo(path.Waypoints[e.waypoint].Add(e.offset))
	for i := e.waypoint + 1; i < len(path.Waypoints); i++ {
		d += path.Waypoints[i-1].DistanceTo(path.Waypoints[i])
	}
	return d
}

func (e *Enemy) finish() {
	for _, l := range e.listeners {
		l.EnemyFinished(e)
	}
	e.Remove()
}

// Damage reduces health. An enemy whose health drops to zero is killed and
// removed; further damage is ignored.
func (e *Enemy) Damage(amount float64) {
	if !e.IsLive() {
		return
	}
	e.health -= amount
	if e.health > 0 {
		return
	}
	e.health = 0
	for _, l := range e.listeners {
		l.EnemyKilled(e)
	}
	e.Remove()
}

// WriteState stores health, reward and path progress.
func (e *Enemy) WriteState(doc *kvstore.Store) {
	doc.PutFloat("health", e.health)
	doc.PutFloat("maxHealth", e.maxHealth)
	doc.PutInt("reward", e.reward)
	doc.PutInt("wave", e.wave)
	doc.PutInt("pathIndex", e.pathIndex)
	doc.PutInt("waypoint", e.waypoint)
	doc.PutVec2("offset", e.offset)
}

// ReadState restores the fields written by WriteState.
func (e *Enemy) ReadState(doc *kvstore.Store) error {
	var err error
	if e.health, err = doc.Float("health"); err != nil {
		return err
	}
	if e.pathIndex, err = doc.Int("pathIndex"); err != nil {
		return err
	}
	if e.waypoint, err = doc.Int("waypoint"); err != nil {
		return err
	}
	if e.waypoint < 0 {
		return kvstore.OutOfRange("waypoint", e.waypoint)
	}
	if e.Engine().GameMap() != nil {
		path, ok := e.path()
		if !ok {
			return kvstore.OutOfRange("pathIndex", e.pathIndex)
		}
		if e.waypoint > len(path.Waypoints) {
			return kvstore.OutOfRange("waypoint", e.waypoint)
		}
	}
	e.maxHealth = doc.FloatOr("maxHealth", e.health)
	e.reward = doc.IntOr("reward", e.props.Reward)
	e.wave = doc.IntOr("wave", -1)
	if doc.Has("offset") {
		if e.offset, err = doc.Vec2("offset"); err != nil {
			return err
		}
	}
	return nil
}

// NearestEnemy returns the live enemy closest to center within r.
func NearestEnemy(eng *engine.Engine, center core.Vec2, r float64) (*Enemy, bool) {
	return stream.Cast[engine.Entity, *Enemy](
		eng.EntitiesByType(engine.TypeEnemy).Filter(engine.InRange(center, r)),
	).Filter(func(e *Enemy) bool {
		return e.IsLive()
	}).Min(func(e *Enemy) float64 {
		return e.DistanceTo(center)
	})
}

func liveEnemy(eng *engine.Engine, id engine.EntityID) (*Enemy, bool) {
	ent, ok := eng.Entity(id)
	if !ok {
		return nil, false
	}
	e, ok := ent.(*Enemy)
	if !ok || !e.IsLive() {
		return nil, false
	}
	return e, true
}
