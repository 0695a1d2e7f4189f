package entities

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
)

var dolphinProperties = TowerProperties{
	Value:         450,
	Damage:        90,
	Range:         3.0,
	Reload:        2.0,
	MaxLevel:      8,
	EnhanceBase:   1.3,
	EnhanceCost:   120,
	EnhanceDamage: 25,
	EnhanceRange:  0.1,
	EnhanceReload: 0.1,
}

const (
	dolphinSpawnInterval   = 4.0
	dolphinBaseCount       = 2
	dolphinDamageShare     = 0.6
	dolphinDamageShareStep = 0.1
)

// MakotoDolphin sprays water at its target and keeps a pod of dolphin
// summons around it. Every level adds one dolphin and makes them stronger.
type MakotoDolphin struct {
	Tower
	dolphins   []engine.EntityID
	spawnTimer *engine.TickTimer
}

// NewMakotoDolphin creates a pending tower.
func NewMakotoDolphin(e *engine.Engine) *MakotoDolphin {
	return &MakotoDolphin{
		Tower:      newTower(e, dolphinProperties),
		spawnTimer: engine.NewInterval(dolphinSpawnInterval),
	}
}

func (m *MakotoDolphin) Kind() string { return KindMakotoDolphin }

// MaxDolphins returns the size of the pod at the current level.
func (m *MakotoDolphin) MaxDolphins() int {
	return dolphinBaseCount + m.Level() - 1
}

// DolphinDamage returns the damage of one dolphin attack.
func (m *MakotoDolphin) DolphinDamage() float64 {
	return m.Damage() * (dolphinDamageShare + dolphinDamageShareStep*float64(m.Level()-1))
}

// ActiveDolphins returns the number of live summons.
func (m *MakotoDolphin) ActiveDolphins() int {
	return len(m.dolphins)
}

func (m *MakotoDolphin) Tick() {
	m.Tower.Tick()

	if len(m.dolphins) < m.MaxDolphins() && m.spawnTimer.Tick() {
		m.spawnDolphin()
	}

	target, ok := m.Target()
	if !ok || !m.IsReloaded() {
		return
	}
	m.Engine().Add(NewShot(m.Engine(), KindWaterShot, m.ID(), m.Position(), target, m.Damage()))
	m.fired()
}

func (m *MakotoDolphin) spawnDolphin() {
	d := NewDolphinSummon(m.Engine(), m.ID(), m.Position(), m.DolphinDamage())
	d.AddRemovedListener(engine.RemovedFunc(func(ent engine.Entity) {
		m.dolphins = removeID(m.dolphins, ent.ID())
	}))
	m.Engine().Add(d)
	m.dolphins = append(m.dolphins, d.ID())
}

// Clean dismisses the pod and frees the plateau.
func (m *MakotoDolphin) Clean() {
	m.Tower.Clean()
	for _, id := range m.dolphins {
		if d, ok := m.Engine().Entity(id); ok {
			d.Remove()
		}
	}
}

func removeID(ids []engine.EntityID, id engine.EntityID) []engine.EntityID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

const (
	summonSpeed       = 1.2
	summonAttackRange = 1.5
	summonCooldown    = 1.5
	summonLifetime    = 12.0
	summonPatrolRange = 2.0
	summonRetarget    = 2.0
	summonArrived     = 0.2
)

// DolphinSummon is a short-lived helper of a MakotoDolphin. It hunts the
// nearest enemy near its home and patrols when there is none. The owner is
// referenced by id and may disappear first.
type DolphinSummon struct {
	engine.Base

	owner  engine.EntityID
	damage float64
	home   core.Vec2
	patrol core.Vec2
	target engine.EntityID

	lifeTimer   *engine.TickTimer
	attackTimer *engine.TickTimer
	patrolTimer *engine.TickTimer
}

// NewDolphinSummon creates a pending summon at pos.
func NewDolphinSummon(e *engine.Engine, owner engine.EntityID, pos core.Vec2, damage float64) *DolphinSummon {
	d := &DolphinSummon{
		Base:        engine.NewBase(e),
		owner:       owner,
		damage:      damage,
		home:        pos,
		lifeTimer:   engine.NewInterval(summonLifetime),
		attackTimer: engine.NewInterval(summonCooldown),
		patrolTimer: engine.NewInterval(summonRetarget),
	}
	d.SetPosition(pos)
	return d
}

func (d *DolphinSummon) Kind() string            { return KindDolphinSummon }
func (d *DolphinSummon) Type() engine.EntityType { return engine.TypeEffect }

// Owner returns the id of the summoning tower.
func (d *DolphinSummon) Owner() engine.EntityID { return d.owner }

func (d *DolphinSummon) Init() {
	d.home = d.Position()
	d.newPatrolTarget()
}

func (d *DolphinSummon) Tick() {
	if d.lifeTimer.Tick() {
		d.Remove()
		return
	}

	target, ok := liveEnemy(d.Engine(), d.target)
	if !ok || target.DistanceTo(d.Position()) > summonAttackRange*2 {
		target, ok = NearestEnemy(d.Engine(), d.Position(), summonAttackRange*2)
		d.target = 0
		if ok {
			d.target = target.ID()
		}
	}

	if ok {
		d.moveTo(target.Position())
		if d.attackTimer.Tick() && target.DistanceTo(d.Position()) <= summonAttackRange {
			d.Engine().Add(NewShot(d.Engine(), KindWaterShot, d.owner, d.Position(), target, d.damage))
		}
		return
	}

	if d.patrolTimer.Tick() || d.Position().DistanceTo(d.patrol) < summonArrived {
		d.newPatrolTarget()
	}
	d.moveTo(d.patrol)
}

func (d *DolphinSummon) moveTo(target core.Vec2) {
	step := summonSpeed / engine.TargetFrameRate
	next, _ := d.Position().MoveTowards(target, step)
	if next.DistanceTo(d.home) > summonPatrolRange {
		next, _ = d.Position().MoveTowards(d.home, step)
	}
	d.SetPosition(next)
}

func (d *DolphinSummon) newPatrolTarget() {
	rng := d.Engine().Rand()
	angle := rng.Float64() * 360
	dist := 0.5 + rng.Float64()*(summonPatrolRange-0.5)
	d.patrol = d.home.Add(core.Polar(dist, angle))
}
