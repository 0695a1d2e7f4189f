package game

import (
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/entities"
)

// WaveAttender spawns the enemies of one running wave and settles the
// rewards and lost lives of the enemies it spawned.
type WaveAttender struct {
	m *WaveManager

	index        int
	info         engine.WaveInfo
	cycle        int
	extend       int
	total        int
	spawned      int
	healthFactor float64

	timer *engine.TickTimer
	alive map[*entities.Enemy]struct{}
}

func newWaveAttender(m *WaveManager, index int, info engine.WaveInfo, cycle, extend int) *WaveAttender {
	a := &WaveAttender{
		m:            m,
		index:        index,
		info:         info,
		cycle:        cycle,
		extend:       max(extend, 0),
		healthFactor: m.scaling.Health(cycle, info.HealthMultiplier),
		timer:        &engine.TickTimer{},
		alive:        make(map[*entities.Enemy]struct{}),
	}
	a.total = len(info.Enemies) * (a.extend + 1)
	a.resetTimer()
	return a
}

// Index returns the zero-based wave number.
func (a *WaveAttender) Index() int { return a.index }

// Remaining returns the enemies that are alive or not yet spawned.
func (a *WaveAttender) Remaining() int {
	return a.total - a.spawned + len(a.alive)
}

func (a *WaveAttender) next() engine.EnemyInfo {
	return a.info.Enemies[a.spawned%len(a.info.Enemies)]
}

func (a *WaveAttender) resetTimer() {
	if a.spawned < a.total {
		a.timer.SetInterval(a.next().Delay)
	}
	a.timer.Reset()
}

// tick spawns every enemy whose delay has passed. The timer advances at
// most once per step.
func (a *WaveAttender) tick() {
	ticked := false
	for a.spawned < a.total {
		next := a.next()
		if next.Delay > 0 {
			if ticked || !a.timer.Tick() {
				break
			}
			ticked = true
		}
		a.spawn(next)
		a.spawned++
		a.resetTimer()
	}
	if a.spawned >= a.total && len(a.alive) == 0 {
		a.m.attenderFinished(a)
	}
}

func (a *WaveAttender) spawn(info engine.EnemyInfo) {
	ent, err := a.m.reg.Create(info.Kind)
	if err != nil {
		a.m.log.Error("spawn enemy", "wave", a.index, "err", err)
		return
	}
	e, ok := ent.(*entities.Enemy)
	if !ok {
		a.m.log.Error("spawn enemy: not an enemy", "wave", a.index, "kind", info.Kind)
		return
	}

	pathIndex := info.PathIndex
	if gm := a.m.eng.GameMap(); gm != nil && len(gm.Paths) > 0 {
		pathIndex = ((pathIndex % len(gm.Paths)) + len(gm.Paths)) % len(gm.Paths)
	}
	reward := a.m.scaling.Reward(e.Reward(), a.cycle, a.info.RewardMultiplier)
	e.Prepare(a.index, a.healthFactor, reward, pathIndex, info.Offset)
	a.attach(e)
	a.m.eng.Add(e)
}

func (a *WaveAttender) attach(e *entities.Enemy) {
	if _, ok := a.alive[e]; ok {
		return
	}
	a.alive[e] = struct{}{}
	e.AddEnemyListener(a)
}

func (a *WaveAttender) detach() {
	for e := range a.alive {
		e.RemoveEnemyListener(a)
	}
	clear(a.alive)
}

// EnemyKilled pays the enemy's reward.
func (a *WaveAttender) EnemyKilled(e *entities.Enemy) {
	if !a.release(e) {
		return
	}
	a.m.board.GiveCredits(e.Reward(), true)
	a.m.updateBonus()
	a.m.remainingChanged()
}

// EnemyFinished costs the player a life.
func (a *WaveAttender) EnemyFinished(e *entities.Enemy) {
	if !a.release(e) {
		return
	}
	a.m.board.TakeLives(1)
	a.m.updateBonus()
	a.m.remainingChanged()
}

func (a *WaveAttender) release(e *entities.Enemy) bool {
	if _, ok := a.alive[e]; !ok {
		return false
	}
	delete(a.alive, e)
	e.RemoveEnemyListener(a)
	return true
}

func (a *WaveAttender) waveReward() int {
	return a.m.scaling.Reward(a.info.WaveReward, a.cycle, a.info.RewardMultiplier)
}

// outstandingReward is the kill reward still to be earned in this wave.
func (a *WaveAttender) outstandingReward() int {
	sum := 0
	for e := range a.alive {
		sum += e.Reward()
	}
	for i := a.spawned; i < a.total; i++ {
		info, err := a.m.reg.Info(a.info.Enemies[i%len(a.info.Enemies)].Kind)
		if err != nil {
			continue
		}
		sum += a.m.scaling.Reward(info.Value, a.cycle, a.info.RewardMultiplier)
	}
	return sum
}
