package game

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/entities"
)

// EntityView is the render state of one entity.
type EntityView struct {
	ID       engine.EntityID
	Kind     string
	Type     engine.EntityType
	Glyph    rune
	Color    core.Color
	Position core.Vec2

	Health   float64 // enemies: remaining share of max health
	Occupied bool    // plateaus

	// towers
	Level       int
	MaxLevel    int
	Damage      float64
	Range       float64
	UpgradeCost int // zero at max level
	SellValue   int
}

// Snapshot is an immutable copy of the game published after every step.
// It may be read from any goroutine.
type Snapshot struct {
	Steps    int
	MapID    string
	MapTitle string
	Width    int
	Height   int
	Paths    []engine.MapPath
	Entities []EntityView

	Credits    int
	Lives      int
	Score      int
	WaveBonus  int
	EarlyBonus int

	WaveNumber       int
	RemainingEnemies int
	NextWaveReady    bool

	Started    bool
	GameOver   bool
	FinalScore int

	Paused bool
	Speed  int
}

// Plateaus returns the plateau views in map order.
func (s *Snapshot) Plateaus() []EntityView {
	var out []EntityView
	for _, v := range s.Entities {
		if v.Type == engine.TypePlateau {
			out = append(out, v)
		}
	}
	return out
}

// TowerAt returns the tower standing on the plateau at pos.
func (s *Snapshot) TowerAt(pos core.Vec2) (EntityView, bool) {
	for _, v := range s.Entities {
		if v.Type == engine.TypeTower && v.Position.DistanceTo(pos) < 1e-6 {
			return v, true
		}
	}
	return EntityView{}, false
}

func (g *Game) buildSnapshot() *Snapshot {
	s := &Snapshot{
		Steps:      g.Engine.StepsSinceLoad(),
		MapID:      g.Loader.CurrentMapID(),
		Credits:    g.ScoreBoard.Credits(),
		Lives:      g.ScoreBoard.Lives(),
		Score:      g.ScoreBoard.Score(),
		WaveBonus:  g.ScoreBoard.WaveBonus(),
		EarlyBonus: g.ScoreBoard.EarlyBonus(),

		WaveNumber:       g.Waves.WaveNumber(),
		RemainingEnemies: g.Waves.RemainingEnemies(),
		NextWaveReady:    g.Waves.IsNextWaveReady(),

		Started:    g.State.IsGameStarted(),
		GameOver:   g.State.IsGameOver(),
		FinalScore: g.State.FinalScore(),

		Paused: g.Clock.IsPaused(),
		Speed:  g.Clock.Speed(),
	}
	if info, err := g.Maps.Map(s.MapID); err == nil {
		s.MapTitle = info.Title
	}
	if gm := g.Engine.GameMap(); gm != nil {
		s.Width, s.Height = gm.Width, gm.Height
		s.Paths = gm.Paths
	}

	s.Entities = make([]EntityView, 0, g.Engine.Len())
	for ent := range g.Engine.Entities().All() {
		v := EntityView{
			ID:       ent.ID(),
			Kind:     ent.Kind(),
			Type:     ent.Type(),
			Position: ent.Position(),
		}
		if info, err := g.Registry.Info(ent.Kind()); err == nil {
			v.Glyph, v.Color = info.Glyph, info.Color
		}
		switch e := ent.(type) {
		case *entities.Enemy:
			if e.MaxHealth() > 0 {
				v.Health = e.Health() / e.MaxHealth()
			}
		case *entities.Plateau:
			v.Occupied = !e.IsFree()
		case entities.TowerEntity:
			t := e.TowerBase()
			v.Level, v.MaxLevel = t.Level(), t.MaxLevel()
			v.Damage, v.Range = t.Damage(), t.Range()
			v.SellValue = g.Towers.SellValue(e)
			if t.IsEnhanceable() {
				v.UpgradeCost = t.EnhanceCost()
			}
		}
		s.Entities = append(s.Entities, v)
	}
	return s
}
