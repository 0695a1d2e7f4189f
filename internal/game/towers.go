package game

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/entities"
	"github.com/vovakirdan/tui-defense/internal/registry"
)

var (
	ErrNotEnoughCredits = errors.New("game: not enough credits")
	ErrPlateauTaken     = errors.New("game: plateau is occupied")
	ErrNoSuchEntity     = errors.New("game: no such entity")
	ErrNotATower        = errors.New("game: not a tower")
	ErrMaxLevel         = errors.New("game: tower is at max level")
)

// TowerControl carries out the player's tower actions. Every action may be
// called from any goroutine: off the simulation goroutine it is posted to
// the clock, nil is returned and a failure is logged.
type TowerControl struct {
	log       *log.Logger
	clock     *engine.Clock
	eng       *engine.Engine
	reg       *registry.Registry
	board     *ScoreBoard
	state     *GameState
	sellRatio float64
}

// NewTowerControl creates the tower actions for a game.
func NewTowerControl(clock *engine.Clock, reg *registry.Registry, board *ScoreBoard, state *GameState, sellRatio float64, logger *log.Logger) *TowerControl {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TowerControl{
		log:       logger.With("component", "towers"),
		clock:     clock,
		eng:       clock.Engine(),
		reg:       reg,
		board:     board,
		state:     state,
		sellRatio: sellRatio,
	}
}

// BuyTower builds a tower of kind on the given plateau.
func (c *TowerControl) BuyTower(kind string, plateau engine.EntityID) error {
	if posted(c.clock, c.log, "buy tower", func() error { return c.BuyTower(kind, plateau) }) {
		return nil
	}
	if c.state.IsGameOver() {
		return ErrGameOver
	}

	info, err := c.reg.Info(kind)
	if err != nil {
		return err
	}
	if info.Type != engine.TypeTower {
		return fmt.Errorf("%w: %s", ErrNotATower, kind)
	}

	ent, ok := c.eng.Entity(plateau)
	if !ok {
		return fmt.Errorf("%w: plateau %d", ErrNoSuchEntity, plateau)
	}
	p, ok := ent.(*entities.Plateau)
	if !ok {
		return fmt.Errorf("%w: %d is a %s", ErrNoSuchEntity, plateau, ent.Kind())
	}
	if !p.IsFree() {
		return ErrPlateauTaken
	}
	if info.Value > c.board.Credits() {
		return ErrNotEnoughCredits
	}

	created, err := c.reg.Create(kind)
	if err != nil {
		return err
	}
	tower := created.(entities.TowerEntity)
	tower.TowerBase().SetPlateau(p.ID())
	tower.SetPosition(p.Position())

	c.board.TakeCredits(info.Value)
	c.eng.Add(tower)
	c.log.Debug("tower bought", "kind", kind, "id", tower.ID(), "plateau", p.ID())
	return nil
}

func (c *TowerControl) tower(id engine.EntityID) (entities.TowerEntity, error) {
	ent, ok := c.eng.Entity(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchEntity, id)
	}
	t, ok := ent.(entities.TowerEntity)
	if !ok {
		return nil, fmt.Errorf("%w: %d is a %s", ErrNotATower, id, ent.Kind())
	}
	return t, nil
}

// SellTower removes a tower and refunds part of its value.
func (c *TowerControl) SellTower(id engine.EntityID) error {
	if posted(c.clock, c.log, "sell tower", func() error { return c.SellTower(id) }) {
		return nil
	}
	if c.state.IsGameOver() {
		return ErrGameOver
	}
	t, err := c.tower(id)
	if err != nil {
		return err
	}
	refund := c.SellValue(t)
	t.Remove()
	c.board.GiveCredits(refund, false)
	c.log.Debug("tower sold", "kind", t.Kind(), "id", id, "refund", refund)
	return nil
}

// SellValue returns what selling t would refund.
func (c *TowerControl) SellValue(t entities.TowerEntity) int {
	return int(math.Round(float64(t.TowerBase().Value()) * c.sellRatio))
}

// UpgradeTower raises a tower's level.
func (c *TowerControl) UpgradeTower(id engine.EntityID) error {
	if posted(c.clock, c.log, "upgrade tower", func() error { return c.UpgradeTower(id) }) {
		return nil
	}
	if c.state.IsGameOver() {
		return ErrGameOver
	}
	t, err := c.tower(id)
	if err != nil {
		return err
	}
	base := t.TowerBase()
	if !base.IsEnhanceable() {
		return ErrMaxLevel
	}
	if !c.board.TakeCredits(base.EnhanceCost()) {
		return ErrNotEnoughCredits
	}
	base.Enhance()
	c.log.Debug("tower upgraded", "kind", t.Kind(), "id", id, "level", base.Level())
	return nil
}
