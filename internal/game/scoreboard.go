package game

import (
	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// ScoreBoardListener observes the player's resources. Calls happen on the
// simulation goroutine.
type ScoreBoardListener interface {
	CreditsChanged(credits int)
	LivesChanged(lives int)
	BonusChanged(waveBonus, earlyBonus int)
}

// ScoreBoard tracks credits, lives, score and the pending bonuses.
type ScoreBoard struct {
	startCredits int
	startLives   int

	credits    int
	lives      int
	score      int
	waveBonus  int
	earlyBonus int

	listeners core.Listeners[ScoreBoardListener]
}

// NewScoreBoard creates a scoreboard holding the starting resources.
func NewScoreBoard(credits, lives int) *ScoreBoard {
	return &ScoreBoard{
		startCredits: credits,
		startLives:   lives,
		credits:      credits,
		lives:        lives,
	}
}

func (b *ScoreBoard) Credits() int    { return b.credits }
func (b *ScoreBoard) Lives() int      { return b.lives }
func (b *ScoreBoard) Score() int      { return b.score }
func (b *ScoreBoard) WaveBonus() int  { return b.waveBonus }
func (b *ScoreBoard) EarlyBonus() int { return b.earlyBonus }

// AddListener registers l.
func (b *ScoreBoard) AddListener(l ScoreBoardListener) { b.listeners.Add(l) }

// RemoveListener unregisters l.
func (b *ScoreBoard) RemoveListener(l ScoreBoardListener) { b.listeners.Remove(l) }

// GiveCredits adds credits. Earned credits also count towards the score.
func (b *ScoreBoard) GiveCredits(amount int, earned bool) {
	b.credits += amount
	if earned {
		b.score += amount
	}
	b.creditsChanged()
}

// TakeCredits spends credits. It reports false and leaves the balance
// untouched when the player cannot afford amount.
func (b *ScoreBoard) TakeCredits(amount int) bool {
	if amount > b.credits {
		return false
	}
	b.credits -= amount
	b.creditsChanged()
	return true
}

// TakeLives removes lives. Lives may go negative; that ends the game.
func (b *ScoreBoard) TakeLives(n int) {
	b.lives -= n
	b.livesChanged()
}

// SetBonus updates the bonuses shown to the player.
func (b *ScoreBoard) SetBonus(waveBonus, earlyBonus int) {
	if b.waveBonus == waveBonus && b.earlyBonus == earlyBonus {
		return
	}
	b.waveBonus = waveBonus
	b.earlyBonus = earlyBonus
	b.bonusChanged()
}

func (b *ScoreBoard) creditsChanged() {
	for _, l := range b.listeners.Snapshot() {
		l.CreditsChanged(b.credits)
	}
}

func (b *ScoreBoard) livesChanged() {
	for _, l := range b.listeners.Snapshot() {
		l.LivesChanged(b.lives)
	}
}

func (b *ScoreBoard) bonusChanged() {
	for _, l := range b.listeners.Snapshot() {
		l.BonusChanged(b.waveBonus, b.earlyBonus)
	}
}

func (b *ScoreBoard) notifyAll() {
	b.creditsChanged()
	b.livesChanged()
	b.bonusChanged()
}

// ResetState restores the starting resources.
func (b *ScoreBoard) ResetState() {
	b.credits = b.startCredits
	b.lives = b.startLives
	b.score = 0
	b.waveBonus = 0
	b.earlyBonus = 0
	b.notifyAll()
}

// WriteState stores the scoreboard under "scoreBoard".
func (b *ScoreBoard) WriteState(doc *kvstore.Store) {
	s := kvstore.New()
	s.PutInt("credits", b.credits)
	s.PutInt("lives", b.lives)
	s.PutInt("score", b.score)
	s.PutInt("waveBonus", b.waveBonus)
	s.PutInt("earlyBonus", b.earlyBonus)
	doc.PutStore("scoreBoard", s)
}

// ReadState restores the scoreboard. Missing fields take the starting
// values.
func (b *ScoreBoard) ReadState(doc *kvstore.Store) error {
	s, err := doc.Store("scoreBoard")
	if err != nil {
		s = kvstore.New()
	}
	b.credits = s.IntOr("credits", b.startCredits)
	b.lives = s.IntOr("lives", b.startLives)
	b.score = s.IntOr("score", 0)
	b.waveBonus = s.IntOr("waveBonus", 0)
	b.earlyBonus = s.IntOr("earlyBonus", 0)
	b.notifyAll()
	return nil
}
