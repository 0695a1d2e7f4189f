package game

import (
	"testing"

	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

type boardEvents struct {
	credits, lives []int
	bonus          [][2]int
}

func (b *boardEvents) CreditsChanged(c int)         { b.credits = append(b.credits, c) }
func (b *boardEvents) LivesChanged(l int)           { b.lives = append(b.lives, l) }
func (b *boardEvents) BonusChanged(wave, early int) { b.bonus = append(b.bonus, [2]int{wave, early}) }

func TestScoreBoardCredits(t *testing.T) {
	b := NewScoreBoard(100, 5)
	ev := &boardEvents{}
	b.AddListener(ev)

	if b.TakeCredits(150) {
		t.Fatal("TakeCredits() beyond the balance succeeded")
	}
	if !b.TakeCredits(60) {
		t.Fatal("TakeCredits() failed")
	}
	b.GiveCredits(30, true)
	b.GiveCredits(10, false)

	if b.Credits() != 80 || b.Score() != 30 {
		t.Errorf("credits/score = %d/%d, want 80/30", b.Credits(), b.Score())
	}
	if len(ev.credits) != 3 || ev.credits[2] != 80 {
		t.Errorf("credit events = %v", ev.credits)
	}

	b.SetBonus(20, 5)
	b.SetBonus(20, 5)
	if len(ev.bonus) != 1 {
		t.Errorf("bonus events = %v, want one", ev.bonus)
	}

	b.RemoveListener(ev)
	b.TakeLives(1)
	if len(ev.lives) != 0 {
		t.Errorf("removed listener got %v", ev.lives)
	}
}

func TestScoreBoardState(t *testing.T) {
	b := NewScoreBoard(100, 5)
	b.GiveCredits(50, true)
	b.TakeLives(2)
	b.SetBonus(7, 3)

	doc := kvstore.New()
	b.WriteState(doc)

	other := NewScoreBoard(100, 5)
	if err := other.ReadState(doc); err != nil {
		t.Fatalf("ReadState() failed: %v", err)
	}
	if other.Credits() != 150 || other.Lives() != 3 || other.Score() != 50 ||
		other.WaveBonus() != 7 || other.EarlyBonus() != 3 {
		t.Errorf("read back %d/%d/%d/%d/%d", other.Credits(), other.Lives(), other.Score(),
			other.WaveBonus(), other.EarlyBonus())
	}

	other.ResetState()
	if other.Credits() != 100 || other.Lives() != 5 || other.Score() != 0 {
		t.Errorf("after reset %d/%d/%d", other.Credits(), other.Lives(), other.Score())
	}

	if err := other.ReadState(kvstore.New()); err != nil {
		t.Fatalf("ReadState() without scoreBoard failed: %v", err)
	}
	if other.Credits() != 100 {
		t.Errorf("missing scoreBoard gave %d credits, want the start value", other.Credits())
	}
}
