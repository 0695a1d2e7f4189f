package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/registry"
)

type fakeSession struct {
	snap  *game.Snapshot
	calls []string
	err   error
}

func (f *fakeSession) Snapshot() *game.Snapshot { return f.snap }

func (f *fakeSession) TowerKinds() []registry.EntityInfo {
	return []registry.EntityInfo{
		{Kind: "canon", Title: "Canon", Type: engine.TypeTower, Value: 100},
		{Kind: "laser", Title: "Laser", Type: engine.TypeTower, Value: 150},
	}
}

func (f *fakeSession) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeSession) BuyTower(kind string, plateau engine.EntityID) error {
	return f.record("buy %s %d", kind, plateau)
}
func (f *fakeSession) SellTower(id engine.EntityID) error    { return f.record("sell %d", id) }
func (f *fakeSession) UpgradeTower(id engine.EntityID) error { return f.record("upgrade %d", id) }
func (f *fakeSession) StartNextWave() error                  { return f.record("next wave") }
func (f *fakeSession) TogglePause()                          { _ = f.record("pause") }
func (f *fakeSession) CycleSpeed()                           { _ = f.record("speed") }
func (f *fakeSession) SaveGame() error                       { return f.record("save") }
func (f *fakeSession) Restart() error                        { return f.record("restart") }

// testSnapshot has a free plateau at (2,2) and a canon on the plateau
// at (6,2).
func testSnapshot() *game.Snapshot {
	return &game.Snapshot{
		MapID:         "meadow",
		MapTitle:      "Meadow",
		Width:         10,
		Height:        6,
		Credits:       120,
		Lives:         20,
		WaveNumber:    2,
		NextWaveReady: true,
		EarlyBonus:    15,
		Speed:         1,
		Entities: []game.EntityView{
			{ID: 1, Type: engine.TypePlateau, Glyph: 'o', Position: core.V(2, 2)},
			{ID: 2, Type: engine.TypePlateau, Glyph: 'o', Position: core.V(6, 2), Occupied: true},
			{
				ID: 3, Kind: "canon", Type: engine.TypeTower, Glyph: 'C', Position: core.V(6, 2),
				Level: 1, MaxLevel: 3, Damage: 10, Range: 3, UpgradeCost: 50, SellValue: 60,
			},
		},
	}
}

func newTestModel(f *fakeSession) Model {
	if f.snap == nil {
		f.snap = testSnapshot()
	}
	return NewModel(f, 10, MonochromeTheme())
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(Model); !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

func TestModelActions(t *testing.T) {
	tests := []struct {
		name      string
		keys      []tea.KeyMsg
		edit      func(*game.Snapshot)
		wantCalls []string
		wantErr   error
	}{
		{
			name:      "buy on free plateau",
			keys:      []tea.KeyMsg{keyEnter},
			wantCalls: []string{"buy canon 1"},
		},
		{
			name:    "buy without credits",
			keys:    []tea.KeyMsg{keyTab, keyEnter},
			wantErr: game.ErrNotEnoughCredits,
		},
		{
			name:    "buy on occupied plateau",
			keys:    []tea.KeyMsg{keyRight, keyEnter},
			wantErr: game.ErrPlateauTaken,
		},
		{
			name:    "buy after game over",
			keys:    []tea.KeyMsg{keyEnter},
			edit:    func(s *game.Snapshot) { s.GameOver = true },
			wantErr: game.ErrGameOver,
		},
		{
			name:      "sell tower",
			keys:      []tea.KeyMsg{keyRight, runeKey("x")},
			wantCalls: []string{"sell 3"},
		},
		{
			name:    "sell empty plateau",
			keys:    []tea.KeyMsg{runeKey("x")},
			wantErr: game.ErrNotATower,
		},
		{
			name:      "upgrade tower",
			keys:      []tea.KeyMsg{keyRight, runeKey("u")},
			wantCalls: []string{"upgrade 3"},
		},
		{
			name:    "upgrade at max level",
			keys:    []tea.KeyMsg{keyRight, runeKey("u")},
			edit:    func(s *game.Snapshot) { s.Entities[2].UpgradeCost = 0 },
			wantErr: game.ErrMaxLevel,
		},
		{
			name:    "upgrade without credits",
			keys:    []tea.KeyMsg{keyRight, runeKey("u")},
			edit:    func(s *game.Snapshot) { s.Credits = 10 },
			wantErr: game.ErrNotEnoughCredits,
		},
		{
			name:      "next wave",
			keys:      []tea.KeyMsg{runeKey("n")},
			wantCalls: []string{"next wave"},
		},
		{
			name:    "next wave not ready",
			keys:    []tea.KeyMsg{runeKey("n")},
			edit:    func(s *game.Snapshot) { s.NextWaveReady = false },
			wantErr: game.ErrWaveNotReady,
		},
		{
			name:      "pause speed save restart",
			keys:      []tea.KeyMsg{runeKey("p"), runeKey("f"), {Type: tea.KeyCtrlS}, runeKey("r")},
			wantCalls: []string{"pause", "speed", "save", "restart"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSession{snap: testSnapshot()}
			if tt.edit != nil {
				tt.edit(f.snap)
			}
			m := press(t, newTestModel(f), tt.keys...)

			if strings.Join(f.calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Errorf("calls = %q, want %q", f.calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				want := strings.TrimPrefix(tt.wantErr.Error(), "game: ")
				if !m.statusErr || m.status != want {
					t.Errorf("status = %q (error %v), want error %q", m.status, m.statusErr, want)
				}
			} else if m.statusErr {
				t.Errorf("unexpected error status %q", m.status)
			}
		})
	}
}

func TestModelShowsSessionError(t *testing.T) {
	f := &fakeSession{err: errors.New("disk full")}
	m := press(t, newTestModel(f), tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.statusErr || m.status != "disk full" {
		t.Errorf("status = %q (error %v), want error %q", m.status, m.statusErr, "disk full")
	}
}

func TestModelStatusExpires(t *testing.T) {
	f := &fakeSession{}
	m := press(t, newTestModel(f), keyEnter)
	if m.status == "" {
		t.Fatal("expected a status after buying")
	}
	for range 3 * m.fps {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	if m.status != "" {
		t.Errorf("status = %q after expiry, want empty", m.status)
	}
}

func TestModelTickRefreshesSnapshot(t *testing.T) {
	f := &fakeSession{}
	m := press(t, newTestModel(f), keyRight)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	// A new map with a single plateau pulls the cursor back.
	next := testSnapshot()
	next.Entities = next.Entities[:1]
	next.Credits = 999
	f.snap = next

	updated, cmd := m.Update(TickMsg{})
	m = updated.(Model)
	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}
	if m.snap.Credits != 999 {
		t.Errorf("snapshot credits = %d, want 999", m.snap.Credits)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(&fakeSession{})
	next, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if v := next.(Model).View(); v != "" {
		t.Errorf("View after quit = %q, want empty", v)
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(&fakeSession{})
	m = press(t, m, keyRight)
	view := m.View()
	for _, want := range []string{"Meadow", "Credits", "120", "Wave", "Canon", "upgrade 50", "sell 60"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
	if strings.Contains(view, "GAME OVER") {
		t.Error("view shows game over while playing")
	}
}

func TestModelViewGameOver(t *testing.T) {
	f := &fakeSession{snap: testSnapshot()}
	f.snap.GameOver = true
	f.snap.FinalScore = 4242
	view := newTestModel(f).View()
	if !strings.Contains(view, "GAME OVER") || !strings.Contains(view, "4242") {
		t.Errorf("game over view = %q", view)
	}
}

func TestModelWithoutSnapshot(t *testing.T) {
	f := &fakeSession{}
	m := NewModel(f, 10, DefaultTheme())
	if got := m.View(); !strings.Contains(got, "loading") {
		t.Errorf("View = %q, want loading", got)
	}
	m = press(t, m, keyEnter)
	if len(f.calls) != 0 {
		t.Errorf("calls = %q, want none", f.calls)
	}
}
