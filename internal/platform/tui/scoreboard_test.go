package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/storage"
)

type fakeLeaderboard map[string][]storage.Entry

func (f fakeLeaderboard) EntriesForMap(mapID string) ([]storage.Entry, error) {
	if mapID == "broken" {
		return nil, errors.New("database is locked")
	}
	return f[mapID], nil
}

func testMaps() []game.MapInfo {
	return []game.MapInfo{
		{ID: "meadow", Title: "Meadow", Order: 1},
		{ID: "canyon", Title: "Canyon", Order: 2},
		{ID: "broken", Title: "Broken", Order: 3},
	}
}

func TestScoreboardSwitchesMaps(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	board := fakeLeaderboard{
		"meadow": {{MapID: "meadow", Score: 900, Wave: 7, Lives: 3, CreatedAt: at}},
		"canyon": {
			{MapID: "canyon", Score: 500, Wave: 4, Lives: 1, CreatedAt: at},
			{MapID: "canyon", Score: 200, Wave: 2, Lives: 0, CreatedAt: at},
		},
	}
	m := NewScoreboardModel(board, testMaps(), "canyon", 100, 30)
	if len(m.entries) != 2 {
		t.Fatalf("start on canyon: %d entries, want 2", len(m.entries))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.maps[m.mapCursor].ID != "broken" || m.loadErr == nil {
		t.Fatalf("after tab: map %q err %v, want broken with error", m.maps[m.mapCursor].ID, m.loadErr)
	}
	if !strings.Contains(m.View(), "database is locked") {
		t.Error("view does not show the load error")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.maps[m.mapCursor].ID != "meadow" || len(m.entries) != 1 {
		t.Fatalf("tab wraps to meadow: map %q entries %d", m.maps[m.mapCursor].ID, len(m.entries))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(ScoreboardModel)
	if m.maps[m.mapCursor].ID != "broken" {
		t.Errorf("shift+tab: map %q, want broken", m.maps[m.mapCursor].ID)
	}
}

func TestScoreboardEmptyMap(t *testing.T) {
	m := NewScoreboardModel(fakeLeaderboard{}, testMaps(), "", 60, 20)
	if m.showSidebar {
		t.Error("narrow terminal shows sidebar")
	}
	view := m.View()
	if !strings.Contains(view, "No scores recorded yet") || !strings.Contains(view, "Meadow") {
		t.Errorf("empty view = %q", view)
	}
}

func TestEntryRows(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	rows := entryRows([]storage.Entry{{Score: 1200, Wave: 9, Lives: 4, CreatedAt: at}})
	want := []string{"#1", "1200", "9", "4", "Jan 02 15:04"}
	if len(rows) != 1 || strings.Join(rows[0], "|") != strings.Join(want, "|") {
		t.Errorf("rows = %q, want %q", rows, want)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q", got)
	}
	if got := centerText("abcdef", 3); got != "abcdef" {
		t.Errorf("centerText overflow = %q", got)
	}
}
