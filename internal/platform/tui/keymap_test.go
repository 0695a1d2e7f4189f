package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Action
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, ActionUp},
		{"w", runeKey("w"), ActionUp},
		{"j", runeKey("j"), ActionDown},
		{"a", runeKey("a"), ActionLeft},
		{"arrow right", tea.KeyMsg{Type: tea.KeyRight}, ActionRight},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, ActionCycleTower},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, ActionBuy},
		{"x", runeKey("x"), ActionSell},
		{"u", runeKey("u"), ActionUpgrade},
		{"n", runeKey("n"), ActionNextWave},
		{"p", runeKey("p"), ActionPause},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, ActionPause},
		{"f", runeKey("f"), ActionSpeed},
		{"ctrl+s", tea.KeyMsg{Type: tea.KeyCtrlS}, ActionSave},
		{"r", runeKey("r"), ActionRestart},
		{"q", runeKey("q"), ActionQuit},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{"unbound", runeKey("z"), ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keys.MapKey(tt.msg); got != tt.want {
				t.Errorf("MapKey(%q) = %d, want %d", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestHelpListsEveryBinding(t *testing.T) {
	keys := DefaultKeyMap()
	n := 0
	for _, col := range keys.FullHelp() {
		n += len(col)
	}
	if n != 14 {
		t.Errorf("FullHelp has %d bindings, want 14", n)
	}
	if len(keys.ShortHelp()) == 0 {
		t.Error("ShortHelp is empty")
	}
}
