package engine

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

const testMap = `
title: Test
width: 6
height: 4
plateaus:
  - {kind: basicPlateau, x: 1, y: 1}
  - {kind: basicPlateau, x: 2.5, y: 3}
paths:
  - waypoints:
      - {x: 0, y: 2}
      - {x: 3, y: 2}
      - {x: 3, y: 6}
`

func mustDoc(t *testing.T, src string) *kvstore.Store {
	t.Helper()
	doc, err := kvstore.FromBytes([]byte(src))
	if err != nil {
		t.Fatalf("FromBytes() failed: %v", err)
	}
	return doc
}

func TestNewGameMap(t *testing.T) {
	m, err := NewGameMap(mustDoc(t, testMap))
	if err != nil {
		t.Fatalf("NewGameMap() failed: %v", err)
	}
	if m.Title != "Test" || m.Width != 6 || m.Height != 4 {
		t.Errorf("header = %q %dx%d", m.Title, m.Width, m.Height)
	}
	if len(m.Plateaus) != 2 {
		t.Fatalf("plateaus = %d, want 2", len(m.Plateaus))
	}
	if m.Plateaus[1].Position != core.V(2.5, 3) {
		t.Errorf("plateau position = %v", m.Plateaus[1].Position)
	}
	p, ok := m.Path(0)
	if !ok {
		t.Fatal("Path(0) missing")
	}
	if got := p.Length(); got != 7 {
		t.Errorf("path length = %v, want 7", got)
	}
	if _, ok := m.Path(1); ok {
		t.Error("Path(1) should not exist")
	}
}

func TestNewGameMapErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no width", "height: 3\npaths: []\n"},
		{"zero height", "width: 3\nheight: 0\npaths: []\n"},
		{"no paths", "width: 3\nheight: 3\n"},
		{"short path", "width: 3\nheight: 3\npaths:\n  - waypoints: [{x: 0, y: 0}]\n"},
		{"plateau without kind", "width: 3\nheight: 3\nplateaus: [{x: 1, y: 1}]\npaths: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGameMap(mustDoc(t, tt.src))
			if !errors.Is(err, ErrBadMap) {
				t.Errorf("NewGameMap() error = %v, want ErrBadMap", err)
			}
		})
	}
}

const testWaves = `
waves:
  - waveReward: 20
    enemies:
      - {kind: soldier, delay: 0}
      - {kind: soldier, delay: 1.5, pathIndex: 1, offsetX: 0.2}
  - extend: 2
    maxExtend: 4
    healthMultiplier: 1.5
    enemies:
      - {kind: blob}
`

func TestParseWaveInfos(t *testing.T) {
	waves, err := ParseWaveInfos(mustDoc(t, testWaves))
	if err != nil {
		t.Fatalf("ParseWaveInfos() failed: %v", err)
	}
	if len(waves) != 2 {
		t.Fatalf("waves = %d, want 2", len(waves))
	}
	w := waves[0]
	if w.WaveReward != 20 || len(w.Enemies) != 2 {
		t.Errorf("wave 0 = %+v", w)
	}
	e := w.Enemies[1]
	if e.Kind != "soldier" || e.Delay != 1.5 || e.PathIndex != 1 || e.Offset != core.V(0.2, 0) {
		t.Errorf("enemy = %+v", e)
	}
	if waves[1].Extend != 2 || waves[1].MaxExtend != 4 || waves[1].HealthMultiplier != 1.5 {
		t.Errorf("wave 1 = %+v", waves[1])
	}
}

func TestParseWaveInfosErrors(t *testing.T) {
	for _, src := range []string{"{}", "waves: []", "waves: [{enemies: [{delay: 1}]}]"} {
		if _, err := ParseWaveInfos(mustDoc(t, src)); !errors.Is(err, ErrBadWaves) {
			t.Errorf("ParseWaveInfos(%q) error = %v, want ErrBadWaves", src, err)
		}
	}
}

func TestRound(t *testing.T) {
	waves := []WaveInfo{{WaveReward: 1}, {WaveReward: 2}}
	tests := []struct {
		number, reward, cycle int
	}{
		{0, 1, 0},
		{1, 2, 0},
		{2, 1, 1},
		{5, 2, 2},
	}
	for _, tt := range tests {
		w, cycle := Round(waves, tt.number)
		if w.WaveReward != tt.reward || cycle != tt.cycle {
			t.Errorf("Round(%d) = reward %d cycle %d, want %d %d", tt.number, w.WaveReward, cycle, tt.reward, tt.cycle)
		}
	}
}
