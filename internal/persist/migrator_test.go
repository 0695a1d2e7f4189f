package persist

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

const saveV1 = `
mapId: original
credits: 500
lives: 20
score: 1200
waveBonus: 30
earlyBonus: 5
waveNumber: 4
nextWaveReady: true
finalScore: 0
entities:
  - {name: basicPlateau, x: 1, y: 2}
  - {name: canon, x: 1, y: 2, level: 2}
`

const saveV2 = `
mapId: original
scoreBoard: {credits: 500, lives: 20, score: 1200, waveBonus: 30, earlyBonus: 5}
waveNumber: 4
nextWaveReady: true
finalScore: 0
entities:
  - {kind: basicPlateau, x: 1, y: 2}
  - {kind: canon, x: 1, y: 2, level: 2}
`

const saveV3 = `
version: 3
mapId: original
gameState: {finalScore: 0, started: true}
scoreBoard: {credits: 500, lives: 20, score: 1200, waveBonus: 30, earlyBonus: 5}
waveManager: {waveNumber: 4, nextWaveReady: true}
entities:
  - {kind: basicPlateau, x: 1, y: 2}
  - {kind: canon, x: 1, y: 2, level: 2}
`

func parse(t *testing.T, src string) *kvstore.Store {
	t.Helper()
	doc, err := kvstore.FromBytes([]byte(src))
	if err != nil {
		t.Fatalf("FromBytes() failed: %v", err)
	}
	return doc
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"v1", saveV1, 1},
		{"v2", saveV2, 2},
		{"v3", saveV3, 3},
		{"future", "version: 9\nmapId: x\n", 9},
		{"bad version", "version: nine\nmapId: x\n", 0},
		{"empty", "{}", 0},
		{"no map", "lives: 1\ncredits: 2\n", 0},
		{"map only", "mapId: x\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectVersion(parse(t, tt.src)); got != tt.want {
				t.Errorf("DetectVersion() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMigrateHistoricalLayouts(t *testing.T) {
	for _, src := range []string{saveV1, saveV2, saveV3} {
		doc := parse(t, src)
		if err := NewMigrator(nil).Migrate(doc); err != nil {
			t.Fatalf("Migrate() failed: %v", err)
		}
		checkCurrent(t, doc)
	}
}

func checkCurrent(t *testing.T, doc *kvstore.Store) {
	t.Helper()

	if v, _ := doc.Int(VersionKey); v != CurrentVersion {
		t.Errorf("version = %d, want %d", v, CurrentVersion)
	}
	if id, _ := doc.String("mapId"); id != "original" {
		t.Errorf("mapId = %q", id)
	}
	for _, key := range []string{"credits", "lives", "score", "waveNumber", "nextWaveReady", "finalScore"} {
		if doc.Has(key) {
			t.Errorf("flat key %q left at top level", key)
		}
	}

	board, err := doc.Store("scoreBoard")
	if err != nil {
		t.Fatalf("scoreBoard: %v", err)
	}
	if board.IntOr("credits", -1) != 500 || board.IntOr("lives", -1) != 20 || board.IntOr("earlyBonus", -1) != 5 {
		t.Errorf("scoreBoard = %v", board.Keys())
	}

	waves, err := doc.Store("waveManager")
	if err != nil {
		t.Fatalf("waveManager: %v", err)
	}
	if waves.IntOr("waveNumber", -1) != 4 || !waves.BoolOr("nextWaveReady", false) {
		t.Error("wave progress not migrated")
	}

	state, err := doc.Store("gameState")
	if err != nil {
		t.Fatalf("gameState: %v", err)
	}
	if !state.BoolOr("started", false) {
		t.Error("gameState.started = false for a game past wave 0")
	}

	entities, err := doc.StoreList("entities")
	if err != nil {
		t.Fatalf("entities: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(entities))
	}
	for i, want := range []string{"basicPlateau", "canon"} {
		if kind, _ := entities[i].String("kind"); kind != want {
			t.Errorf("entities[%d].kind = %q, want %q", i, kind, want)
		}
		if entities[i].Has("name") {
			t.Errorf("entities[%d] still has name", i)
		}
	}
	if entities[1].IntOr("level", 0) != 2 {
		t.Error("entity fields lost in migration")
	}
}

func TestMigrateCurrentIsUntouched(t *testing.T) {
	doc := parse(t, saveV3)
	before := doc.Clone()
	if err := NewMigrator(nil).Migrate(doc); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if !doc.Equal(before) {
		t.Error("current document was modified")
	}
}

func TestMigrateUnknownLeavesDocument(t *testing.T) {
	tests := []string{
		"{}",
		"foo: bar\n",
		"version: 4\nmapId: x\n",
		// v1 shape with an entity missing its tag
		"mapId: x\nlives: 1\ncredits: 2\nentities: [{x: 1, y: 1}]\n",
		// v2 shape with a mistyped wave number
		"mapId: x\nscoreBoard: {lives: 1}\nwaveNumber: abc\n",
	}
	for _, src := range tests {
		doc := parse(t, src)
		before := doc.Clone()
		err := NewMigrator(nil).Migrate(doc)
		if !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("Migrate(%q) error = %v, want ErrUnknownVersion", src, err)
		}
		if !doc.Equal(before) {
			t.Errorf("Migrate(%q) modified the document", src)
		}
	}
}
