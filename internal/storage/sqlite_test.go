package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestLeaderboardAddAndRetrieve(t *testing.T) {
	store := openTemp(t)

	for _, score := range []int{100, 50, 200} {
		if _, err := store.AddEntry("original", score, 3, 1); err != nil {
			t.Fatalf("AddEntry() failed: %v", err)
		}
	}
	if _, err := store.AddEntry("waiting", 500, 7, 0); err != nil {
		t.Fatalf("AddEntry() failed: %v", err)
	}

	entries, err := store.EntriesForMap("original")
	if err != nil {
		t.Fatalf("EntriesForMap() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	// Should be sorted descending
	if entries[0].Score != 200 || entries[1].Score != 100 || entries[2].Score != 50 {
		t.Errorf("Entries not in expected order: %v", entries)
	}
	if entries[0].MapID != "original" || entries[0].Wave != 3 || entries[0].Lives != 1 {
		t.Errorf("Entry fields not stored: %+v", entries[0])
	}

	all, err := store.AllEntries()
	if err != nil {
		t.Fatalf("AllEntries() failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 entries in total, got %d", len(all))
	}
}

func TestLeaderboardKeepsTopPerMap(t *testing.T) {
	store := openTemp(t)

	for i := 0; i < MaxEntriesPerMap+5; i++ {
		if err := store.RecordScore("original", (i+1)*10, i, 0); err != nil {
			t.Fatalf("RecordScore() failed: %v", err)
		}
	}
	store.RecordScore("other", 1, 0, 0)

	entries, err := store.EntriesForMap("original")
	if err != nil {
		t.Fatalf("EntriesForMap() failed: %v", err)
	}
	if len(entries) != MaxEntriesPerMap {
		t.Fatalf("Expected %d entries, got %d", MaxEntriesPerMap, len(entries))
	}
	if entries[0].Score != 150 || entries[len(entries)-1].Score != 60 {
		t.Errorf("Wrong entries kept: first %d last %d", entries[0].Score, entries[len(entries)-1].Score)
	}

	other, _ := store.EntriesForMap("other")
	if len(other) != 1 {
		t.Error("Trimming one map affected another")
	}
}

func TestLeaderboardHighScore(t *testing.T) {
	store := openTemp(t)

	high, err := store.HighScore("original")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty map, got %d", high)
	}

	store.RecordScore("original", 100, 1, 0)
	store.RecordScore("original", 300, 2, 0)
	store.RecordScore("original", 200, 1, 0)

	high, err = store.HighScore("original")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}

	stats, err := store.GetMapStats("original")
	if err != nil {
		t.Fatalf("GetMapStats() failed: %v", err)
	}
	if stats.GamesCount != 3 || stats.HighScore != 300 || stats.BestWave != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestLeaderboardClear(t *testing.T) {
	store := openTemp(t)

	store.RecordScore("original", 100, 1, 0)
	store.RecordScore("waiting", 300, 1, 0)

	if err := store.ClearMap("original"); err != nil {
		t.Fatalf("ClearMap() failed: %v", err)
	}
	if entries, _ := store.EntriesForMap("original"); len(entries) != 0 {
		t.Errorf("Expected 0 entries after ClearMap, got %d", len(entries))
	}
	if entries, _ := store.EntriesForMap("waiting"); len(entries) != 1 {
		t.Error("ClearMap affected another map")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if all, _ := store.AllEntries(); len(all) != 0 {
		t.Errorf("Expected empty leaderboard, got %d entries", len(all))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
