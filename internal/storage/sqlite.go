// Package storage provides the SQLite-based leaderboard.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// MaxEntriesPerMap is the number of entries kept per map.
const MaxEntriesPerMap = 10

// Store manages the SQLite database connection for the leaderboard.
type Store struct {
	db *sql.DB
}

// Entry is one finished game on the leaderboard.
type Entry struct {
	ID        int64
	MapID     string
	Score     int
	Wave      int
	Lives     int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS leaderboard (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			map_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			wave INTEGER NOT NULL DEFAULT 0,
			lives INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_leaderboard_top ON leaderboard(map_id, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddEntry records a finished game and trims the map's entries to the
// best MaxEntriesPerMap. Returns the ID of the inserted record.
func (s *Store) AddEntry(mapID string, score, wave, lives int) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO leaderboard (map_id, score, wave, lives) VALUES (?, ?, ?, ?)",
		mapID, score, wave, lives,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	_, err = tx.Exec(
		`DELETE FROM leaderboard
		 WHERE map_id = ? AND id NOT IN (
			SELECT id FROM leaderboard WHERE map_id = ?
			ORDER BY score DESC, id ASC
			LIMIT ?
		 )`,
		mapID, mapID, MaxEntriesPerMap,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot trim leaderboard: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit entry: %w", err)
	}
	return id, nil
}

// RecordScore adds an entry, discarding its ID.
func (s *Store) RecordScore(mapID string, score, wave, lives int) error {
	_, err := s.AddEntry(mapID, score, wave, lives)
	return err
}

// EntriesForMap retrieves the entries of one map, best first.
func (s *Store) EntriesForMap(mapID string) ([]Entry, error) {
	return s.query(
		`SELECT id, map_id, score, wave, lives, created_at
		 FROM leaderboard
		 WHERE map_id = ?
		 ORDER BY score DESC, id ASC`,
		mapID,
	)
}

// AllEntries retrieves every entry grouped by map, best first.
func (s *Store) AllEntries() ([]Entry, error) {
	return s.query(
		`SELECT id, map_id, score, wave, lives, created_at
		 FROM leaderboard
		 ORDER BY map_id ASC, score DESC, id ASC`,
	)
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.MapID, &e.Score, &e.Wave, &e.Lives, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given map.
// Returns 0 if no entries exist.
func (s *Store) HighScore(mapID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM leaderboard WHERE map_id = ?",
		mapID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// Clear deletes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM leaderboard"); err != nil {
		return fmt.Errorf("storage: cannot clear leaderboard: %w", err)
	}
	return nil
}

// ClearMap deletes the entries of one map.
func (s *Store) ClearMap(mapID string) error {
	_, err := s.db.Exec("DELETE FROM leaderboard WHERE map_id = ?", mapID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear leaderboard: %w", err)
	}
	return nil
}

// MapStats contains aggregated statistics for a map.
type MapStats struct {
	MapID      string
	GamesCount int
	HighScore  int
	AvgScore   float64
	BestWave   int
	LastPlayed time.Time
}

// GetMapStats retrieves aggregated statistics for a specific map.
func (s *Store) GetMapStats(mapID string) (*MapStats, error) {
	stats := &MapStats{MapID: mapID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(MAX(wave), 0), MAX(created_at)
		 FROM leaderboard WHERE map_id = ?`,
		mapID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.BestWave, &lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get map stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
