package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"ghostscout/internal/opgg"
)

// HistoryDB caches fetched match histories in a local SQLite database
type HistoryDB struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultHistoryPath is where the history database lives unless configured
func DefaultHistoryPath() string {
	return filepath.Join(AppDir(), "history.db")
}

// OpenHistoryDB opens (creating if needed) the history database at path
func OpenHistoryDB(path string) (*HistoryDB, error) {
	if path == "" {
		path = DefaultHistoryPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	h := &HistoryDB{db: db, now: time.Now}
	if err := h.init(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// init creates the schema
func (h *HistoryDB) init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS match_history (
			region TEXT NOT NULL,
			riot_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (region, riot_id)
		);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns the cached history when it is younger than maxAge. A zero
// maxAge accepts any age.
func (h *HistoryDB) Get(region, riotID string, maxAge time.Duration) ([]opgg.MatchEntry, bool) {
	var payload string
	var fetchedAt int64
	err := h.db.QueryRow(
		"SELECT payload, fetched_at FROM match_history WHERE region = ? AND riot_id = ?",
		region, riotID,
	).Scan(&payload, &fetchedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[Store] History lookup failed: %v", err)
		}
		return nil, false
	}

	if maxAge > 0 && h.now().Sub(time.UnixMilli(fetchedAt)) > maxAge {
		return nil, false
	}

	var entries []opgg.MatchEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Put stores a history, replacing any previous one for the player
func (h *HistoryDB) Put(region, riotID string, entries []opgg.MatchEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = h.db.Exec(`
		INSERT INTO match_history (region, riot_id, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (region, riot_id)
		DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, region, riotID, string(payload), h.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to store history: %w", err)
	}
	return nil
}

// Prune deletes histories older than maxAge and returns how many went
func (h *HistoryDB) Prune(maxAge time.Duration) (int64, error) {
	cutoff := h.now().Add(-maxAge).UnixMilli()
	res, err := h.db.Exec("DELETE FROM match_history WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

var _ opgg.HistoryCache = (*HistoryDB)(nil)
