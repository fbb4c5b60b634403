package store

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghostscout/internal/opgg"
)

// PgMirror copies each harvested counter cache into Postgres so other tools
// can query it with SQL
type PgMirror struct {
	pool *pgxpool.Pool
}

// OpenPgMirror connects to databaseURL and makes sure the table exists
func OpenPgMirror(ctx context.Context, databaseURL string) (*PgMirror, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS counter_entries (
			counter_key TEXT NOT NULL,
			champion_key TEXT NOT NULL,
			win_rate DOUBLE PRECISION NOT NULL,
			games BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (counter_key, champion_key)
		)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PgMirror{pool: pool}, nil
}

// counterRow is one row of counter_entries
type counterRow struct {
	CounterKey  string
	ChampionKey string
	WinRate     float64
	Games       int64
	UpdatedAt   time.Time
}

// counterRows flattens a cache into rows ordered by key. A champion listed
// twice under one key keeps its last entry.
func counterRows(cache *opgg.CounterCache) []counterRow {
	sec, frac := math.Modf(cache.UpdatedAt)
	updatedAt := time.Unix(int64(sec), int64(frac*1e9)).UTC()

	keys := make([]string, 0, len(cache.Counters))
	for k := range cache.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows []counterRow
	for _, key := range keys {
		index := make(map[string]int)
		for _, e := range cache.Counters[key] {
			row := counterRow{CounterKey: key, ChampionKey: e.Key, WinRate: e.WinRate, Games: e.Games, UpdatedAt: updatedAt}
			if i, ok := index[e.Key]; ok {
				rows[i] = row
				continue
			}
			index[e.Key] = len(rows)
			rows = append(rows, row)
		}
	}
	return rows
}

// Push replaces the table contents with cache in one transaction
func (m *PgMirror) Push(ctx context.Context, cache *opgg.CounterCache) error {
	rows := counterRows(cache)

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM counter_entries`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO counter_entries (counter_key, champion_key, win_rate, games, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, r.CounterKey, r.ChampionKey, r.WinRate, r.Games, r.UpdatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert counter row: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Printf("[Store] Mirrored %d counter rows to Postgres", len(rows))
	return nil
}

// Close closes the connection pool
func (m *PgMirror) Close() {
	m.pool.Close()
}

// CacheSaver persists a harvest to the cache file and, when configured, the
// Postgres mirror. Only the file write decides success.
type CacheSaver struct {
	File          *CacheFile
	Mirror        *PgMirror
	MirrorTimeout time.Duration
}

// Save implements opgg.Saver
func (s *CacheSaver) Save(cache *opgg.CounterCache) error {
	if err := s.File.Save(cache); err != nil {
		return err
	}
	if s.Mirror == nil {
		return nil
	}

	timeout := s.MirrorTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Mirror.Push(ctx, cache); err != nil {
		log.Printf("[Store] Postgres mirror failed: %v", err)
	}
	return nil
}

var _ opgg.Saver = (*CacheSaver)(nil)
