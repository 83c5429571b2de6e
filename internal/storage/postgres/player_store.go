// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PlayerStoreConfig controls the Postgres connection pool used for player rows.
type PlayerStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PlayerStore persists player records as JSONB rows keyed by the player URL.
// Expected schema:
//
//	CREATE TABLE players (
//	    id          TEXT PRIMARY KEY,
//	    data        JSONB NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PlayerStore struct {
	pool  dbPool
	table string
}

// NewPlayerStore connects a pool and returns the store.
func NewPlayerStore(ctx context.Context, cfg PlayerStoreConfig) (*PlayerStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage.postgres.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PlayerStore{pool: pool, table: table}, nil
}

// NewPlayerStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewPlayerStoreWithPool(pool dbPool, table string) (*PlayerStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &PlayerStore{pool: pool, table: name}, nil
}

// Close releases the underlying pool resources.
func (s *PlayerStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Add upserts the player row keyed by id.
func (s *PlayerStore) Add(ctx context.Context, id string, player crawler.Player) error {
	if id == "" {
		return fmt.Errorf("player id is required")
	}
	data, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("marshal player: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, s.table)
	if _, err := s.pool.Exec(ctx, query, id, data); err != nil {
		return fmt.Errorf("upsert player %s: %w", id, err)
	}
	return nil
}

// Extend reads the current row, merges the partial record into it, writes the
// result back and returns it. A missing row starts from the empty record.
func (s *PlayerStore) Extend(ctx context.Context, id string, partial crawler.Player) (crawler.Player, error) {
	if id == "" {
		return crawler.Player{}, fmt.Errorf("player id is required")
	}

	var raw []byte
	selectQuery := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, s.table)
	err := s.pool.QueryRow(ctx, selectQuery, id).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// First sighting of this player; merge into the zero record.
	case err != nil:
		return crawler.Player{}, fmt.Errorf("read player %s: %w", id, err)
	}

	var existing crawler.Player
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &existing); err != nil {
			return crawler.Player{}, fmt.Errorf("decode player %s: %w", id, err)
		}
	}

	merged := existing.Merge(partial)
	if err := s.Add(ctx, id, merged); err != nil {
		return crawler.Player{}, err
	}
	return merged, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = "players"
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}
