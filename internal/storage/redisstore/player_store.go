// Package redisstore stores player records in Redis as JSON values.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// Config captures connection parameters for the Redis player store.
type Config struct {
	Addr   string
	Prefix string
	TTL    time.Duration
}

// PlayerStore persists players under prefix+id keys. Extend is a plain
// get-merge-set; the crawl writes each player id from one completion at a
// time, so no WATCH round-trip is needed.
type PlayerStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPlayerStore initializes a Redis-backed store.
func NewPlayerStore(cfg Config) *PlayerStore {
	return &PlayerStore{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr}),
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

// Close closes the Redis client.
func (s *PlayerStore) Close() error {
	return s.client.Close()
}

// Add upserts the record keyed by id.
func (s *PlayerStore) Add(ctx context.Context, id string, player crawler.Player) error {
	payload, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("marshal player: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("set player %s: %w", id, err)
	}
	return nil
}

// Extend merges partial into the stored record and returns the result.
func (s *PlayerStore) Extend(ctx context.Context, id string, partial crawler.Player) (crawler.Player, error) {
	var existing crawler.Player
	val, err := s.client.Get(ctx, s.prefix+id).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// First sighting; merge into the zero record.
	case err != nil:
		return crawler.Player{}, fmt.Errorf("get player %s: %w", id, err)
	default:
		if err := json.Unmarshal([]byte(val), &existing); err != nil {
			return crawler.Player{}, fmt.Errorf("decode player %s: %w", id, err)
		}
	}

	merged := existing.Merge(partial)
	if err := s.Add(ctx, id, merged); err != nil {
		return crawler.Player{}, err
	}
	return merged, nil
}
