// Package memory provides an in-memory player store for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// PlayerStore keeps player records in a map guarded by a mutex; completed
// fetch tasks call Add and Extend concurrently.
type PlayerStore struct {
	mu      sync.RWMutex
	records map[string]crawler.Player
}

// NewPlayerStore constructs a PlayerStore.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{records: make(map[string]crawler.Player)}
}

// Add upserts the record keyed by id.
func (s *PlayerStore) Add(_ context.Context, id string, player crawler.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = player
	return nil
}

// Extend merges partial into the existing record (or an empty one) and
// returns the merged result.
func (s *PlayerStore) Extend(_ context.Context, id string, partial crawler.Player) (crawler.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.records[id].Merge(partial)
	s.records[id] = merged
	return merged, nil
}

// Get returns the stored record and whether it exists.
func (s *PlayerStore) Get(id string) (crawler.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.records[id]
	return player, ok
}

// Len reports the number of stored records.
func (s *PlayerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
