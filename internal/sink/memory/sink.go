// Package memory contains an in-memory sink for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// Sink stores written outcomes for inspection.
type Sink struct {
	mu       sync.RWMutex
	outcomes []crawler.Outcome
}

// New returns a memory Sink.
func New() *Sink {
	return &Sink{}
}

// Write records the outcome.
func (s *Sink) Write(_ context.Context, outcome crawler.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
	return nil
}

// Outcomes returns a copy of the recorded writes.
func (s *Sink) Outcomes() []crawler.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}
