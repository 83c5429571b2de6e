// Package fs writes outcome records to a JSON-lines file on disk.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

// Sink appends one JSON document per outcome to a single file. Writes are
// serialized with a mutex since completed tasks may fan in concurrently.
type Sink struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// New opens (or creates) the output file in append mode.
func New(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open sink file %s: %w", path, err)
	}
	return &Sink{file: file, encoder: json.NewEncoder(file)}, nil
}

// Write appends the outcome as one JSON line.
func (s *Sink) Write(ctx context.Context, outcome crawler.Outcome) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(outcome); err != nil {
		return fmt.Errorf("encode outcome %s: %w", outcome.URL, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close sink file: %w", err)
	}
	return nil
}
