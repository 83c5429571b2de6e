// Package gcs archives fetched pages in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// snapshotContentType is assumed when the caller does not say otherwise;
// the crawl only ever archives HTML bodies.
const snapshotContentType = "text/html; charset=utf-8"

// Config names the bucket snapshots land in.
type Config struct {
	Bucket string
}

// Archive writes page snapshots to one bucket. The crawl never reads them
// back; they exist for offline reprocessing.
type Archive struct {
	bucket *storage.BucketHandle
	name   string
}

// New builds an Archive on an existing GCS client.
func New(client *storage.Client, cfg Config) (*Archive, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket name is required")
	}
	return &Archive{bucket: client.Bucket(cfg.Bucket), name: cfg.Bucket}, nil
}

// PutObject uploads one snapshot and returns its gs:// URI.
func (a *Archive) PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("snapshot path is empty")
	}
	if contentType == "" {
		contentType = snapshotContentType
	}

	w := a.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	// Page bodies are small; skip resumable-upload chunking and send the
	// whole snapshot in one request.
	w.ChunkSize = 0

	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("commit snapshot %s: %w", path, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.name, path), nil
}
