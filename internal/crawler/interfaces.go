package crawler

import (
	"context"
	"io"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Parser turns a fetched body and its post-redirect URL into a FetchResult.
// It must fail with an error on content it does not recognize.
type Parser interface {
	Parse(body []byte, finalURL string) (FetchResult, error)
}

// DelaySource returns the wait before the next dispatch so that long-run
// dispatch frequency stays under the configured target rate. Implementations
// are stateful across calls.
type DelaySource interface {
	Delay() time.Duration
}

// Sink persists terminal outcomes. Write failures are not retried by the
// scheduler; they abort the run.
type Sink interface {
	Write(ctx context.Context, outcome Outcome) error
}

// PlayerStore is the entity storage consumed by the result dispatcher. Both
// operations must tolerate concurrent invocation from completed tasks.
type PlayerStore interface {
	// Add upserts the record keyed by id. Idempotent.
	Add(ctx context.Context, id string, player Player) error
	// Extend merges the non-empty fields of partial into the record keyed
	// by id, creating it if absent, and returns the merged record.
	Extend(ctx context.Context, id string, partial Player) (Player, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}
