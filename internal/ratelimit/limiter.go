// Package ratelimit computes dispatch delays from a target request rate.
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/sportsgraph/roster-crawler/internal/metrics"
)

// Limiter hands out the wait each dispatch must observe so the long-run
// dispatch frequency does not exceed the configured target. It is safe for
// concurrent use; the token bucket serializes internally.
type Limiter struct {
	bucket *rate.Limiter
}

// Config holds rate limiter configuration.
type Config struct {
	// RPS is the target dispatch rate. Zero or negative disables limiting.
	RPS float64
	// Burst is the bucket depth; it defaults to 1 so the very first
	// dispatch goes out immediately and the rest pace at 1/RPS.
	Burst int
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	limit := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(limit, burst)}
}

// Delay reserves the next token and returns how long the caller must wait
// before dispatching. The reservation is never cancelled; every caller is
// expected to dispatch after waiting.
func (l *Limiter) Delay() time.Duration {
	r := l.bucket.Reserve()
	if !r.OK() {
		return 0
	}
	d := r.Delay()
	if d > 0 {
		metrics.ObserveRateLimitDelay(d.Seconds())
	}
	return d
}
