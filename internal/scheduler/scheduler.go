// Package scheduler drives the crawl: it seeds initial work, keeps fetches
// inside the concurrency and rate limits, retries transient failures with a
// bounded budget, dedups URLs for the lifetime of a run, and routes finished
// results to the player store and the outcome sink.
package scheduler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
	"github.com/sportsgraph/roster-crawler/internal/metrics"
)

// Config controls one crawl run. All values are fixed at construction time.
type Config struct {
	Seeds       []string
	MaxParallel int
	MaxTries    int
	// ArchivePrefix is the blob path prefix for raw page snapshots. Only
	// used when an archive store is attached.
	ArchivePrefix string
}

// completion carries one finished fetch task back to the control loop.
type completion struct {
	item   *crawler.Item
	result crawler.FetchResult
	err    error
}

// Scheduler is the single-owner control structure for a run. Run executes on
// one goroutine; fetch tasks only touch their own Item and the results
// channel, so seen, inFlight and Item fields need no locking.
type Scheduler struct {
	fetcher crawler.Fetcher
	parser  crawler.Parser
	sink    crawler.Sink
	players crawler.PlayerStore
	delays  crawler.DelaySource
	archive crawler.BlobStore
	logger  *zap.Logger
	cfg     Config

	permits  chan struct{}
	results  chan completion
	seen     map[string]struct{}
	inFlight int
	stats    Stats
}

// New constructs a Scheduler. The archive store is optional; pass nil to
// disable page snapshots.
func New(
	fetcher crawler.Fetcher,
	parser crawler.Parser,
	sink crawler.Sink,
	players crawler.PlayerStore,
	delays crawler.DelaySource,
	archive crawler.BlobStore,
	cfg Config,
	logger *zap.Logger,
) (*Scheduler, error) {
	if fetcher == nil || parser == nil || sink == nil || players == nil || delays == nil {
		return nil, fmt.Errorf("fetcher, parser, sink, player store and delay source are required")
	}
	if cfg.MaxParallel <= 0 {
		return nil, fmt.Errorf("max parallel must be > 0")
	}
	if cfg.MaxTries <= 0 {
		return nil, fmt.Errorf("max tries must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		fetcher: fetcher,
		parser:  parser,
		sink:    sink,
		players: players,
		delays:  delays,
		archive: archive,
		logger:  logger,
		cfg:     cfg,
		permits: make(chan struct{}, cfg.MaxParallel),
		// Buffered so the tasks currently holding permits can post without
		// a receiver. Tasks queued behind the permits are handed off to
		// drainOutstanding when the loop aborts.
		results: make(chan completion, cfg.MaxParallel),
		seen:    make(map[string]struct{}),
	}, nil
}

// StatsView returns a live read-only view of the run counters.
func (s *Scheduler) StatsView() *Stats {
	return &s.stats
}

// Run seeds the configured URLs and processes completions in the order they
// finish until no work remains. It returns a non-nil error only for fatal
// conditions: a sink write failure or an outcome invariant violation.
// Transient fetch failures never abort the run.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, url := range s.cfg.Seeds {
		if _, ok := s.seen[url]; ok {
			continue
		}
		s.submit(ctx, &crawler.Item{URL: url})
	}

	for s.inFlight > 0 {
		c := <-s.results
		s.inFlight--
		metrics.SetInFlight(s.inFlight)
		s.stats.inFlight.Store(int64(s.inFlight))

		if c.err != nil {
			if err := s.handleFailure(ctx, c.item, c.err); err != nil {
				s.drainOutstanding()
				return err
			}
			continue
		}

		nextURLs, err := s.dispatchResult(ctx, c.item, c.result)
		if err != nil {
			s.drainOutstanding()
			return err
		}

		s.logger.Info("success",
			zap.String("url", c.item.URL),
			zap.Int("tries", c.item.Tries),
			zap.Duration("duration", time.Since(c.item.DispatchedAt)),
		)
		metrics.PageProcessed(metrics.OutcomeSuccess)
		s.stats.succeeded.Add(1)

		for _, url := range nextURLs {
			if _, ok := s.seen[url]; ok {
				continue
			}
			s.submit(ctx, &crawler.Item{URL: url})
		}
	}
	return nil
}

// drainOutstanding consumes the completions of tasks still running after a
// fatal abort. Without it, tasks waiting on a permit would eventually run and
// block forever on a full results channel. Runs in the background; the run's
// answer is already decided.
func (s *Scheduler) drainOutstanding() {
	remaining := s.inFlight
	go func() {
		for range remaining {
			<-s.results
		}
	}()
}

// submit is the single choke point for starting work: it bumps the attempt
// counter, stamps the dispatch time, marks the URL seen and launches the
// fetch task. Called only from the control goroutine.
func (s *Scheduler) submit(ctx context.Context, item *crawler.Item) {
	item.Tries++
	item.DispatchedAt = time.Now()
	s.seen[item.URL] = struct{}{}
	s.inFlight++
	metrics.SetInFlight(s.inFlight)
	s.stats.dispatched.Add(1)
	s.stats.inFlight.Store(int64(s.inFlight))

	s.logger.Info("start", zap.String("url", item.URL), zap.Int("tries", item.Tries))

	go func() {
		result, err := s.runTask(ctx, item)
		s.results <- completion{item: item, result: result, err: err}
	}()
}

// runTask executes one fetch attempt: acquire a permit, wait out the rate
// limiter, fetch, optionally archive, parse. The permit is held for the whole
// attempt including the rate delay, so the limiter throttles dispatch starts
// while the permit caps concurrent execution.
func (s *Scheduler) runTask(ctx context.Context, item *crawler.Item) (crawler.FetchResult, error) {
	select {
	case s.permits <- struct{}{}:
	case <-ctx.Done():
		return crawler.FetchResult{}, fmt.Errorf("permit wait: %w", ctx.Err())
	}
	defer func() { <-s.permits }()

	if delay := s.delays.Delay(); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return crawler.FetchResult{}, fmt.Errorf("rate delay wait: %w", ctx.Err())
		}
	}

	start := time.Now()
	resp, err := s.fetcher.Fetch(ctx, item.URL)
	metrics.ObserveFetchDuration(time.Since(start).Seconds())
	if err != nil {
		return crawler.FetchResult{}, fmt.Errorf("fetch %s: %w", item.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return crawler.FetchResult{}, fmt.Errorf("fetch %s: unexpected status %d", item.URL, resp.StatusCode)
	}

	s.archivePage(ctx, resp)

	result, err := s.parser.Parse(resp.Body, resp.URL)
	if err != nil {
		return crawler.FetchResult{}, fmt.Errorf("parse %s: %w", resp.URL, err)
	}
	return result, nil
}

// archivePage snapshots the raw body when an archive store is configured.
// Archive failures are logged and otherwise ignored; the snapshot is a side
// artifact, not part of the crawl contract.
func (s *Scheduler) archivePage(ctx context.Context, resp crawler.FetchResponse) {
	if s.archive == nil {
		return
	}
	objectPath := snapshotPath(s.cfg.ArchivePrefix, resp.URL, time.Now().UTC())
	uri, err := s.archive.PutObject(ctx, objectPath, "text/html; charset=utf-8", bytes.NewReader(resp.Body))
	if err != nil {
		s.logger.Warn("archive page failed", zap.String("url", resp.URL), zap.Error(err))
		return
	}
	s.logger.Debug("page archived", zap.String("url", resp.URL), zap.String("blob_uri", uri))
}

// handleFailure applies the retry policy: resubmit while the budget lasts,
// otherwise write the terminal failure outcome. The returned error is fatal
// (sink failure or invariant violation), never the fetch error itself.
func (s *Scheduler) handleFailure(ctx context.Context, item *crawler.Item, cause error) error {
	duration := time.Since(item.DispatchedAt)

	if item.Tries >= s.cfg.MaxTries {
		s.logger.Error("fail",
			zap.String("url", item.URL),
			zap.Int("tries", item.Tries),
			zap.Duration("duration", duration),
			zap.Error(cause),
		)
		metrics.PageProcessed(metrics.OutcomeFailed)
		s.stats.failed.Add(1)
		return s.writeOutcome(ctx, item, nil, cause)
	}

	s.logger.Warn("postpone",
		zap.String("url", item.URL),
		zap.Int("tries", item.Tries),
		zap.Duration("duration", duration),
		zap.Error(cause),
	)
	metrics.PageProcessed(metrics.OutcomePostponed)
	metrics.RetryScheduled()
	s.stats.retries.Add(1)
	// Same Item, same URL: already in the frontier, so submit only bumps
	// tries and restarts the fetch. No extra backoff here; retry spacing
	// falls out of the rate limiter like any other dispatch.
	s.submit(ctx, item)
	return nil
}

// dispatchResult routes a successful result: collection entities go to the
// store's add operation, a detail entity is merged via extend and produces
// the run's only kind of success write. Next-URLs are always handed back for
// scheduling. Storage and sink errors are fatal.
func (s *Scheduler) dispatchResult(ctx context.Context, item *crawler.Item, result crawler.FetchResult) ([]string, error) {
	for _, player := range result.Rosters {
		if err := s.players.Add(ctx, player.URL, player); err != nil {
			return nil, fmt.Errorf("store add %s: %w", player.URL, err)
		}
	}

	if result.Profile != nil {
		merged, err := s.players.Extend(ctx, result.Profile.URL, *result.Profile)
		if err != nil {
			return nil, fmt.Errorf("store extend %s: %w", result.Profile.URL, err)
		}
		if err := s.writeOutcome(ctx, item, &merged, nil); err != nil {
			return nil, err
		}
	}

	// Collection-only pages are intermediate discovery pages: no outcome
	// write, just their links.
	return result.NextURLs, nil
}

// writeOutcome builds and validates the terminal record before handing it to
// the sink. An invalid outcome is a wiring bug and aborts the run.
func (s *Scheduler) writeOutcome(ctx context.Context, item *crawler.Item, result *crawler.Player, cause error) error {
	outcome := crawler.Outcome{
		URL:    item.URL,
		Tries:  item.Tries,
		Result: result,
	}
	if cause != nil {
		outcome.Error = cause.Error()
	}
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("outcome for %s: %w", item.URL, err)
	}
	if err := s.sink.Write(ctx, outcome); err != nil {
		return fmt.Errorf("sink write %s: %w", item.URL, err)
	}
	return nil
}

func snapshotPath(prefix, url string, fetchedAt time.Time) string {
	urlHash := fmt.Sprintf("%x", sha256.Sum256([]byte(url)))
	return path.Join(prefix, "pages", fetchedAt.Format("2006-01-02"), urlHash+".html")
}
