package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	cloudpubsub "cloud.google.com/go/pubsub"
	gcsclient "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sportsgraph/roster-crawler/internal/api"
	"github.com/sportsgraph/roster-crawler/internal/blob/gcs"
	"github.com/sportsgraph/roster-crawler/internal/config"
	"github.com/sportsgraph/roster-crawler/internal/crawler"
	collyfetcher "github.com/sportsgraph/roster-crawler/internal/fetcher/colly"
	"github.com/sportsgraph/roster-crawler/internal/fetcher/headless"
	"github.com/sportsgraph/roster-crawler/internal/logging"
	"github.com/sportsgraph/roster-crawler/internal/parser"
	"github.com/sportsgraph/roster-crawler/internal/ratelimit"
	"github.com/sportsgraph/roster-crawler/internal/scheduler"
	fssink "github.com/sportsgraph/roster-crawler/internal/sink/fs"
	kafkasink "github.com/sportsgraph/roster-crawler/internal/sink/kafka"
	memorysink "github.com/sportsgraph/roster-crawler/internal/sink/memory"
	pubsubsink "github.com/sportsgraph/roster-crawler/internal/sink/pubsub"
	memorystore "github.com/sportsgraph/roster-crawler/internal/storage/memory"
	"github.com/sportsgraph/roster-crawler/internal/storage/postgres"
	"github.com/sportsgraph/roster-crawler/internal/storage/redisstore"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs one crawl from the
// configured seeds to completion.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs a crawl from the configured seed pages",
		Long: `Seeds the frontier from crawl.seeds and processes pages until no
work remains. Roster pages contribute player stubs and links; profile pages
complete player records and produce outcome writes.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, cleanup, err := buildScheduler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.API.Enabled {
		server := api.NewServer(sched.StatsView(), runID, logger)
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		go func() {
			if serr := server.ListenAndServe(ctx, addr); serr != nil {
				logger.Warn("status server stopped", zap.Error(serr))
			}
		}()
		logger.Info("status server listening", zap.String("addr", addr))
	}

	logger.Info("crawl starting",
		zap.Strings("seeds", cfg.Crawl.Seeds),
		zap.Int("max_parallel", cfg.Crawl.MaxParallel),
		zap.Int("max_tries", cfg.Crawl.MaxTries),
	)

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}

	snap := sched.StatsView().Snapshot()
	logger.Info("crawl finished",
		zap.Int64("dispatched", snap.Dispatched),
		zap.Int64("succeeded", snap.Succeeded),
		zap.Int64("failed", snap.Failed),
		zap.Int64("retries", snap.Retries),
	)
	return nil
}

// buildScheduler assembles the crawl collaborators selected by config. The
// returned cleanup closes everything that was opened, in reverse order.
func buildScheduler(ctx context.Context, cfg config.Config, logger *zap.Logger) (*scheduler.Scheduler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	fetcher, closeFetcher := buildFetcher(cfg, logger)
	if closeFetcher != nil {
		closers = append(closers, closeFetcher)
	}

	sink, err := buildSink(ctx, cfg, logger, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	players, err := buildPlayerStore(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	archive, err := buildArchive(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	limiter := ratelimit.New(ratelimit.Config{RPS: cfg.Crawl.RPS, Burst: cfg.Crawl.Burst})

	sched, err := scheduler.New(fetcher, parser.New(), sink, players, limiter, archive, scheduler.Config{
		Seeds:         cfg.Crawl.Seeds,
		MaxParallel:   cfg.Crawl.MaxParallel,
		MaxTries:      cfg.Crawl.MaxTries,
		ArchivePrefix: cfg.Archive.Prefix,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init scheduler: %w", err)
	}
	return sched, cleanup, nil
}

func buildFetcher(cfg config.Config, logger *zap.Logger) (crawler.Fetcher, func()) {
	if cfg.Headless.Enabled {
		if !headless.BrowserAvailable() {
			logger.Warn("headless enabled but no browser binary found; headless fetches will fail")
			return headless.NewNoop(), nil
		}
		f := headless.NewChromedp(headless.Config{
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
		})
		return f, f.Close
	}
	return collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Fetch.UserAgent,
		RespectRobots: cfg.Fetch.RespectRobots,
		Timeout:       cfg.FetchTimeout(),
	}), nil
}

func buildSink(ctx context.Context, cfg config.Config, logger *zap.Logger, closers *[]func()) (crawler.Sink, error) {
	switch cfg.Sink.Backend {
	case "memory":
		// Zero-config runs: outcomes are observable through the logs and
		// the status endpoint, nothing is persisted.
		return memorysink.New(), nil
	case "fs":
		sink, err := fssink.New(cfg.Sink.Path)
		if err != nil {
			return nil, fmt.Errorf("init fs sink: %w", err)
		}
		*closers = append(*closers, func() {
			if cerr := sink.Close(); cerr != nil {
				logger.Warn("close fs sink", zap.Error(cerr))
			}
		})
		return sink, nil
	case "kafka":
		sink := kafkasink.New(cfg.Sink.Kafka.Brokers, cfg.Sink.Kafka.Topic)
		*closers = append(*closers, func() {
			if cerr := sink.Close(); cerr != nil {
				logger.Warn("close kafka sink", zap.Error(cerr))
			}
		})
		return sink, nil
	case "pubsub":
		client, err := cloudpubsub.NewClient(ctx, cfg.Sink.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub client: %w", err)
		}
		topic := client.Topic(cfg.Sink.PubSub.TopicName)
		*closers = append(*closers, func() {
			topic.Stop()
			if cerr := client.Close(); cerr != nil {
				logger.Warn("close pubsub client", zap.Error(cerr))
			}
		})
		return pubsubsink.New(topic), nil
	default:
		return nil, fmt.Errorf("unknown sink backend %q", cfg.Sink.Backend)
	}
}

func buildPlayerStore(ctx context.Context, cfg config.Config, closers *[]func()) (crawler.PlayerStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return memorystore.NewPlayerStore(), nil
	case "postgres":
		store, err := postgres.NewPlayerStore(ctx, postgres.PlayerStoreConfig{
			DSN:   cfg.Store.Postgres.DSN,
			Table: cfg.Store.Postgres.Table,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		*closers = append(*closers, store.Close)
		return store, nil
	case "redis":
		store := redisstore.NewPlayerStore(redisstore.Config{
			Addr:   cfg.Store.Redis.Addr,
			Prefix: cfg.Store.Redis.Prefix,
			TTL:    cfg.RedisTTL(),
		})
		*closers = append(*closers, func() { _ = store.Close() })
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildArchive(ctx context.Context, cfg config.Config, closers *[]func()) (crawler.BlobStore, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	client, err := gcsclient.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init gcs client: %w", err)
	}
	*closers = append(*closers, func() { _ = client.Close() })
	store, err := gcs.New(client, gcs.Config{Bucket: cfg.Archive.GCSBucket})
	if err != nil {
		return nil, fmt.Errorf("init archive store: %w", err)
	}
	return store, nil
}
