// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Store    StoreConfig    `mapstructure:"store"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	API      APIConfig      `mapstructure:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CrawlConfig governs the scheduling loop.
type CrawlConfig struct {
	Seeds       []string `mapstructure:"seeds"`
	MaxParallel int      `mapstructure:"max_parallel"`
	MaxTries    int      `mapstructure:"max_tries"`
	RPS         float64  `mapstructure:"rps"`
	Burst       int      `mapstructure:"burst"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// HeadlessConfig configures the browser-based fetcher for script-heavy pages.
type HeadlessConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	NavTimeoutSeconds int  `mapstructure:"nav_timeout_seconds"`
}

// StoreConfig selects the player record backend.
type StoreConfig struct {
	Backend  string         `mapstructure:"backend"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig controls access to the relational store.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// RedisConfig controls access to the key-value store.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Prefix     string `mapstructure:"prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// SinkConfig selects where crawl outcomes are written.
type SinkConfig struct {
	Backend string       `mapstructure:"backend"`
	Path    string       `mapstructure:"path"`
	Kafka   KafkaConfig  `mapstructure:"kafka"`
	PubSub  PubSubConfig `mapstructure:"pubsub"`
}

// KafkaConfig holds broker metadata for the Kafka outcome sink.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// PubSubConfig holds metadata for the Pub/Sub outcome sink.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ArchiveConfig sets where raw page snapshots are kept.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// APIConfig controls the status HTTP server.
type APIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_parallel", 3)
	v.SetDefault("crawl.max_tries", 3)
	v.SetDefault("crawl.rps", 2.0)
	v.SetDefault("crawl.burst", 1)
	v.SetDefault("fetch.user_agent", "roster-crawler/1.0 (+https://github.com/sportsgraph/roster-crawler)")
	v.SetDefault("fetch.respect_robots", true)
	v.SetDefault("fetch.timeout_seconds", 60)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.postgres.table", "players")
	v.SetDefault("store.redis.prefix", "player")
	v.SetDefault("sink.backend", "fs")
	v.SetDefault("sink.path", "data/outcomes.jsonl")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.prefix", "archive")
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Crawl.Seeds) == 0 {
		return fmt.Errorf("crawl.seeds must not be empty")
	}
	if c.Crawl.MaxParallel <= 0 {
		return fmt.Errorf("crawl.max_parallel must be > 0")
	}
	if c.Crawl.MaxTries <= 0 {
		return fmt.Errorf("crawl.max_tries must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	switch c.Store.Backend {
	case "memory":
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn must be set for the postgres backend")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of memory, postgres, redis")
	}
	switch c.Sink.Backend {
	case "memory":
	case "fs":
		if c.Sink.Path == "" {
			return fmt.Errorf("sink.path must be set for the fs backend")
		}
	case "kafka":
		if len(c.Sink.Kafka.Brokers) == 0 || c.Sink.Kafka.Topic == "" {
			return fmt.Errorf("sink.kafka.brokers and sink.kafka.topic must be set for the kafka backend")
		}
	case "pubsub":
		if c.Sink.PubSub.ProjectID == "" || c.Sink.PubSub.TopicName == "" {
			return fmt.Errorf("sink.pubsub.project_id and sink.pubsub.topic_name must be set for the pubsub backend")
		}
	default:
		return fmt.Errorf("sink.backend must be one of memory, fs, kafka, pubsub")
	}
	if c.Archive.Enabled && c.Archive.GCSBucket == "" {
		return fmt.Errorf("archive.gcs_bucket must be set when archiving is enabled")
	}
	if c.API.Enabled && c.API.Port <= 0 {
		return fmt.Errorf("api.port must be > 0 when the api is enabled")
	}
	return nil
}

// FetchTimeout converts the configured fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSeconds) * time.Second
}

// RedisTTL converts the configured record TTL into a duration.
func (c Config) RedisTTL() time.Duration {
	return time.Duration(c.Store.Redis.TTLSeconds) * time.Second
}
