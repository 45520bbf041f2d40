// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package config

import (
	"time"

	"github.com/tomtom215/pantry/internal/recommend"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Refresh   RefreshConfig   `koanf:"refresh"`
	Rebuild   RebuildConfig   `koanf:"rebuild"`
	NATS      NATSConfig      `koanf:"nats"`
	WAL       WALConfig       `koanf:"wal"`
	Dedupe    DedupeConfig    `koanf:"dedupe"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production" (default: "development")
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig exposes the tunable parts of the recommendation engine.
// Values left at zero keep the engine defaults.
//
// Environment Variables:
//   - RECOMMEND_TIMEZONE: IANA zone used for day-of-week and month buckets (default: UTC)
//   - RECOMMEND_HISTORY_CAP: purchase history entries kept per record (default: 20)
//   - RECOMMEND_TOP_N: maximum recommendations returned (default: 5)
//   - RECOMMEND_MIN_RESULTS: below this many, collaborative items are added (default: 3)
//   - RECOMMEND_QUERY_TIMEOUT: deadline for a recommendation query (default: 10s)
//   - RECOMMEND_SEED: seed for refresh sampling (default: 42)
type RecommendConfig struct {
	Timezone                string        `koanf:"timezone"`
	HistoryCap              int           `koanf:"history_cap"`
	TopN                    int           `koanf:"top_n"`
	MinResults              int           `koanf:"min_results"`
	QueryTimeout            time.Duration `koanf:"query_timeout"`
	ItemSimilarityThreshold float64       `koanf:"item_similarity_threshold"`
	UserSimilarityThreshold float64       `koanf:"user_similarity_threshold"`
	MaxSimilarItems         int           `koanf:"max_similar_items"`
	MaxSimilarUsers         int           `koanf:"max_similar_users"`
	Seed                    int64         `koanf:"seed"`
}

// RefreshConfig controls the sampled similarity refresh queue
type RefreshConfig struct {
	SampleRate  float64       `koanf:"sample_rate"`
	QueueSize   int           `koanf:"queue_size"`
	Workers     int           `koanf:"workers"`
	TaskTimeout time.Duration `koanf:"task_timeout"`
}

// RebuildConfig controls the batch rebuild and its scheduler.
// Interval 0 disables periodic rebuilds.
type RebuildConfig struct {
	OnStartup           bool          `koanf:"on_startup"`
	Interval            time.Duration `koanf:"interval"`
	MaxUpsertsPerSecond float64       `koanf:"max_upserts_per_second"`
	Burst               int           `koanf:"burst"`
}

// NATSConfig holds purchase event messaging configuration.
//
// Environment Variables:
//   - NATS_ENABLED: consume purchase events from JetStream (default: false)
//   - NATS_URL: server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: run an in-process JetStream server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: /data/nats/jetstream)
//   - NATS_SUBJECT: purchase subject (default: purchases.completed)
type NATSConfig struct {
	Enabled             bool   `koanf:"enabled"`
	URL                 string `koanf:"url"`
	EmbeddedServer      bool   `koanf:"embedded_server"`
	StoreDir            string `koanf:"store_dir"`
	MaxMemory           int64  `koanf:"max_memory"`
	MaxStore            int64  `koanf:"max_store"`
	StreamName          string `koanf:"stream_name"`
	Subject             string `koanf:"subject"`
	StreamRetentionDays int    `koanf:"stream_retention_days"`
	SubscribersCount    int    `koanf:"subscribers_count"`
	DurableName         string `koanf:"durable_name"`
	QueueGroup          string `koanf:"queue_group"`

	// RouterRetryCount is the maximum number of retries for a failed message
	// before it is routed to the poison topic.
	RouterRetryCount int `koanf:"router_retry_count"`

	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterPoisonTopic          string        `koanf:"router_poison_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// WALConfig holds the ingest journal configuration
type WALConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	MaxRetries      int           `koanf:"max_retries"`
	CompactInterval time.Duration `koanf:"compact_interval"`
	EntryTTL        time.Duration `koanf:"entry_ttl"`
}

// DedupeConfig sizes the event id cache used by the purchase consumer
type DedupeConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// SecurityConfig holds HTTP-facing protection settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// EngineConfig converts the file/env settings into a recommend.Config.
// Zero values keep the recommend package defaults.
func (r RecommendConfig) EngineConfig(refresh RefreshConfig, rebuild RebuildConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()

	if r.Timezone != "" {
		cfg.Timezone = r.Timezone
	}
	if r.HistoryCap > 0 {
		cfg.History.Cap = r.HistoryCap
	}
	if r.TopN > 0 {
		cfg.Limits.TopN = r.TopN
	}
	if r.MinResults > 0 {
		cfg.Limits.MinResults = r.MinResults
	}
	if r.QueryTimeout > 0 {
		cfg.Limits.QueryTimeout = r.QueryTimeout
	}
	if r.ItemSimilarityThreshold > 0 {
		cfg.Similarity.ItemThreshold = r.ItemSimilarityThreshold
	}
	if r.UserSimilarityThreshold > 0 {
		cfg.Similarity.UserThreshold = r.UserSimilarityThreshold
	}
	if r.MaxSimilarItems > 0 {
		cfg.Similarity.MaxSimilarItems = r.MaxSimilarItems
	}
	if r.MaxSimilarUsers > 0 {
		cfg.Similarity.MaxSimilarUsers = r.MaxSimilarUsers
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}

	cfg.Refresh.SampleRate = refresh.SampleRate
	if refresh.QueueSize > 0 {
		cfg.Refresh.QueueSize = refresh.QueueSize
	}
	if refresh.Workers > 0 {
		cfg.Refresh.Workers = refresh.Workers
	}
	if refresh.TaskTimeout > 0 {
		cfg.Refresh.TaskTimeout = refresh.TaskTimeout
	}

	cfg.Rebuild.MaxUpsertsPerSecond = rebuild.MaxUpsertsPerSecond
	if rebuild.Burst > 0 {
		cfg.Rebuild.Burst = rebuild.Burst
	}

	return cfg
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
