// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pantry/config.yaml",
	"/etc/pantry/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/pantry.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Timezone:                "UTC",
			HistoryCap:              20,
			TopN:                    5,
			MinResults:              3,
			QueryTimeout:            10 * time.Second,
			ItemSimilarityThreshold: 0.5,
			UserSimilarityThreshold: 0.1,
			MaxSimilarItems:         5,
			MaxSimilarUsers:         10,
			Seed:                    42,
		},
		Refresh: RefreshConfig{
			SampleRate:  0.2,
			QueueSize:   256,
			Workers:     2,
			TaskTimeout: 30 * time.Second,
		},
		Rebuild: RebuildConfig{
			OnStartup:           false,
			Interval:            0,
			MaxUpsertsPerSecond: 0,
			Burst:               50,
		},
		NATS: NATSConfig{
			Enabled:                    false,
			URL:                        "nats://127.0.0.1:4222",
			EmbeddedServer:             true,
			StoreDir:                   "/data/nats/jetstream",
			MaxMemory:                  128 * 1024 * 1024,
			MaxStore:                   1024 * 1024 * 1024,
			StreamName:                 "PURCHASES",
			Subject:                    "purchases.completed",
			StreamRetentionDays:        30,
			SubscribersCount:           2,
			DurableName:                "pantry-purchases",
			QueueGroup:                 "pantry",
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterPoisonTopic:          "purchases.poison",
			RouterCloseTimeout:         30 * time.Second,
		},
		WAL: WALConfig{
			Enabled:         true,
			Path:            "/data/wal",
			SyncWrites:      true,
			RetryInterval:   30 * time.Second,
			MaxRetries:      100,
			CompactInterval: time.Hour,
			EntryTTL:        168 * time.Hour,
		},
		Dedupe: DedupeConfig{
			Enabled:  true,
			Capacity: 10000,
			TTL:      time.Hour,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources.
// Configuration is loaded in the following order (later sources override earlier):
//  1. Built-in defaults
//  2. Config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps legacy or shortened environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// NATS
	"nats_enabled":     "nats.enabled",
	"nats_url":         "nats.url",
	"nats_embedded":    "nats.embedded_server",
	"nats_store_dir":   "nats.store_dir",
	"nats_subject":     "nats.subject",
	"nats_stream":      "nats.stream_name",
	"nats_subscribers": "nats.subscribers_count",
	"nats_durable":     "nats.durable_name",

	// Security
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envSections lists the config sections reachable through SECTION_FIELD
// environment variables, e.g. REFRESH_SAMPLE_RATE -> refresh.sample_rate.
var envSections = []string{
	"server",
	"database",
	"logging",
	"recommend",
	"refresh",
	"rebuild",
	"nats",
	"wal",
	"dedupe",
	"security",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - RECOMMEND_TOP_N -> recommend.top_n
//   - WAL_RETRY_INTERVAL -> wal.retry_interval
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	for _, section := range envSections {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	// Unmapped keys are skipped so unrelated environment variables
	// never end up in the config tree.
	return ""
}
