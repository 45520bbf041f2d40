// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package config provides centralized configuration management for Pantry.

Configuration is layered with koanf. Later sources override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: CONFIG_PATH, or the first of config.yaml, config.yml,
    /etc/pantry/config.yaml, /etc/pantry/config.yml
 3. Environment variables

# Environment Variables

Short legacy names are mapped explicitly:

  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_SUBJECT
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Any other field is reachable as SECTION_FIELD, for example
RECOMMEND_TOP_N, REFRESH_SAMPLE_RATE, REBUILD_INTERVAL, WAL_PATH or
DEDUPE_TTL. Unrecognized variables are ignored.

Comma-separated values are split for CORS_ORIGINS and TRUSTED_PROXIES.

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	engineCfg := cfg.Recommend.EngineConfig(cfg.Refresh, cfg.Rebuild)

Validate is called by Load and rejects out-of-range values with an error
naming the environment variable to fix.
*/
package config
