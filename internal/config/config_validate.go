// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLogging,
		c.validateRecommend,
		c.validateRebuild,
		c.validateNATS,
		c.validateWAL,
		c.validateDedupe,
		c.validateSecurity,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	return nil
}

// validateDatabase validates DuckDB configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.MaxMemory == "" {
		return fmt.Errorf("DUCKDB_MAX_MEMORY is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// validateRecommend runs the engine's own validation over the merged settings
func (c *Config) validateRecommend() error {
	if err := c.Recommend.EngineConfig(c.Refresh, c.Rebuild).Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validateRebuild validates the rebuild scheduler settings
func (c *Config) validateRebuild() error {
	if c.Rebuild.Interval != 0 && c.Rebuild.Interval < time.Minute {
		return fmt.Errorf("REBUILD_INTERVAL must be 0 (disabled) or at least 1m")
	}
	return nil
}

// NATS limit constants
const (
	natsMinMemory      = 64 * 1024 * 1024  // 64MB
	natsMinStore       = 100 * 1024 * 1024 // 100MB
	natsMaxRetention   = 365
	natsMinRetention   = 1
	natsMaxSubscribers = 32
)

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("NATS_SUBJECT is required when NATS_ENABLED=true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM is required when NATS_ENABLED=true")
	}

	return c.validateNATSLimits()
}

// validateNATSLimits validates NATS storage and processing limits
func (c *Config) validateNATSLimits() error {
	if c.NATS.EmbeddedServer {
		if c.NATS.MaxMemory < natsMinMemory {
			return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
		}
		if c.NATS.MaxStore < natsMinStore {
			return fmt.Errorf("NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
		}
	}
	if c.NATS.StreamRetentionDays < natsMinRetention || c.NATS.StreamRetentionDays > natsMaxRetention {
		return fmt.Errorf("NATS_STREAM_RETENTION_DAYS must be between 1 and 365")
	}
	if c.NATS.SubscribersCount < 1 || c.NATS.SubscribersCount > natsMaxSubscribers {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 32")
	}
	if c.NATS.RouterRetryCount < 0 {
		return fmt.Errorf("NATS_ROUTER_RETRY_COUNT must not be negative")
	}
	return nil
}

// validateWAL validates the journal configuration (only if enabled)
func (c *Config) validateWAL() error {
	if !c.WAL.Enabled {
		return nil
	}
	if c.WAL.Path == "" {
		return fmt.Errorf("WAL_PATH is required when WAL_ENABLED=true")
	}
	if c.WAL.RetryInterval < time.Second {
		return fmt.Errorf("WAL_RETRY_INTERVAL must be at least 1s")
	}
	if c.WAL.MaxRetries < 1 {
		return fmt.Errorf("WAL_MAX_RETRIES must be at least 1")
	}
	if c.WAL.CompactInterval < time.Minute {
		return fmt.Errorf("WAL_COMPACT_INTERVAL must be at least 1m")
	}
	if c.WAL.EntryTTL < time.Hour {
		return fmt.Errorf("WAL_ENTRY_TTL must be at least 1h")
	}
	return nil
}

// validateDedupe validates the event id cache settings (only if enabled)
func (c *Config) validateDedupe() error {
	if !c.Dedupe.Enabled {
		return nil
	}
	if c.Dedupe.Capacity < 1 {
		return fmt.Errorf("DEDUPE_CAPACITY must be at least 1")
	}
	if c.Dedupe.TTL <= 0 {
		return fmt.Errorf("DEDUPE_TTL must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateSecurity validates CORS and rate limiting configuration
func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && len(c.Security.CORSOrigins) > 1 {
		return fmt.Errorf("CORS_ORIGINS must not combine * with explicit origins")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateOriginURL(origin); err != nil {
			return fmt.Errorf("CORS_ORIGINS entry %q is invalid: %w", origin, err)
		}
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true when a wildcard origin is configured
// in production, which should be logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS() && c.IsProduction()
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}
