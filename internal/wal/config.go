// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"fmt"
	"time"

	"github.com/tomtom215/pantry/internal/config"
)

// Config holds WAL settings. The user-facing subset comes from the wal
// section of the application config; the BadgerDB tuning values are fixed
// defaults.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the journal in memory only. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// RetryInterval is the time between retry passes over pending entries.
	RetryInterval time.Duration

	// MaxRetries is the number of failed replays after which an entry is dropped.
	MaxRetries int

	// RetryBackoff is the base of the per-entry exponential backoff.
	RetryBackoff time.Duration

	// CompactInterval is the time between compaction runs.
	CompactInterval time.Duration

	// EntryTTL bounds the age of an unconfirmed entry.
	EntryTTL time.Duration

	MemTableSize     int64
	ValueLogFileSize int64
	NumCompactors    int
	Compression      bool
	GCRatio          float64
	CloseTimeout     time.Duration
}

// DefaultConfig returns the defaults used when the wal section is empty.
func DefaultConfig() Config {
	return Config{
		Path:             "/data/wal",
		SyncWrites:       true,
		RetryInterval:    30 * time.Second,
		MaxRetries:       100,
		RetryBackoff:     5 * time.Second,
		CompactInterval:  time.Hour,
		EntryTTL:         168 * time.Hour,
		MemTableSize:     16 << 20,
		ValueLogFileSize: 64 << 20,
		NumCompactors:    2,
		Compression:      true,
		GCRatio:          0.5,
		CloseTimeout:     30 * time.Second,
	}
}

// FromSettings builds a Config from the application's wal section. Zero
// values keep the defaults.
func FromSettings(s *config.WALConfig) Config {
	cfg := DefaultConfig()
	if s == nil {
		return cfg
	}
	if s.Path != "" {
		cfg.Path = s.Path
	}
	cfg.SyncWrites = s.SyncWrites
	if s.RetryInterval > 0 {
		cfg.RetryInterval = s.RetryInterval
	}
	if s.MaxRetries > 0 {
		cfg.MaxRetries = s.MaxRetries
	}
	if s.CompactInterval > 0 {
		cfg.CompactInterval = s.CompactInterval
	}
	if s.EntryTTL > 0 {
		cfg.EntryTTL = s.EntryTTL
	}
	return cfg
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Path == "" && !c.InMemory {
		return &ConfigError{Field: "Path", Message: "must not be empty"}
	}
	if c.RetryInterval <= 0 {
		return &ConfigError{Field: "RetryInterval", Message: "must be positive"}
	}
	if c.MaxRetries < 1 {
		return &ConfigError{Field: "MaxRetries", Message: "must be at least 1"}
	}
	if c.RetryBackoff < 0 {
		return &ConfigError{Field: "RetryBackoff", Message: "must not be negative"}
	}
	if c.CompactInterval <= 0 {
		return &ConfigError{Field: "CompactInterval", Message: "must be positive"}
	}
	if c.EntryTTL < time.Minute {
		return &ConfigError{Field: "EntryTTL", Message: "must be at least 1m"}
	}
	if c.NumCompactors < 2 {
		return &ConfigError{Field: "NumCompactors", Message: "BadgerDB requires at least 2"}
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return &ConfigError{Field: "GCRatio", Message: "must be between 0 and 1 exclusive"}
	}
	return nil
}

// ConfigError describes an invalid WAL setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("wal config: %s %s", e.Field, e.Message)
}
