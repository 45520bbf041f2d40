// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package wal

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/pantry/internal/config"
)

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(&config.WALConfig{
		Enabled:       true,
		Path:          "/tmp/pantry-wal",
		SyncWrites:    false,
		RetryInterval: time.Minute,
		MaxRetries:    7,
	})

	if cfg.Path != "/tmp/pantry-wal" || cfg.SyncWrites || cfg.RetryInterval != time.Minute || cfg.MaxRetries != 7 {
		t.Errorf("FromSettings() = %+v", cfg)
	}
	if cfg.EntryTTL != 168*time.Hour || cfg.CompactInterval != time.Hour {
		t.Errorf("zero settings should keep defaults, got ttl %v compact %v", cfg.EntryTTL, cfg.CompactInterval)
	}

	if def := FromSettings(nil); def.Path != DefaultConfig().Path {
		t.Errorf("FromSettings(nil).Path = %q", def.Path)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"defaults", func(*Config) {}, ""},
		{"in memory without path", func(c *Config) { c.Path = ""; c.InMemory = true }, ""},
		{"empty path", func(c *Config) { c.Path = "" }, "Path"},
		{"zero retry interval", func(c *Config) { c.RetryInterval = 0 }, "RetryInterval"},
		{"zero max retries", func(c *Config) { c.MaxRetries = 0 }, "MaxRetries"},
		{"negative backoff", func(c *Config) { c.RetryBackoff = -time.Second }, "RetryBackoff"},
		{"zero compact interval", func(c *Config) { c.CompactInterval = 0 }, "CompactInterval"},
		{"short ttl", func(c *Config) { c.EntryTTL = time.Second }, "EntryTTL"},
		{"one compactor", func(c *Config) { c.NumCompactors = 1 }, "NumCompactors"},
		{"gc ratio one", func(c *Config) { c.GCRatio = 1 }, "GCRatio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("Validate() error = %v, want ConfigError on %s", err, tt.field)
			}
		})
	}
}
