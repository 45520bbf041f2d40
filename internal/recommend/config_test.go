// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("scoring weights", func(t *testing.T) {
		s := cfg.Scoring
		sum := s.DueWeight + s.ConfidenceWeight + s.DayWeight + s.MonthWeight + s.SimilarityWeight
		if !approxEqual(sum, 1) {
			t.Errorf("weights sum = %f, want 1.0", sum)
		}
		if s.DueWeight != 0.5 || s.ConfidenceWeight != 0.2 {
			t.Errorf("due/confidence weights = %v/%v, want 0.5/0.2", s.DueWeight, s.ConfidenceWeight)
		}
		if s.MinDueFactor != 0.5 || s.MinConfidence != 0.3 {
			t.Errorf("gates = %v/%v, want 0.5/0.3", s.MinDueFactor, s.MinConfidence)
		}
	})

	t.Run("history", func(t *testing.T) {
		if cfg.History.Cap != 20 {
			t.Errorf("History.Cap = %d, want 20", cfg.History.Cap)
		}
		if cfg.History.InitialFrequency != 14 || cfg.History.InitialConfidence != 0.3 {
			t.Errorf("initial record = %d/%v, want 14/0.3", cfg.History.InitialFrequency, cfg.History.InitialConfidence)
		}
	})

	t.Run("limits", func(t *testing.T) {
		if cfg.Limits.TopN != 5 || cfg.Limits.MinResults != 3 {
			t.Errorf("limits = %d/%d, want 5/3", cfg.Limits.TopN, cfg.Limits.MinResults)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		if cfg.Refresh.SampleRate != 0.2 {
			t.Errorf("Refresh.SampleRate = %v, want 0.2", cfg.Refresh.SampleRate)
		}
	})

	t.Run("seed is set for determinism", func(t *testing.T) {
		if cfg.Seed == 0 {
			t.Error("Seed = 0, want non-zero for determinism")
		}
	})

	t.Run("validates", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("DefaultConfig().Validate() = %v", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"zero history cap", func(c *Config) { c.History.Cap = 0 }, true},
		{"zero initial frequency", func(c *Config) { c.History.InitialFrequency = 0 }, true},
		{"initial confidence above 1", func(c *Config) { c.History.InitialConfidence = 1.5 }, true},
		{"negative due weight", func(c *Config) { c.Scoring.DueWeight = -0.1 }, true},
		{"min confidence above 1", func(c *Config) { c.Scoring.MinConfidence = 2 }, true},
		{"negative min due factor", func(c *Config) { c.Scoring.MinDueFactor = -1 }, true},
		{"min records below 2", func(c *Config) { c.Similarity.MinRecords = 1 }, true},
		{"item threshold above 1", func(c *Config) { c.Similarity.ItemThreshold = 1.2 }, true},
		{"zero similar users", func(c *Config) { c.Similarity.MaxSimilarUsers = 0 }, true},
		{"discount above 1", func(c *Config) { c.Similarity.CollaborativeDiscount = 1.1 }, true},
		{"zero top n", func(c *Config) { c.Limits.TopN = 0 }, true},
		{"min results above top n", func(c *Config) { c.Limits.MinResults = 6 }, true},
		{"zero query timeout", func(c *Config) { c.Limits.QueryTimeout = 0 }, true},
		{"sample rate above 1", func(c *Config) { c.Refresh.SampleRate = 1.5 }, true},
		{"sample rate zero", func(c *Config) { c.Refresh.SampleRate = 0 }, false},
		{"zero workers", func(c *Config) { c.Refresh.Workers = 0 }, true},
		{"zero task timeout", func(c *Config) { c.Refresh.TaskTimeout = 0 }, true},
		{"negative pacing", func(c *Config) { c.Rebuild.MaxUpsertsPerSecond = -1 }, true},
		{"pacing without burst", func(c *Config) { c.Rebuild.MaxUpsertsPerSecond = 10; c.Rebuild.Burst = 0 }, true},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"named timezone", func(c *Config) { c.Timezone = "UTC" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Limits.TopN = 99
	clone.Refresh.TaskTimeout = time.Minute

	if cfg.Limits.TopN == 99 {
		t.Error("modifying clone changed original Limits.TopN")
	}
	if cfg.Refresh.TaskTimeout == time.Minute {
		t.Error("modifying clone changed original Refresh.TaskTimeout")
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
	cfg.Timezone = "invalid/zone"
	if cfg.Location() != time.UTC {
		t.Errorf("Location() with invalid zone = %v, want UTC fallback", cfg.Location())
	}
}
