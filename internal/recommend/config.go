// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/pantry/internal/recommend/features"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// History controls how purchase history is kept per record.
	History HistoryConfig `json:"history"`

	// Scoring contains the weights and gates of the ranking pipeline.
	Scoring ScoringConfig `json:"scoring"`

	// Similarity contains item and user similarity parameters.
	Similarity SimilarityConfig `json:"similarity"`

	// Limits contains result-size limits.
	Limits LimitsConfig `json:"limits"`

	// Refresh controls the background similarity refresh.
	Refresh RefreshConfig `json:"refresh"`

	// Rebuild controls the batch rebuild.
	Rebuild RebuildConfig `json:"rebuild"`

	// Timezone is the IANA zone used to bucket purchases by weekday and month.
	// Default: "UTC".
	Timezone string `json:"timezone"`

	// Seed is the random seed for the refresh sampler.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// HistoryConfig controls per-record purchase history.
type HistoryConfig struct {
	// Cap is the maximum number of purchases kept per record.
	// Default: 20.
	Cap int `json:"cap"`

	// InitialFrequency is the frequency of a newly created record, in days.
	// Default: 14.
	InitialFrequency int `json:"initial_frequency"`

	// InitialConfidence is the confidence of a newly created record.
	// Default: 0.3.
	InitialConfidence float64 `json:"initial_confidence"`
}

// ScoringConfig contains the ranking weights and gates.
type ScoringConfig struct {
	DueWeight        float64 `json:"due_weight"`
	ConfidenceWeight float64 `json:"confidence_weight"`
	DayWeight        float64 `json:"day_weight"`
	MonthWeight      float64 `json:"month_weight"`
	SimilarityWeight float64 `json:"similarity_weight"`

	// MinDueFactor is the minimum (days since last / frequency) to recommend.
	// Default: 0.5.
	MinDueFactor float64 `json:"min_due_factor"`

	// MinConfidence is the minimum record confidence to recommend.
	// Default: 0.3.
	MinConfidence float64 `json:"min_confidence"`
}

// SimilarityConfig contains item and user similarity parameters.
type SimilarityConfig struct {
	// MinRecords is the number of records a user needs before item
	// similarities are computed. Default: 5.
	MinRecords int `json:"min_records"`

	// MinVectors is the number of records with a feature vector required.
	// Default: 3.
	MinVectors int `json:"min_vectors"`

	// ItemThreshold is the cosine similarity an item pair must exceed.
	// Default: 0.5.
	ItemThreshold float64 `json:"item_threshold"`

	// MaxSimilarItems caps each record's similar-item list. Default: 5.
	MaxSimilarItems int `json:"max_similar_items"`

	// MinUserRecords is the number of records a user needs before similar
	// users are searched. Default: 3.
	MinUserRecords int `json:"min_user_records"`

	// UserThreshold is the Jaccard similarity a user must exceed. Default: 0.1.
	UserThreshold float64 `json:"user_threshold"`

	// MaxSimilarUsers caps the similar-user list. Default: 10.
	MaxSimilarUsers int `json:"max_similar_users"`

	// CollaborativeMinConfidence filters the similar users' records that
	// contribute to collaborative candidates. Default: 0.5.
	CollaborativeMinConfidence float64 `json:"collaborative_min_confidence"`

	// CollaborativeConfidence is assigned to supplemented recommendations.
	// Default: 0.4.
	CollaborativeConfidence float64 `json:"collaborative_confidence"`

	// CollaborativeDiscount multiplies the collaborative score of
	// supplemented recommendations. Default: 0.7.
	CollaborativeDiscount float64 `json:"collaborative_discount"`
}

// LimitsConfig contains result-size limits.
type LimitsConfig struct {
	// TopN is the number of recommendations returned to callers. Default: 5.
	TopN int `json:"top_n"`

	// MinResults triggers the collaborative supplement when fewer
	// recommendations remain. Default: 3.
	MinResults int `json:"min_results"`

	// QueryTimeout bounds a single recommendation query. Default: 10s.
	QueryTimeout time.Duration `json:"query_timeout"`
}

// RefreshConfig controls the background similarity refresh.
type RefreshConfig struct {
	// SampleRate is the probability that a purchase schedules a refresh.
	// Default: 0.2.
	SampleRate float64 `json:"sample_rate"`

	// QueueSize is the capacity of the refresh queue. Default: 256.
	QueueSize int `json:"queue_size"`

	// Workers is the number of refresh workers. Default: 2.
	Workers int `json:"workers"`

	// TaskTimeout bounds a single refresh. Default: 30s.
	TaskTimeout time.Duration `json:"task_timeout"`
}

// RebuildConfig controls the batch rebuild.
type RebuildConfig struct {
	// MaxUpsertsPerSecond paces record upserts. 0 means unlimited.
	MaxUpsertsPerSecond float64 `json:"max_upserts_per_second"`

	// Burst is the limiter burst size. Default: 50.
	Burst int `json:"burst"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Cap:               20,
			InitialFrequency:  features.DefaultFrequency,
			InitialConfidence: features.InitialConfidence,
		},
		Scoring: ScoringConfig{
			DueWeight:        0.5,
			ConfidenceWeight: 0.2,
			DayWeight:        0.1,
			MonthWeight:      0.1,
			SimilarityWeight: 0.1,
			MinDueFactor:     0.5,
			MinConfidence:    0.3,
		},
		Similarity: SimilarityConfig{
			MinRecords:                 5,
			MinVectors:                 3,
			ItemThreshold:              0.5,
			MaxSimilarItems:            5,
			MinUserRecords:             3,
			UserThreshold:              0.1,
			MaxSimilarUsers:            10,
			CollaborativeMinConfidence: 0.5,
			CollaborativeConfidence:    features.DefaultConfidence,
			CollaborativeDiscount:      0.7,
		},
		Limits: LimitsConfig{
			TopN:         5,
			MinResults:   3,
			QueryTimeout: 10 * time.Second,
		},
		Refresh: RefreshConfig{
			SampleRate:  0.2,
			QueueSize:   256,
			Workers:     2,
			TaskTimeout: 30 * time.Second,
		},
		Rebuild: RebuildConfig{
			MaxUpsertsPerSecond: 0,
			Burst:               50,
		},
		Timezone: "UTC",
		Seed:     42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.History.Cap <= 0 {
		return fmt.Errorf("history.cap must be positive, got %d", c.History.Cap)
	}
	if c.History.InitialFrequency < 1 {
		return fmt.Errorf("history.initial_frequency must be at least 1, got %d", c.History.InitialFrequency)
	}
	if err := unitInterval("history.initial_confidence", c.History.InitialConfidence); err != nil {
		return err
	}

	weights := map[string]float64{
		"scoring.due_weight":        c.Scoring.DueWeight,
		"scoring.confidence_weight": c.Scoring.ConfidenceWeight,
		"scoring.day_weight":        c.Scoring.DayWeight,
		"scoring.month_weight":      c.Scoring.MonthWeight,
		"scoring.similarity_weight": c.Scoring.SimilarityWeight,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, w)
		}
	}
	if c.Scoring.MinDueFactor < 0 {
		return fmt.Errorf("scoring.min_due_factor must be non-negative, got %f", c.Scoring.MinDueFactor)
	}
	if err := unitInterval("scoring.min_confidence", c.Scoring.MinConfidence); err != nil {
		return err
	}

	if err := c.Similarity.validate(); err != nil {
		return err
	}

	if c.Limits.TopN <= 0 {
		return fmt.Errorf("limits.top_n must be positive, got %d", c.Limits.TopN)
	}
	if c.Limits.MinResults < 0 || c.Limits.MinResults > c.Limits.TopN {
		return fmt.Errorf("limits.min_results must be in [0, %d], got %d", c.Limits.TopN, c.Limits.MinResults)
	}
	if c.Limits.QueryTimeout <= 0 {
		return fmt.Errorf("limits.query_timeout must be positive, got %v", c.Limits.QueryTimeout)
	}

	if err := unitInterval("refresh.sample_rate", c.Refresh.SampleRate); err != nil {
		return err
	}
	if c.Refresh.QueueSize <= 0 {
		return fmt.Errorf("refresh.queue_size must be positive, got %d", c.Refresh.QueueSize)
	}
	if c.Refresh.Workers <= 0 {
		return fmt.Errorf("refresh.workers must be positive, got %d", c.Refresh.Workers)
	}
	if c.Refresh.TaskTimeout <= 0 {
		return fmt.Errorf("refresh.task_timeout must be positive, got %v", c.Refresh.TaskTimeout)
	}

	if c.Rebuild.MaxUpsertsPerSecond < 0 {
		return fmt.Errorf("rebuild.max_upserts_per_second must be non-negative, got %f", c.Rebuild.MaxUpsertsPerSecond)
	}
	if c.Rebuild.MaxUpsertsPerSecond > 0 && c.Rebuild.Burst <= 0 {
		return fmt.Errorf("rebuild.burst must be positive when pacing is enabled, got %d", c.Rebuild.Burst)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}

	return nil
}

func (s *SimilarityConfig) validate() error {
	if s.MinRecords < 2 {
		return fmt.Errorf("similarity.min_records must be at least 2, got %d", s.MinRecords)
	}
	if s.MinVectors < 2 {
		return fmt.Errorf("similarity.min_vectors must be at least 2, got %d", s.MinVectors)
	}
	if err := unitInterval("similarity.item_threshold", s.ItemThreshold); err != nil {
		return err
	}
	if s.MaxSimilarItems <= 0 {
		return fmt.Errorf("similarity.max_similar_items must be positive, got %d", s.MaxSimilarItems)
	}
	if s.MinUserRecords <= 0 {
		return fmt.Errorf("similarity.min_user_records must be positive, got %d", s.MinUserRecords)
	}
	if err := unitInterval("similarity.user_threshold", s.UserThreshold); err != nil {
		return err
	}
	if s.MaxSimilarUsers <= 0 {
		return fmt.Errorf("similarity.max_similar_users must be positive, got %d", s.MaxSimilarUsers)
	}
	if err := unitInterval("similarity.collaborative_min_confidence", s.CollaborativeMinConfidence); err != nil {
		return err
	}
	if err := unitInterval("similarity.collaborative_confidence", s.CollaborativeConfidence); err != nil {
		return err
	}
	return unitInterval("similarity.collaborative_discount", s.CollaborativeDiscount)
}

func unitInterval(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", name, v)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
