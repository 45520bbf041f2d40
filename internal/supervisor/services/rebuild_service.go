// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pantry/internal/recommend"
)

// Rebuilder replays the purchase log into recommendation records.
type Rebuilder interface {
	BuildRecommendationsFromHistory(ctx context.Context) (*recommend.RebuildReport, error)
}

// RebuildSchedulerConfig configures when rebuilds run.
type RebuildSchedulerConfig struct {
	// OnStartup runs one rebuild when the service starts.
	OnStartup bool

	// Interval between scheduled rebuilds. Zero disables the schedule.
	Interval time.Duration

	// Timeout bounds a single rebuild. Default: 30m
	Timeout time.Duration
}

// RebuildSchedulerService runs batch rebuilds on startup and on a schedule.
type RebuildSchedulerService struct {
	engine Rebuilder
	config RebuildSchedulerConfig
	logger zerolog.Logger
	name   string
}

// NewRebuildSchedulerService creates the scheduler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildSchedulerService(engine Rebuilder, cfg RebuildSchedulerConfig, logger zerolog.Logger) *RebuildSchedulerService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &RebuildSchedulerService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "rebuild-scheduler").Logger(),
		name:   "rebuild-scheduler",
	}
}

// Serve implements suture.Service.
func (s *RebuildSchedulerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("rebuild scheduler starting")

	if s.config.OnStartup {
		s.rebuild(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.rebuild(ctx, "schedule")
		}
	}
}

func (s *RebuildSchedulerService) rebuild(ctx context.Context, trigger string) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	report, err := s.engine.BuildRecommendationsFromHistory(ctx)
	switch {
	case errors.Is(err, recommend.ErrRebuildInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("rebuild skipped, one is already running")
	case err != nil:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("rebuild failed")
	default:
		s.logger.Info().
			Str("trigger", trigger).
			Int("upserted", report.Upserted).
			Int("failed", report.Failed).
			Dur("duration", report.Duration).
			Msg("rebuild finished")
	}
}

func (s *RebuildSchedulerService) String() string {
	return s.name
}
