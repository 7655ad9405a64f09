// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/matching"
)

// PoolLister lists the current candidate pool.
// Satisfied by *store.UserStore.
type PoolLister interface {
	List(ctx context.Context) ([]matching.UserID, error)
}

// MatchRunner runs one group formation batch.
// Satisfied by *matching.Engine.
type MatchRunner interface {
	FormGroups(ctx context.Context, req matching.Request) (*matching.Result, error)
}

// RunRecorder persists run results for the history API.
// Satisfied by *store.RunStore.
type RunRecorder interface {
	Put(ctx context.Context, result *matching.Result) error
}

// SchedulerConfig configures the scheduled matcher.
type SchedulerConfig struct {
	// Interval between batch runs.
	Interval time.Duration

	// MinCandidates skips a run when the pool is smaller than this.
	MinCandidates int

	// RestaurantID is the venue for scheduled sessions. Empty forces
	// dry runs, so scheduled matching can operate before venue setup.
	RestaurantID string

	// CreatorUserID is recorded as the session creator.
	CreatorUserID string
}

// SchedulerService runs group formation over the stored candidate pool
// on a fixed interval. One run failure is logged and the next tick
// proceeds; only a closed channel or canceled context stops the loop.
type SchedulerService struct {
	pool    PoolLister
	runner  MatchRunner
	records RunRecorder
	config  SchedulerConfig
	logger  zerolog.Logger
	name    string
}

// NewSchedulerService creates the scheduled matcher. records may be nil
// when run history persistence is not wanted.
func NewSchedulerService(pool PoolLister, runner MatchRunner, records RunRecorder, config SchedulerConfig, logger zerolog.Logger) *SchedulerService {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.MinCandidates <= 0 {
		config.MinCandidates = matching.DefaultMinGroupSize
	}
	return &SchedulerService{
		pool:    pool,
		runner:  runner,
		records: records,
		config:  config,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		name:    "match-scheduler",
	}
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Int("min_candidates", s.config.MinCandidates).
		Msg("Scheduled matcher started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduled matcher stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single scheduled batch.
func (s *SchedulerService) runOnce(ctx context.Context) {
	ids, err := s.pool.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list candidate pool")
		return
	}
	if len(ids) < s.config.MinCandidates {
		s.logger.Debug().
			Int("pool_size", len(ids)).
			Int("min_candidates", s.config.MinCandidates).
			Msg("Pool below minimum, skipping run")
		return
	}

	req := matching.Request{
		CandidateIDs: ids,
		DryRun:       s.config.RestaurantID == "",
	}
	if !req.DryRun {
		req.Session = s.sessionSpec()
	}

	result, err := s.runner.FormGroups(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled match run failed")
		return
	}

	if s.records != nil {
		if err := s.records.Put(ctx, result); err != nil {
			s.logger.Warn().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run record")
		}
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("groups", len(result.Groups)).
		Bool("dry_run", req.DryRun).
		Msg("Scheduled match run completed")
}

// sessionSpec builds the session template for the next scheduled
// dinner: tomorrow, 19:00 to 21:00 local time.
func (s *SchedulerService) sessionSpec() matching.SessionSpec {
	day := time.Now().AddDate(0, 0, 1)
	start := time.Date(day.Year(), day.Month(), day.Day(), 19, 0, 0, 0, day.Location())

	return matching.SessionSpec{
		Title:         "Convive Dinner",
		Date:          start,
		RestaurantID:  s.config.RestaurantID,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		CreatorUserID: matching.UserID(s.config.CreatorUserID),
	}
}

// String implements fmt.Stringer for suture's log messages.
func (s *SchedulerService) String() string {
	return s.name
}
