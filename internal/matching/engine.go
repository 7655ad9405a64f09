// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/metrics"
)

// Engine errors.
var (
	// ErrNilScoreProvider is returned when no compatibility provider is
	// supplied.
	ErrNilScoreProvider = errors.New("matching: score provider is nil")

	// ErrNoSessionWriter is returned when a non-dry run is requested but
	// no session store is wired.
	ErrNoSessionWriter = errors.New("matching: session writer is nil")
)

// Engine orchestrates one-shot batch group formation runs. It is safe
// for concurrent use; each run owns its partition and shares nothing
// mutable with other runs except the seeded rng, which is mutex
// protected.
type Engine struct {
	config    Config
	logger    zerolog.Logger
	provider  ScoreProvider
	directory UserDirectory
	writer    SessionWriter

	builder      *MatrixBuilder
	optimizer    *Optimizer
	repairer     *Repairer
	materializer *Materializer

	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine creates a group formation engine. The score provider is
// required. A nil directory skips candidate resolution (every ID is
// trusted); a nil writer restricts the engine to dry runs.
func NewEngine(cfg Config, provider ScoreProvider, directory UserDirectory, writer SessionWriter, logger zerolog.Logger) (*Engine, error) {
	if provider == nil {
		return nil, ErrNilScoreProvider
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matching: invalid config: %w", err)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		config:    cfg,
		logger:    logger,
		provider:  provider,
		directory: directory,
		writer:    writer,
		builder:   NewMatrixBuilder(provider, cfg.MatrixWorkers, logger),
		optimizer: NewOptimizer(cfg, logger),
		repairer:  NewRepairer(cfg.Sizes, logger),
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // shuffle seeding, not cryptography
	}
	if writer != nil {
		e.materializer = NewMaterializer(writer, cfg.Sizes, logger)
	}
	return e, nil
}

// FormGroups runs one batch: resolve candidates, score all pairs, plan
// sizes, assemble, repair, optimize, repair again, and persist. An empty
// candidate set yields an empty result, and a set smaller than the
// minimum group size yields a single undersized group; neither is an
// error. Per-group persistence failures are reported in the result, not
// returned as an error.
func (e *Engine) FormGroups(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := e.logger.With().Str("run_id", runID).Logger()

	if !req.DryRun && e.writer == nil {
		return nil, ErrNoSessionWriter
	}
	metrics.RecordRunStarted()

	candidates := dedupe(req.CandidateIDs)
	resolved, dropped := e.resolveCandidates(ctx, candidates, logger)

	result := &Result{
		RunID:      runID,
		Groups:     []*Group{},
		DroppedIDs: dropped,
	}
	if len(resolved) == 0 {
		logger.Info().Int("dropped", len(dropped)).Msg("No candidates to group")
		result.Duration = time.Since(start)
		result.CompletedAt = time.Now()
		metrics.RecordRunCompleted(result.Duration, 0)
		return result, nil
	}

	matrix, err := e.builder.Build(ctx, resolved)
	if err != nil {
		metrics.RecordRunFailed()
		return nil, fmt.Errorf("matching: build score matrix: %w", err)
	}

	sizes := PlanGroupSizes(len(resolved), e.config.Sizes)

	e.rngMu.Lock()
	partition := AssembleInitial(resolved, sizes, e.rng, matrix)
	e.rngMu.Unlock()

	e.repairer.Repair(partition, matrix)

	if e.config.SkipOptimization {
		logger.Info().Msg("Optimization disabled, keeping random assignment")
	} else {
		result.OptimizerPasses, result.SwapsApplied = e.optimizer.Optimize(ctx, partition, matrix)
	}

	e.repairer.Repair(partition, matrix)
	e.enforceSizeInvariant(partition, matrix, logger)

	if !req.DryRun {
		result.Outcomes = e.materializer.Materialize(ctx, partition, req.Session)
	}

	result.Groups = partition.Groups
	result.Duration = time.Since(start)
	result.CompletedAt = time.Now()

	metrics.RecordRunCompleted(result.Duration, len(partition.Groups))
	for _, g := range partition.Groups {
		metrics.RecordGroupFormed(g.Size())
	}

	logger.Info().
		Int("candidates", len(resolved)).
		Int("dropped", len(dropped)).
		Int("groups", len(partition.Groups)).
		Int("passes", result.OptimizerPasses).
		Int("swaps", result.SwapsApplied).
		Dur("duration", result.Duration).
		Msg("Group formation complete")

	return result, nil
}

// resolveCandidates looks up every candidate against the user directory.
// Unresolvable or failing IDs are dropped, never fatal: one bad ID must
// not sink the batch.
func (e *Engine) resolveCandidates(ctx context.Context, ids []UserID, logger zerolog.Logger) (resolved, dropped []UserID) {
	if e.directory == nil {
		return ids, nil
	}

	resolved = make([]UserID, 0, len(ids))
	for _, id := range ids {
		_, found, err := e.directory.GetUser(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", string(id)).Msg("User lookup failed, dropping candidate")
			dropped = append(dropped, id)
			continue
		}
		if !found {
			logger.Warn().Str("user_id", string(id)).Msg("Unknown user, dropping candidate")
			dropped = append(dropped, id)
			continue
		}
		resolved = append(resolved, id)
	}
	return resolved, dropped
}

// enforceSizeInvariant re-repairs a partition whose sizes ended up
// outside the rules. That state is a programming error upstream, so it
// is logged loudly before the defensive fix.
func (e *Engine) enforceSizeInvariant(p *Partition, m *Matrix, logger zerolog.Logger) {
	if len(p.Groups) <= 1 {
		return
	}
	for _, g := range p.Groups {
		if g.Size() >= e.config.Sizes.Min && g.Size() <= e.config.Sizes.AbsoluteMax {
			continue
		}
		logger.Error().
			Int("size", g.Size()).
			Int("min", e.config.Sizes.Min).
			Int("absolute_max", e.config.Sizes.AbsoluteMax).
			Msg("Group size invariant violated after repair, re-repairing")
		metrics.RecordInvariantViolation()
		e.repairer.Repair(p, m)
		return
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config.Clone()
}

// dedupe removes duplicate IDs preserving first-seen order.
func dedupe(ids []UserID) []UserID {
	seen := make(map[UserID]struct{}, len(ids))
	out := make([]UserID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
