// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package scoring

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/matching"
	"github.com/afrantzeskakis/convive/internal/metrics"
)

// pairKey canonically orders an unordered user pair.
type pairKey struct {
	a, b matching.UserID
}

func newPairKey(a, b matching.UserID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// MemoizingProvider caches scores in memory for the lifetime of the
// decorator. Errors are not cached, so a transient failure retries on
// the next lookup. Safe for concurrent use.
type MemoizingProvider struct {
	next matching.ScoreProvider

	mu     sync.RWMutex
	scores map[pairKey]float64
}

var _ matching.ScoreProvider = (*MemoizingProvider)(nil)

// NewMemoizingProvider wraps a provider with an in-memory score cache.
func NewMemoizingProvider(next matching.ScoreProvider) *MemoizingProvider {
	return &MemoizingProvider{
		next:   next,
		scores: make(map[pairKey]float64),
	}
}

// CompatibilityScore serves from cache when possible.
func (m *MemoizingProvider) CompatibilityScore(ctx context.Context, a, b matching.UserID) (float64, error) {
	key := newPairKey(a, b)

	m.mu.RLock()
	score, ok := m.scores[key]
	m.mu.RUnlock()
	if ok {
		metrics.RecordScoreCacheHit()
		return score, nil
	}
	metrics.RecordScoreCacheMiss()

	score, err := m.next.CompatibilityScore(ctx, a, b)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.scores[key] = score
	m.mu.Unlock()
	return score, nil
}

// Len returns the number of cached pairs.
func (m *MemoizingProvider) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scores)
}

// PairScoreCache is a persistent score store shared across runs.
// Backed by the badger score store in production.
type PairScoreCache interface {
	GetScore(ctx context.Context, a, b matching.UserID) (float64, bool, error)
	PutScore(ctx context.Context, a, b matching.UserID, score float64) error
}

// PersistentProvider reads through a cross-run score cache. Cache
// failures degrade to recomputation; a cache that cannot store a fresh
// score only logs. The core engine works identically with or without
// this decorator.
type PersistentProvider struct {
	next   matching.ScoreProvider
	cache  PairScoreCache
	logger zerolog.Logger
}

var _ matching.ScoreProvider = (*PersistentProvider)(nil)

// NewPersistentProvider wraps a provider with a persistent score cache.
func NewPersistentProvider(next matching.ScoreProvider, cache PairScoreCache, logger zerolog.Logger) *PersistentProvider {
	return &PersistentProvider{next: next, cache: cache, logger: logger}
}

// CompatibilityScore serves the stored score when present, otherwise
// computes and stores it.
func (p *PersistentProvider) CompatibilityScore(ctx context.Context, a, b matching.UserID) (float64, error) {
	score, ok, err := p.cache.GetScore(ctx, a, b)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Score cache read failed, recomputing")
	} else if ok {
		metrics.RecordScoreCacheHit()
		return score, nil
	}
	metrics.RecordScoreCacheMiss()

	score, err = p.next.CompatibilityScore(ctx, a, b)
	if err != nil {
		return 0, err
	}

	if err := p.cache.PutScore(ctx, a, b, score); err != nil {
		p.logger.Warn().Err(err).Msg("Score cache write failed")
	}
	return score, nil
}
