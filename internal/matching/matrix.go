// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/metrics"
)

// pairKey is the canonical (lexicographically ordered) key for an
// unordered user pair.
type pairKey struct {
	a, b UserID
}

func newPairKey(a, b UserID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Matrix holds all pairwise compatibility scores for one candidate set.
// Lookups are O(1); missing pairs score 0. The matrix is immutable after
// Build and safe for concurrent reads.
type Matrix struct {
	scores map[pairKey]float64
}

// Score returns the compatibility between two distinct users. Pairs the
// builder never stored (including a == b, which is undefined) score 0.
func (m *Matrix) Score(a, b UserID) float64 {
	if a == b {
		return 0
	}
	return m.scores[newPairKey(a, b)]
}

// PairCount returns the number of stored pairs.
func (m *Matrix) PairCount() int {
	return len(m.scores)
}

// GroupCompatibility computes the mean over all pairwise scores within
// the member set. Groups of size <= 1 score 0 by definition.
func (m *Matrix) GroupCompatibility(members []UserID) float64 {
	n := len(members)
	if n <= 1 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += m.Score(members[i], members[j])
		}
	}
	return sum / float64(n*(n-1)/2)
}

// MatrixBuilder materializes pairwise scores for a candidate set by
// querying a ScoreProvider once per unordered pair. Provider failures
// degrade the pair to score 0; unreachable data never aborts a batch.
type MatrixBuilder struct {
	provider ScoreProvider
	workers  int
	logger   zerolog.Logger
}

// NewMatrixBuilder creates a builder with the given provider and worker
// count. Workers below 1 are clamped to 1.
func NewMatrixBuilder(provider ScoreProvider, workers int, logger zerolog.Logger) *MatrixBuilder {
	if workers < 1 {
		workers = 1
	}
	return &MatrixBuilder{
		provider: provider,
		workers:  workers,
		logger:   logger,
	}
}

// Build fetches scores for every unordered pair drawn from ids. Pair
// fetches are independent, so they run across the configured workers;
// map writes are serialized under a mutex.
func (b *MatrixBuilder) Build(ctx context.Context, ids []UserID) (*Matrix, error) {
	pairs := make([]pairKey, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, newPairKey(ids[i], ids[j]))
		}
	}

	matrix := &Matrix{scores: make(map[pairKey]float64, len(pairs))}
	if len(pairs) == 0 {
		return matrix, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	chunkSize := (len(pairs) + b.workers - 1) / b.workers

	for w := 0; w < b.workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(chunk []pairKey) {
			defer wg.Done()

			for _, p := range chunk {
				if ContextCancelled(ctx) {
					return
				}

				score, err := b.provider.CompatibilityScore(ctx, p.a, p.b)
				if err != nil {
					// Score 0 keeps the batch alive when the provider
					// cannot serve this pair.
					b.logger.Warn().
						Err(err).
						Str("user_a", string(p.a)).
						Str("user_b", string(p.b)).
						Msg("Compatibility lookup failed, scoring pair 0")
					metrics.RecordScoreLookupError()
					score = 0
				}
				score = clampScore(score)
				metrics.RecordScoreLookup()

				mu.Lock()
				matrix.scores[p] = score
				mu.Unlock()
			}
		}(pairs[start:end])
	}

	wg.Wait()

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	return matrix, nil
}

// clampScore bounds a provider score to [0,100].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// ContextCancelled reports whether the context has been cancelled
// without blocking.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
