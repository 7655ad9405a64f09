// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/afrantzeskakis/convive/internal/matching"
)

// BreakerConfig controls the circuit breaker around a score provider.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string

	// FailureThreshold is the consecutive failure count that opens the
	// breaker.
	// Default: 5
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing.
	// Default: 30s
	Timeout time.Duration

	// MaxRequests is the probe budget in half-open state.
	// Default: 1
	MaxRequests uint32
}

// DefaultBreakerConfig returns sane production settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "compatibility-provider",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// BreakerProvider wraps a score provider in a circuit breaker. While the
// breaker is open, lookups fail fast and the matrix builder scores the
// pair 0, so a dead scoring dependency slows nothing down and sinks no
// batch.
type BreakerProvider struct {
	next    matching.ScoreProvider
	breaker *gobreaker.CircuitBreaker[float64]
}

var _ matching.ScoreProvider = (*BreakerProvider)(nil)

// NewBreakerProvider wraps the provider with a circuit breaker.
func NewBreakerProvider(next matching.ScoreProvider, cfg BreakerConfig, logger zerolog.Logger) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Score provider breaker state change")
		},
	}

	return &BreakerProvider{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[float64](settings),
	}
}

// CompatibilityScore delegates through the breaker.
func (b *BreakerProvider) CompatibilityScore(ctx context.Context, ua, ub matching.UserID) (float64, error) {
	return b.breaker.Execute(func() (float64, error) {
		return b.next.CompatibilityScore(ctx, ua, ub)
	})
}
