// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package scoring

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/afrantzeskakis/convive/internal/matching"
)

// RateLimitedProvider bounds outbound score computations per second.
// The matrix builder issues pair lookups concurrently; this decorator
// keeps that concurrency polite toward a remote or expensive scorer.
type RateLimitedProvider struct {
	next    matching.ScoreProvider
	limiter *rate.Limiter
}

var _ matching.ScoreProvider = (*RateLimitedProvider)(nil)

// NewRateLimitedProvider wraps the provider with a token bucket of the
// given rate and burst.
func NewRateLimitedProvider(next matching.ScoreProvider, perSecond float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// CompatibilityScore waits for a token, then delegates. A cancelled
// context surfaces as an error and the pair degrades to score 0.
func (r *RateLimitedProvider) CompatibilityScore(ctx context.Context, a, b matching.UserID) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return r.next.CompatibilityScore(ctx, a, b)
}
