// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package scoring provides compatibility score providers and decorators.
//
// The engine treats scoring as an injected black box; this package
// supplies a concrete questionnaire-based provider plus composable
// decorators for memoization, cross-run persistence, circuit breaking,
// and rate limiting. Decorators wrap any matching.ScoreProvider, so they
// stack in any order.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/afrantzeskakis/convive/internal/matching"
)

// Profile captures a user's dining preferences as answered in the signup
// questionnaire.
type Profile struct {
	UserID matching.UserID `json:"user_id"`

	// Cuisines the user enjoys, e.g. "thai", "italian".
	Cuisines []string `json:"cuisines"`

	// BudgetTier is 1 (street food) through 4 (fine dining).
	BudgetTier int `json:"budget_tier"`

	// SocialEnergy is 1 (quiet listener) through 10 (life of the table).
	SocialEnergy int `json:"social_energy"`

	// Topics the user likes to talk about over dinner.
	Topics []string `json:"topics"`

	// MaxBudgetGap is a dealbreaker: the largest budget tier difference
	// the user accepts in a tablemate. Zero means no dealbreaker.
	MaxBudgetGap int `json:"max_budget_gap"`

	// Weights express how much each component matters to this user.
	// Zero-value weights fall back to DefaultWeights.
	Weights ComponentWeights `json:"weights"`
}

// ComponentWeights are a user's relative importance per score component.
type ComponentWeights struct {
	Cuisine float64 `json:"cuisine"`
	Budget  float64 `json:"budget"`
	Energy  float64 `json:"energy"`
	Topics  float64 `json:"topics"`
}

// DefaultWeights balance the components with a slight tilt toward shared
// cuisine taste.
func DefaultWeights() ComponentWeights {
	return ComponentWeights{Cuisine: 0.30, Budget: 0.20, Energy: 0.25, Topics: 0.25}
}

func (w ComponentWeights) total() float64 {
	return w.Cuisine + w.Budget + w.Energy + w.Topics
}

// ProfileSource supplies dining profiles from the profile store.
type ProfileSource interface {
	GetProfile(ctx context.Context, id matching.UserID) (Profile, bool, error)
}

// QuestionnaireProvider computes pairwise compatibility from two dining
// profiles. Each direction is scored against that user's own importance
// weights; the overall score is the geometric mean of the two directions,
// so one-sided enthusiasm cannot carry a pair. A dealbreaker on either
// side zeroes the score.
type QuestionnaireProvider struct {
	profiles ProfileSource
}

var _ matching.ScoreProvider = (*QuestionnaireProvider)(nil)

// NewQuestionnaireProvider creates a provider reading from the given
// profile source.
func NewQuestionnaireProvider(profiles ProfileSource) *QuestionnaireProvider {
	return &QuestionnaireProvider{profiles: profiles}
}

// CompatibilityScore returns the symmetric score in [0,100] for a pair.
// A missing profile is an error; the matrix builder degrades the pair to
// score 0.
func (q *QuestionnaireProvider) CompatibilityScore(ctx context.Context, a, b matching.UserID) (float64, error) {
	profileA, ok, err := q.profiles.GetProfile(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("scoring: load profile %s: %w", a, err)
	}
	if !ok {
		return 0, fmt.Errorf("scoring: no profile for user %s", a)
	}

	profileB, ok, err := q.profiles.GetProfile(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("scoring: load profile %s: %w", b, err)
	}
	if !ok {
		return 0, fmt.Errorf("scoring: no profile for user %s", b)
	}

	if hasDealbreaker(profileA, profileB) || hasDealbreaker(profileB, profileA) {
		return 0, nil
	}

	aToB := directionalScore(profileA, profileB)
	bToA := directionalScore(profileB, profileA)
	return clamp(math.Sqrt(aToB*bToA), 0, 100), nil
}

// hasDealbreaker reports whether other violates one of p's hard limits.
func hasDealbreaker(p, other Profile) bool {
	if p.MaxBudgetGap <= 0 {
		return false
	}
	return absInt(p.BudgetTier-other.BudgetTier) > p.MaxBudgetGap
}

// directionalScore rates other from p's point of view, weighting each
// component by p's declared importance.
func directionalScore(p, other Profile) float64 {
	weights := p.Weights
	if weights.total() == 0 {
		weights = DefaultWeights()
	}

	cuisine := jaccard(p.Cuisines, other.Cuisines) * 100
	budget := clamp(100-25*math.Abs(float64(p.BudgetTier-other.BudgetTier)), 0, 100)
	energy := clamp(100-10*math.Abs(float64(p.SocialEnergy-other.SocialEnergy)), 0, 100)
	topics := jaccard(p.Topics, other.Topics) * 100

	weighted := weights.Cuisine*cuisine + weights.Budget*budget + weights.Energy*energy + weights.Topics*topics
	return weighted / weights.total()
}

// jaccard computes set overlap in [0,1]. Two empty sets count as fully
// overlapping so blank questionnaires don't read as incompatibility.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}

	intersection := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
