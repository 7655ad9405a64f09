// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/afrantzeskakis/convive/internal/matching"
)

// mapSource serves profiles from a map.
type mapSource struct {
	profiles map[matching.UserID]Profile
	err      error
}

func (s *mapSource) GetProfile(_ context.Context, id matching.UserID) (Profile, bool, error) {
	if s.err != nil {
		return Profile{}, false, s.err
	}
	p, ok := s.profiles[id]
	return p, ok, nil
}

func sourceOf(profiles ...Profile) *mapSource {
	m := make(map[matching.UserID]Profile, len(profiles))
	for _, p := range profiles {
		m[p.UserID] = p
	}
	return &mapSource{profiles: m}
}

func score(t *testing.T, src ProfileSource, a, b matching.UserID) float64 {
	t.Helper()
	got, err := NewQuestionnaireProvider(src).CompatibilityScore(context.Background(), a, b)
	if err != nil {
		t.Fatalf("CompatibilityScore(%s,%s): %v", a, b, err)
	}
	return got
}

func TestIdenticalProfilesScoreFull(t *testing.T) {
	t.Parallel()

	src := sourceOf(
		Profile{UserID: "a", Cuisines: []string{"thai"}, BudgetTier: 2, SocialEnergy: 5, Topics: []string{"travel"}},
		Profile{UserID: "b", Cuisines: []string{"thai"}, BudgetTier: 2, SocialEnergy: 5, Topics: []string{"travel"}},
	)
	if got := score(t, src, "a", "b"); math.Abs(got-100) > 1e-9 {
		t.Errorf("score = %v, want 100", got)
	}
}

func TestScoreIsSymmetric(t *testing.T) {
	t.Parallel()

	src := sourceOf(
		Profile{UserID: "a", Cuisines: []string{"thai", "italian"}, BudgetTier: 1, SocialEnergy: 3, Topics: []string{"film"}},
		Profile{UserID: "b", Cuisines: []string{"thai", "french"}, BudgetTier: 3, SocialEnergy: 8, Topics: []string{"film", "music"}},
	)
	ab := score(t, src, "a", "b")
	ba := score(t, src, "b", "a")
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("asymmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 || ab >= 100 {
		t.Errorf("partial overlap should score strictly between 0 and 100, got %v", ab)
	}
}

func TestScoreKnownValue(t *testing.T) {
	t.Parallel()

	// Same cuisine, budget, and energy; disjoint topics. With default
	// weights each direction is 0.30*100 + 0.20*100 + 0.25*100 = 75.
	src := sourceOf(
		Profile{UserID: "a", Cuisines: []string{"thai"}, BudgetTier: 2, SocialEnergy: 5, Topics: []string{"travel"}},
		Profile{UserID: "b", Cuisines: []string{"thai"}, BudgetTier: 2, SocialEnergy: 5, Topics: []string{"chess"}},
	)
	if got := score(t, src, "a", "b"); math.Abs(got-75) > 1e-9 {
		t.Errorf("score = %v, want 75", got)
	}
}

func TestBudgetDealbreakerZeroesScore(t *testing.T) {
	t.Parallel()

	src := sourceOf(
		Profile{UserID: "a", Cuisines: []string{"thai"}, BudgetTier: 1, SocialEnergy: 5, MaxBudgetGap: 1},
		Profile{UserID: "b", Cuisines: []string{"thai"}, BudgetTier: 3, SocialEnergy: 5},
	)
	if got := score(t, src, "a", "b"); got != 0 {
		t.Errorf("score = %v, want 0 on dealbreaker", got)
	}
	// The dealbreaker applies in either direction.
	if got := score(t, src, "b", "a"); got != 0 {
		t.Errorf("reverse score = %v, want 0", got)
	}
}

func TestDealbreakerWithinGapAllowed(t *testing.T) {
	t.Parallel()

	src := sourceOf(
		Profile{UserID: "a", BudgetTier: 1, SocialEnergy: 5, MaxBudgetGap: 2},
		Profile{UserID: "b", BudgetTier: 3, SocialEnergy: 5},
	)
	if got := score(t, src, "a", "b"); got <= 0 {
		t.Errorf("score = %v, want positive when gap is within the limit", got)
	}
}

func TestCustomWeightsRespected(t *testing.T) {
	t.Parallel()

	// User a only cares about cuisine; everything else mismatched.
	src := sourceOf(
		Profile{
			UserID: "a", Cuisines: []string{"thai"}, BudgetTier: 1, SocialEnergy: 1,
			Weights: ComponentWeights{Cuisine: 1},
		},
		Profile{
			UserID: "b", Cuisines: []string{"thai"}, BudgetTier: 4, SocialEnergy: 10,
			Weights: ComponentWeights{Cuisine: 1},
		},
	)
	if got := score(t, src, "a", "b"); math.Abs(got-100) > 1e-9 {
		t.Errorf("score = %v, want 100 under cuisine-only weights", got)
	}
}

func TestMissingProfileIsError(t *testing.T) {
	t.Parallel()

	src := sourceOf(Profile{UserID: "a"})
	_, err := NewQuestionnaireProvider(src).CompatibilityScore(context.Background(), "a", "ghost")
	if err == nil {
		t.Error("missing profile should be an error")
	}
}

func TestSourceFailurePropagates(t *testing.T) {
	t.Parallel()

	src := &mapSource{err: errors.New("store down")}
	_, err := NewQuestionnaireProvider(src).CompatibilityScore(context.Background(), "a", "b")
	if err == nil {
		t.Error("source failure should propagate")
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 1},
		{"one empty", []string{"x"}, nil, 0},
		{"identical", []string{"x", "y"}, []string{"x", "y"}, 1},
		{"disjoint", []string{"x"}, []string{"y"}, 0},
		{"partial", []string{"thai", "italian"}, []string{"thai", "french"}, 1.0 / 3.0},
		{"duplicates ignored", []string{"x", "x"}, []string{"x"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("jaccard(%v,%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
