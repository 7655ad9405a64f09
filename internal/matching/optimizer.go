// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/metrics"
)

// Optimizer improves a partition by local search: it repeatedly swaps one
// user between two groups when the swap strictly increases the combined
// compatibility of the two groups, until a full pass makes no swap or the
// pass cap is hit.
//
// Swaps are one-for-one, so the multiset of group sizes never changes and
// total compatibility never decreases. First-improvement is deliberate:
// it matches the greedy shape of the scoring pipeline and bounds per-pass
// cost.
type Optimizer struct {
	rules         SizeRules
	gainThreshold float64
	maxPasses     int
	logger        zerolog.Logger
}

// NewOptimizer creates an optimizer from the engine configuration.
func NewOptimizer(cfg Config, logger zerolog.Logger) *Optimizer {
	return &Optimizer{
		rules:         cfg.Sizes,
		gainThreshold: cfg.ExtendedGainThreshold,
		maxPasses:     cfg.MaxOptimizerPasses,
		logger:        logger,
	}
}

// Optimize runs swap passes over the partition in place. It returns the
// number of completed passes and the total swaps applied.
func (o *Optimizer) Optimize(ctx context.Context, p *Partition, m *Matrix) (passes, swaps int) {
	for passes < o.maxPasses {
		if ContextCancelled(ctx) {
			return passes, swaps
		}

		applied := o.runPass(p, m)
		passes++
		swaps += applied
		metrics.RecordOptimizerPass(applied)

		if applied == 0 {
			// Fixed point: no admissible improving swap remains.
			break
		}
	}

	o.logger.Debug().
		Int("passes", passes).
		Int("swaps", swaps).
		Float64("total_compatibility", p.TotalCompatibility()).
		Msg("Local search finished")
	return passes, swaps
}

// runPass evaluates every candidate swap once and applies each improving
// admissible swap immediately, so later evaluations in the same pass see
// current state. Returns the number of swaps applied.
func (o *Optimizer) runPass(p *Partition, m *Matrix) int {
	applied := 0
	singleGroup := len(p.Groups) == 1

	for gi := 0; gi < len(p.Groups); gi++ {
		for gj := gi + 1; gj < len(p.Groups); gj++ {
			groupA, groupB := p.Groups[gi], p.Groups[gj]

			// Only near-equal groups trade members; larger imbalances
			// are the repairer's problem.
			diff := groupA.Size() - groupB.Size()
			if diff < -1 || diff > 1 {
				continue
			}

			for ai := 0; ai < len(groupA.Members); ai++ {
				for bi := 0; bi < len(groupB.Members); bi++ {
					if o.trySwap(groupA, groupB, ai, bi, m, singleGroup) {
						applied++
					}
				}
			}
		}
	}

	return applied
}

// trySwap applies the exchange of groupA.Members[ai] and
// groupB.Members[bi] when it is admissible and strictly improves the
// combined compatibility of the two groups. Reports whether it swapped.
func (o *Optimizer) trySwap(groupA, groupB *Group, ai, bi int, m *Matrix, singleGroup bool) bool {
	a := groupA.Members[ai]
	b := groupB.Members[bi]

	// One-for-one swaps keep sizes fixed; the checks stay in terms of
	// resulting sizes so a future move operator inherits them.
	newSizeA := groupA.Size()
	newSizeB := groupB.Size()
	if newSizeA > o.rules.AbsoluteMax || newSizeB > o.rules.AbsoluteMax {
		return false
	}
	if !singleGroup && (newSizeA < o.rules.Min || newSizeB < o.rules.Min) {
		return false
	}

	compA := compatibilityWithReplacement(m, groupA.Members, ai, b)
	compB := compatibilityWithReplacement(m, groupB.Members, bi, a)

	before := groupA.AvgCompatibility + groupB.AvgCompatibility
	after := compA + compB
	if after <= before {
		return false
	}

	// Extended groups are strongly disfavored: touching one is only
	// worth it for a large relative gain.
	extended := newSizeA > o.rules.StandardMax || newSizeB > o.rules.StandardMax
	if extended && after < before*(1+o.gainThreshold) {
		return false
	}

	groupA.Members[ai] = b
	groupB.Members[bi] = a
	groupA.AvgCompatibility = compA
	groupB.AvgCompatibility = compB
	metrics.RecordSwapApplied()
	return true
}

// compatibilityWithReplacement computes the group compatibility that
// results from replacing members[idx] with the given user.
func compatibilityWithReplacement(m *Matrix, members []UserID, idx int, replacement UserID) float64 {
	candidate := make([]UserID, len(members))
	copy(candidate, members)
	candidate[idx] = replacement
	return m.GroupCompatibility(candidate)
}
