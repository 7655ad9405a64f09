// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"math"
	"sort"
)

// PlanGroupSizes computes how many groups to form for n candidates and
// the target size of each. The returned sizes sum to n and each lies in
// [rules.Min, rules.AbsoluteMax], with one documented exception: when
// n < rules.Min the only possible answer is a single undersized group.
//
// The heuristics choosing the group count are not jointly feasible for
// every n, so a repair loop after the balanced split is the actual
// feasibility guarantee.
func PlanGroupSizes(n int, rules SizeRules) []int {
	if n <= 0 {
		return nil
	}
	if n < rules.Min {
		return []int{n}
	}

	numGroups := int(math.Round(float64(n) / rules.Target))
	if numGroups < 1 {
		numGroups = 1
	}

	// Avoid groups that blow past the standard cap by more than half a
	// seat.
	if float64(n)/float64(numGroups) > float64(rules.StandardMax)+0.5 {
		numGroups = int(math.Ceil(float64(n) / float64(rules.StandardMax)))
	}

	// Avoid groups below the minimum, but never so few groups that the
	// absolute cap is violated.
	if numGroups > 1 && float64(n)/float64(numGroups) < float64(rules.Min) {
		byAbsoluteCap := int(math.Ceil(float64(n) / float64(rules.AbsoluteMax)))
		byMinimum := n / rules.Min
		numGroups = byAbsoluteCap
		if byMinimum > numGroups {
			numGroups = byMinimum
		}
	}
	if numGroups < 1 {
		numGroups = 1
	}

	// Balanced split: sizes differ from each other by at most 1.
	base := n / numGroups
	remainder := n % numGroups
	sizes := make([]int, numGroups)
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}

	return repairPlannedSizes(sizes, rules)
}

// repairPlannedSizes dissolves undersized planned groups and round-robin
// redistributes their seats, preferring groups still under the absolute
// cap. Runs until no group is undersized or only one group remains.
func repairPlannedSizes(sizes []int, rules SizeRules) []int {
	for {
		sort.Ints(sizes)
		if len(sizes) <= 1 || sizes[0] >= rules.Min {
			return sizes
		}

		seats := sizes[0]
		sizes = sizes[1:]

		for seats > 0 {
			placed := false
			for i := range sizes {
				if sizes[i] < rules.AbsoluteMax {
					sizes[i]++
					seats--
					placed = true
					if seats == 0 {
						break
					}
				}
			}
			if !placed {
				// Nowhere under the cap; open a new single-seat group
				// and let the next repair round deal with it.
				sizes = append(sizes, 1)
				seats--
			}
		}
	}
}
