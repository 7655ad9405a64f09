// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import "math/rand"

// AssembleInitial distributes candidates into groups of the planned
// sizes: shuffle uniformly, then slice contiguously. The assignment is
// deliberately compatibility-agnostic; it only has to be unbiased.
// Quality is the optimizer's job.
//
// The caller owns the rng so runs are reproducible under a fixed seed.
// The input slice is not modified.
func AssembleInitial(ids []UserID, sizes []int, rng *rand.Rand, matrix *Matrix) *Partition {
	shuffled := make([]UserID, len(ids))
	copy(shuffled, ids)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	partition := &Partition{Groups: make([]*Group, 0, len(sizes))}
	offset := 0
	for _, size := range sizes {
		if offset+size > len(shuffled) {
			size = len(shuffled) - offset
		}
		if size <= 0 {
			break
		}
		members := make([]UserID, size)
		copy(members, shuffled[offset:offset+size])
		offset += size

		partition.Groups = append(partition.Groups, &Group{
			Members:          members,
			AvgCompatibility: matrix.GroupCompatibility(members),
		})
	}

	return partition
}
