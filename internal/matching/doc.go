// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

// Package matching forms dining groups from a pool of candidate users.
//
// Given a candidate set, the engine partitions it into groups ("tables")
// that satisfy hard size constraints and maximize intra-group social
// compatibility. Compatibility between two users is an injected black box
// returning a symmetric score in [0,100]; the engine never computes raw
// scores itself.
//
// A batch run proceeds in fixed phases:
//
//  1. Resolve candidate IDs against the user directory (unresolvable IDs
//     are dropped, not fatal).
//  2. Materialize all pairwise scores into an in-memory matrix.
//  3. Plan group sizes from the candidate count and the size rules.
//  4. Randomly assign candidates to groups of the planned sizes.
//  5. Repair any undersized groups.
//  6. Improve the partition by local search: swap users between groups
//     while total compatibility strictly increases.
//  7. Repair again, then persist each group as a dining session.
//
// The run is a one-shot batch over a fixed candidate set; there is no
// incremental or real-time mode. All randomness flows from a seedable
// source so runs are reproducible in tests.
package matching
