// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"sort"

	"github.com/rs/zerolog"
)

// Repairer guarantees no group falls below the minimum size. It runs
// after initial assembly and again after optimization, because both the
// naive assignment and swap sequences can in principle leave an
// undersized group behind.
type Repairer struct {
	rules  SizeRules
	logger zerolog.Logger
}

// NewRepairer creates a repairer for the given size rules.
func NewRepairer(rules SizeRules, logger zerolog.Logger) *Repairer {
	return &Repairer{rules: rules, logger: logger}
}

// Repair dissolves undersized groups and redistributes their members.
// Placement prefers the currently-smallest group with room under the
// standard cap, then the smallest with room under the absolute cap, then
// a fresh singleton as a last resort. Touched groups get their cached
// compatibility recomputed. A lone remaining group is left as-is even
// when undersized; a whole candidate set below the minimum is a
// documented exception, not a failure.
func (r *Repairer) Repair(p *Partition, m *Matrix) {
	for {
		sort.Slice(p.Groups, func(i, j int) bool {
			return p.Groups[i].Size() < p.Groups[j].Size()
		})
		if len(p.Groups) <= 1 || p.Groups[0].Size() >= r.rules.Min {
			return
		}

		dissolved := p.Groups[0]
		p.Groups = p.Groups[1:]
		r.logger.Debug().
			Int("size", dissolved.Size()).
			Int("remaining_groups", len(p.Groups)).
			Msg("Dissolving undersized group")

		for _, id := range dissolved.Members {
			r.place(p, id, m)
		}
	}
}

// place inserts one user into the partition per the redistribution rule.
func (r *Repairer) place(p *Partition, id UserID, m *Matrix) {
	if target := r.smallestWithRoom(p, r.rules.StandardMax); target != nil {
		r.add(target, id, m)
		return
	}
	if target := r.smallestWithRoom(p, r.rules.AbsoluteMax); target != nil {
		r.add(target, id, m)
		return
	}

	// Every group is at the absolute cap; open a singleton and let the
	// next repair round fold it in if members keep arriving.
	p.Groups = append(p.Groups, &Group{Members: []UserID{id}})
}

// smallestWithRoom returns the smallest group strictly under the cap,
// or nil when none has room.
func (r *Repairer) smallestWithRoom(p *Partition, limit int) *Group {
	var best *Group
	for _, g := range p.Groups {
		if g.Size() >= limit {
			continue
		}
		if best == nil || g.Size() < best.Size() {
			best = g
		}
	}
	return best
}

func (r *Repairer) add(g *Group, id UserID, m *Matrix) {
	g.Members = append(g.Members, id)
	g.AvgCompatibility = m.GroupCompatibility(g.Members)
}
