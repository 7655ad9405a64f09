// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"testing"

	"github.com/rs/zerolog"
)

func testRepairer() *Repairer {
	return NewRepairer(DefaultSizeRules(), zerolog.Nop())
}

func TestRepairDissolvesUndersizedGroup(t *testing.T) {
	t.Parallel()

	m := buildTestMatrix(t, &stubProvider{fallback: 50}, makeIDs(12), 1)
	p := &Partition{Groups: []*Group{
		newGroup(m, "u00", "u01", "u02", "u03", "u04"),
		newGroup(m, "u05", "u06", "u07", "u08", "u09"),
		newGroup(m, "u10", "u11"),
	}}

	testRepairer().Repair(p, m)

	if len(p.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(p.Groups))
	}
	seen := memberSet(t, p)
	if len(seen) != 12 {
		t.Errorf("users = %d, want 12", len(seen))
	}
	for _, g := range p.Groups {
		if g.Size() < DefaultMinGroupSize || g.Size() > DefaultAbsoluteMaxGroupSize {
			t.Errorf("group size %d outside bounds", g.Size())
		}
		if g.AvgCompatibility != 50 {
			t.Errorf("avg not recomputed: %v", g.AvgCompatibility)
		}
	}
}

func TestRepairPrefersSmallestGroupUnderStandardCap(t *testing.T) {
	t.Parallel()

	m := buildTestMatrix(t, &stubProvider{}, makeIDs(11), 1)
	p := &Partition{Groups: []*Group{
		newGroup(m, "u00", "u01", "u02", "u03", "u04", "u05"),
		newGroup(m, "u06", "u07", "u08", "u09"),
		newGroup(m, "u10"),
	}}

	testRepairer().Repair(p, m)

	if len(p.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(p.Groups))
	}
	// The orphan lands in the 4-seat group, not the full 6-seat one.
	for _, g := range p.Groups {
		if g.Size() != 5 && g.Size() != 6 {
			t.Errorf("unexpected size %d", g.Size())
		}
	}
}

func TestRepairSpillsToExtendedWhenStandardFull(t *testing.T) {
	t.Parallel()

	m := buildTestMatrix(t, &stubProvider{}, makeIDs(13), 1)
	p := &Partition{Groups: []*Group{
		newGroup(m, "u00", "u01", "u02", "u03", "u04", "u05"),
		newGroup(m, "u06", "u07", "u08", "u09", "u10", "u11"),
		newGroup(m, "u12"),
	}}

	testRepairer().Repair(p, m)

	if len(p.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(p.Groups))
	}
	sizes := []int{p.Groups[0].Size(), p.Groups[1].Size()}
	if !(sizes[0] == 7 && sizes[1] == 6 || sizes[0] == 6 && sizes[1] == 7) {
		t.Errorf("sizes = %v, want one 7 and one 6", sizes)
	}
}

func TestRepairLeavesSingleGroupAlone(t *testing.T) {
	t.Parallel()

	m := buildTestMatrix(t, &stubProvider{}, makeIDs(3), 1)
	p := &Partition{Groups: []*Group{newGroup(m, "u00", "u01", "u02")}}

	testRepairer().Repair(p, m)

	if len(p.Groups) != 1 || p.Groups[0].Size() != 3 {
		t.Errorf("single undersized group should be untouched, got %d groups", len(p.Groups))
	}
}

func TestRepairNoopOnValidPartition(t *testing.T) {
	t.Parallel()

	m := buildTestMatrix(t, &stubProvider{}, makeIDs(10), 1)
	p := &Partition{Groups: []*Group{
		newGroup(m, "u00", "u01", "u02", "u03", "u04"),
		newGroup(m, "u05", "u06", "u07", "u08", "u09"),
	}}

	testRepairer().Repair(p, m)

	if len(p.Groups) != 2 || p.Groups[0].Size() != 5 || p.Groups[1].Size() != 5 {
		t.Error("valid partition should be untouched")
	}
}
