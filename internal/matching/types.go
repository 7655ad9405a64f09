// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"context"
	"time"
)

// UserID identifies a user in the external user store.
type UserID string

// User is an immutable snapshot of a user for the duration of one run.
// Attributes beyond the ID belong to the user store; the engine only
// carries what it needs for logging and session registration.
type User struct {
	// ID is the opaque user identifier.
	ID UserID

	// DisplayName is shown in logs and session rosters.
	DisplayName string
}

// Group is a mutable set of users assigned to dine together, plus the
// cached mean of all pairwise compatibility scores within it. Member
// order carries no meaning. A group of size <= 1 has compatibility 0.
type Group struct {
	// Members holds the user IDs assigned to this group.
	Members []UserID

	// AvgCompatibility is the mean over all size*(size-1)/2 pairwise
	// scores. Kept current by the optimizer and repairer so comparisons
	// always see up-to-date state.
	AvgCompatibility float64
}

// Size returns the number of members in the group.
func (g *Group) Size() int {
	return len(g.Members)
}

// Partition is the ordered collection of all groups for one run.
// Except in the single-group degenerate case, every candidate appears in
// exactly one group and every group size lies within the size rules.
type Partition struct {
	Groups []*Group
}

// TotalCompatibility sums the average compatibility across all groups.
// The optimizer guarantees this never decreases.
func (p *Partition) TotalCompatibility() float64 {
	var total float64
	for _, g := range p.Groups {
		total += g.AvgCompatibility
	}
	return total
}

// UserCount returns the total number of users across all groups.
func (p *Partition) UserCount() int {
	var n int
	for _, g := range p.Groups {
		n += g.Size()
	}
	return n
}

// SessionSpec carries the session attributes the external store needs to
// persist one group as a reservable dining session.
type SessionSpec struct {
	// Title is the session title. The materializer appends a table number.
	Title string `json:"title" validate:"required,max=200"`

	// Date is the calendar date of the dinner.
	Date time.Time `json:"date" validate:"required"`

	// RestaurantID identifies the venue.
	RestaurantID string `json:"restaurant_id" validate:"required"`

	// StartTime and EndTime bound the seating window.
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`

	// CreatorUserID is recorded as the session creator.
	CreatorUserID UserID `json:"creator_user_id" validate:"required"`
}

// Request describes one batch run: the candidate pool and the session
// template used when persisting the resulting groups.
type Request struct {
	// CandidateIDs is the pool of users to partition. Duplicates are
	// collapsed; unresolvable IDs are dropped with a warning.
	CandidateIDs []UserID `json:"candidate_ids" validate:"required,min=1,dive,required"`

	// Session is the template for persisted sessions, one per group.
	Session SessionSpec `json:"session"`

	// DryRun skips materialization and returns the partition only.
	DryRun bool `json:"dry_run"`
}

// GroupOutcome reports the materialization result for one group.
type GroupOutcome struct {
	// SessionID is set when the session was created.
	SessionID string `json:"session_id,omitempty"`

	// Members lists the group's users.
	Members []UserID `json:"members"`

	// AvgCompatibility is the group's final score.
	AvgCompatibility float64 `json:"avg_compatibility"`

	// Err records a per-group materialization failure. A failed group
	// never aborts the others.
	Err string `json:"error,omitempty"`
}

// Result is the outcome of one FormGroups run.
type Result struct {
	// RunID uniquely identifies this batch run.
	RunID string `json:"run_id"`

	// Groups holds the final partition.
	Groups []*Group `json:"groups"`

	// Outcomes reports per-group materialization results, empty for
	// dry runs.
	Outcomes []GroupOutcome `json:"outcomes,omitempty"`

	// DroppedIDs lists candidate IDs that could not be resolved.
	DroppedIDs []UserID `json:"dropped_ids,omitempty"`

	// OptimizerPasses and SwapsApplied describe the local-search phase.
	OptimizerPasses int `json:"optimizer_passes"`
	SwapsApplied    int `json:"swaps_applied"`

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration"`

	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completed_at"`
}

// ScoreProvider supplies the symmetric compatibility score in [0,100]
// for a pair of users. Implementations may cache; the engine queries each
// unordered pair at most once per run. Score(a,b) must equal Score(b,a)
// and must be deterministic for a given pair within one run.
type ScoreProvider interface {
	CompatibilityScore(ctx context.Context, a, b UserID) (float64, error)
}

// UserDirectory resolves candidate IDs against the external user store.
type UserDirectory interface {
	// GetUser returns the user and true when the ID resolves. A false
	// return is not an error; the caller drops the ID and continues.
	GetUser(ctx context.Context, id UserID) (User, bool, error)
}

// SessionWriter persists finalized groups as dining sessions. Both calls
// may fail per group without affecting other groups.
type SessionWriter interface {
	CreateSession(ctx context.Context, spec SessionSpec, maxParticipants int) (string, error)
	AddParticipant(ctx context.Context, sessionID string, userID UserID, status string) error
}

// ParticipantStatusConfirmed is the status recorded for every member of a
// materialized group.
const ParticipantStatusConfirmed = "confirmed"
