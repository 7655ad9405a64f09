// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package matching

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/afrantzeskakis/convive/internal/metrics"
)

// Materializer turns a finalized partition into persisted dining
// sessions. It performs no optimization; it is pure translation to the
// external session store. Failures are recorded per group and never
// abort the remaining groups.
type Materializer struct {
	writer SessionWriter
	rules  SizeRules
	logger zerolog.Logger
}

// NewMaterializer creates a materializer writing through the given
// session store.
func NewMaterializer(writer SessionWriter, rules SizeRules, logger zerolog.Logger) *Materializer {
	return &Materializer{writer: writer, rules: rules, logger: logger}
}

// Materialize persists each group as one session and registers every
// member as a confirmed participant. A group exceeding the absolute cap
// cannot occur after repair, but is defensively split into consecutive
// sub-batches rather than persisted oversize.
func (mat *Materializer) Materialize(ctx context.Context, p *Partition, spec SessionSpec) []GroupOutcome {
	outcomes := make([]GroupOutcome, 0, len(p.Groups))
	table := 0

	for _, g := range p.Groups {
		for _, members := range splitOversize(g.Members, mat.rules.AbsoluteMax) {
			table++
			outcomes = append(outcomes, mat.materializeOne(ctx, members, g.AvgCompatibility, spec, table))
		}
	}

	return outcomes
}

// materializeOne creates one session and adds its participants.
func (mat *Materializer) materializeOne(ctx context.Context, members []UserID, avg float64, spec SessionSpec, table int) GroupOutcome {
	outcome := GroupOutcome{
		Members:          members,
		AvgCompatibility: avg,
	}

	tableSpec := spec
	tableSpec.Title = fmt.Sprintf("%s - Table %d", spec.Title, table)

	sessionID, err := mat.writer.CreateSession(ctx, tableSpec, mat.rules.AbsoluteMax)
	if err != nil {
		mat.logger.Error().
			Err(err).
			Int("table", table).
			Int("members", len(members)).
			Msg("Session creation failed")
		metrics.RecordMaterializationFailure()
		outcome.Err = fmt.Sprintf("create session: %v", err)
		return outcome
	}
	outcome.SessionID = sessionID

	for _, id := range members {
		if err := mat.writer.AddParticipant(ctx, sessionID, id, ParticipantStatusConfirmed); err != nil {
			mat.logger.Error().
				Err(err).
				Str("session_id", sessionID).
				Str("user_id", string(id)).
				Msg("Participant registration failed")
			metrics.RecordMaterializationFailure()
			outcome.Err = fmt.Sprintf("add participant %s: %v", id, err)
			return outcome
		}
	}

	return outcome
}

// splitOversize cuts a member list into consecutive batches of at most
// limit users. Lists within the limit come back unchanged.
func splitOversize(members []UserID, limit int) [][]UserID {
	if len(members) <= limit {
		return [][]UserID{members}
	}

	var batches [][]UserID
	for start := 0; start < len(members); start += limit {
		end := start + limit
		if end > len(members) {
			end = len(members)
		}
		batches = append(batches, members[start:end])
	}
	return batches
}
