// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package api

import (
	"time"

	"github.com/afrantzeskakis/convive/internal/matching"
	"github.com/afrantzeskakis/convive/internal/matching/scoring"
)

// matchRunRequest is the request body for POST /api/v1/matches.
type matchRunRequest struct {
	// CandidateIDs is the pool of users to partition into groups.
	CandidateIDs []string `json:"candidate_ids" validate:"required,min=1,dive,required"`

	// Session is the template used when persisting groups as dining
	// sessions. Required unless DryRun is set.
	Session *sessionSpecRequest `json:"session,omitempty"`

	// DryRun computes group assignments without creating sessions.
	DryRun bool `json:"dry_run"`
}

// sessionSpecRequest carries the session template fields.
type sessionSpecRequest struct {
	Title         string    `json:"title" validate:"required,max=200"`
	Date          time.Time `json:"date" validate:"required"`
	RestaurantID  string    `json:"restaurant_id" validate:"required"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	CreatorUserID string    `json:"creator_user_id" validate:"required"`
}

// toMatchingRequest converts the API request into the engine's form.
func (req *matchRunRequest) toMatchingRequest() matching.Request {
	ids := make([]matching.UserID, len(req.CandidateIDs))
	for i, id := range req.CandidateIDs {
		ids[i] = matching.UserID(id)
	}

	out := matching.Request{
		CandidateIDs: ids,
		DryRun:       req.DryRun,
	}
	if req.Session != nil {
		out.Session = matching.SessionSpec{
			Title:         req.Session.Title,
			Date:          req.Session.Date,
			RestaurantID:  req.Session.RestaurantID,
			StartTime:     req.Session.StartTime,
			EndTime:       req.Session.EndTime,
			CreatorUserID: matching.UserID(req.Session.CreatorUserID),
		}
	}
	return out
}

// userUpsertRequest is the request body for PUT /api/v1/users/{id}.
type userUpsertRequest struct {
	// DisplayName is shown in logs and session rosters.
	DisplayName string `json:"display_name" validate:"required,max=100"`

	// Profile holds the questionnaire answers used for scoring.
	Profile profileRequest `json:"profile"`
}

// profileRequest mirrors the questionnaire profile.
type profileRequest struct {
	Cuisines     []string `json:"cuisines"`
	BudgetTier   int      `json:"budget_tier" validate:"gte=1,lte=4"`
	SocialEnergy int      `json:"social_energy" validate:"gte=1,lte=10"`
	Topics       []string `json:"topics"`
	MaxBudgetGap int      `json:"max_budget_gap" validate:"gte=0,lte=3"`
}

// toProfile converts the API profile into the scoring form.
func (p *profileRequest) toProfile(id matching.UserID) scoring.Profile {
	return scoring.Profile{
		UserID:       id,
		Cuisines:     p.Cuisines,
		BudgetTier:   p.BudgetTier,
		SocialEnergy: p.SocialEnergy,
		Topics:       p.Topics,
		MaxBudgetGap: p.MaxBudgetGap,
	}
}
