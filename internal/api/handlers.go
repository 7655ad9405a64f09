// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/afrantzeskakis/convive/internal/logging"
	"github.com/afrantzeskakis/convive/internal/matching"
	"github.com/afrantzeskakis/convive/internal/store"
	"github.com/afrantzeskakis/convive/internal/validation"
)

// maxRequestBody caps request body size at 1 MiB.
const maxRequestBody = 1 << 20

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	engine *matching.Engine
	users  *store.UserStore
	runs   *store.RunStore
}

// NewHandlers creates the handler set.
func NewHandlers(engine *matching.Engine, users *store.UserStore, runs *store.RunStore) *Handlers {
	return &Handlers{
		engine: engine,
		users:  users,
		runs:   runs,
	}
}

// handleLivez reports process liveness.
func (h *Handlers) handleLivez(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]string{"status": "ok"})
}

// handleReadyz reports readiness. The engine is constructed before the
// HTTP listener starts, so readiness reduces to dependency presence.
func (h *Handlers) handleReadyz(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.engine == nil {
		rw.ServiceUnavailable("Matching engine not initialized")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// handleCreateMatchRun runs group formation over the submitted
// candidate pool and returns the resulting partition.
func (h *Handlers) handleCreateMatchRun(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req matchRunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if !req.DryRun && req.Session == nil {
		rw.BadRequest("session is required unless dry_run is set")
		return
	}
	if req.Session != nil {
		if verr := validation.ValidateStruct(req.Session); verr != nil {
			apiErr := verr.ToAPIError()
			rw.ValidationError(apiErr.Message, apiErr.Details)
			return
		}
	}

	result, err := h.engine.FormGroups(r.Context(), req.toMatchingRequest())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Match run failed")
		rw.InternalError("Match run failed: " + err.Error())
		return
	}

	if err := h.runs.Put(r.Context(), result); err != nil {
		// The run already succeeded; losing the history record is
		// worth a warning but not a client-facing failure.
		logging.Ctx(r.Context()).Warn().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run record")
	}

	rw.Created(result)
}

// handleListRuns returns all recorded match runs.
func (h *Handlers) handleListRuns(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	runs, err := h.runs.List(r.Context())
	if err != nil {
		rw.StorageError(err)
		return
	}
	rw.SuccessWithCount(runs, len(runs))
}

// handleGetRun returns one recorded match run by ID.
func (h *Handlers) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	runID := chi.URLParam(r, "runID")

	result, err := h.runs.Get(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			rw.NotFound("Run not found: " + runID)
			return
		}
		rw.StorageError(err)
		return
	}
	rw.Success(result)
}

// handleUpsertUser creates or replaces a candidate pool member.
func (h *Handlers) handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := matching.UserID(chi.URLParam(r, "userID"))

	var req userUpsertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	user := matching.User{ID: userID, DisplayName: req.DisplayName}
	if err := h.users.Put(r.Context(), user, req.Profile.toProfile(userID)); err != nil {
		rw.StorageError(err)
		return
	}

	rw.Success(map[string]string{"user_id": string(userID)})
}

// handleGetUser returns one candidate pool member with their profile.
func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := matching.UserID(chi.URLParam(r, "userID"))

	user, found, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		rw.StorageError(err)
		return
	}
	if !found {
		rw.NotFound("User not found: " + string(userID))
		return
	}

	profile, _, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		rw.StorageError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"user_id":      user.ID,
		"display_name": user.DisplayName,
		"profile":      profile,
	})
}

// handleListUsers returns all candidate pool member IDs.
func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ids, err := h.users.List(r.Context())
	if err != nil {
		rw.StorageError(err)
		return
	}
	rw.SuccessWithCount(ids, len(ids))
}

// handleDeleteUser removes a candidate pool member.
func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := matching.UserID(chi.URLParam(r, "userID"))

	if err := h.users.Delete(r.Context(), userID); err != nil {
		rw.StorageError(err)
		return
	}
	rw.NoContent()
}

// decodeJSON decodes a request body with a size cap and strict field
// checking.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
