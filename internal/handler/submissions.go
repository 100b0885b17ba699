// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/util"
)

// SubmissionResponse represents an appointment request in API responses.
// ScheduledAt is the stored UTC instant; ScheduledAtLocal renders it in the
// submission's timezone for display.
type SubmissionResponse struct {
	ID               int64      `json:"id"`
	ClientID         int64      `json:"client_id"`
	ServiceID        int64      `json:"service_id"`
	ServiceOptionID  *int64     `json:"service_option_id,omitempty"`
	NotaryID         *int64     `json:"notary_id,omitempty"`
	Status           string     `json:"status"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	ScheduledAtLocal string     `json:"scheduled_at_local,omitempty"`
	Timezone         string     `json:"timezone"`
	Location         string     `json:"location,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func storeSubmissionToResponse(s store.Submission) SubmissionResponse {
	resp := SubmissionResponse{
		ID:        s.ID,
		ClientID:  s.ClientID,
		ServiceID: s.ServiceID,
		Status:    s.Status,
		Timezone:  s.Timezone,
		Location:  s.Location,
		Notes:     s.Notes,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.ServiceOptionID.Valid {
		resp.ServiceOptionID = &s.ServiceOptionID.Int64
	}
	if s.NotaryID.Valid {
		resp.NotaryID = &s.NotaryID.Int64
	}
	if s.ScheduledAt.Valid {
		resp.ScheduledAt = &s.ScheduledAt.Time
		resp.ScheduledAtLocal = util.FormatInZone(s.ScheduledAt.Time, s.Timezone)
	}
	return resp
}

// SubmissionRequest is the request body for creating or updating a
// submission. ScheduledAt is RFC3339; it is stored as UTC.
type SubmissionRequest struct {
	ClientID        int64  `json:"client_id"`
	ServiceID       int64  `json:"service_id"`
	ServiceOptionID *int64 `json:"service_option_id"`
	NotaryID        *int64 `json:"notary_id"`
	Status          string `json:"status"`
	ScheduledAt     string `json:"scheduled_at"`
	Timezone        string `json:"timezone"`
	Location        string `json:"location"`
	Notes           string `json:"notes"`
}

func (req *SubmissionRequest) toParams() (store.SubmissionParams, map[string]string) {
	fieldErrors := make(map[string]string)
	if req.ClientID == 0 {
		fieldErrors["client_id"] = "Client is required"
	}
	if req.ServiceID == 0 {
		fieldErrors["service_id"] = "Service is required"
	}
	if req.Status == "" {
		req.Status = model.SubmissionStatusPending
	}
	if !model.IsValidSubmissionStatus(req.Status) {
		fieldErrors["status"] = "Status must be one of: pending, confirmed, completed, cancelled"
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	} else if err := util.ValidateTimezone(req.Timezone); err != nil {
		fieldErrors["timezone"] = "Timezone must be a valid IANA zone name"
	}

	params := store.SubmissionParams{
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		Status:    req.Status,
		Timezone:  req.Timezone,
		Location:  req.Location,
		Notes:     req.Notes,
	}
	if req.ServiceOptionID != nil {
		params.ServiceOptionID = sql.NullInt64{Int64: *req.ServiceOptionID, Valid: true}
	}
	if req.NotaryID != nil {
		params.NotaryID = sql.NullInt64{Int64: *req.NotaryID, Valid: true}
	}
	if req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			fieldErrors["scheduled_at"] = "Invalid date format. Use RFC3339 (e.g., 2026-01-01T10:00:00Z)"
		} else {
			params.ScheduledAt = sql.NullTime{Time: t.UTC(), Valid: true}
		}
	}
	return params, fieldErrors
}

// ListSubmissions handles GET /api/v1/submissions.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := r.URL.Query().Get("status")
	if status != "" && !model.IsValidSubmissionStatus(status) {
		WriteBadRequest(w, "Invalid status filter", nil)
		return
	}
	clientID, _ := ParseURLQueryInt64(r, "client_id")

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	params := store.ListSubmissionsParams{
		Status:   status,
		ClientID: clientID,
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	submissions, err := h.queries.ListSubmissions(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list submissions")
		return
	}
	total, err := h.queries.CountSubmissions(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to count submissions")
		return
	}

	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		responses = append(responses, storeSubmissionToResponse(s))
	}
	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}

// GetSubmission handles GET /api/v1/submissions/{id}.
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	submission, ok := h.requireSubmission(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, storeSubmissionToResponse(submission), nil)
}

// CreateSubmission handles POST /api/v1/submissions.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	params, fieldErrors := req.toParams()
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	id, err := h.queries.CreateSubmission(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to create submission")
		return
	}

	created, err := h.queries.GetSubmission(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload submission")
		return
	}
	WriteCreated(w, storeSubmissionToResponse(created))
}

// UpdateSubmission handles PUT /api/v1/submissions/{id}.
func (h *Handler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	submission, ok := h.requireSubmission(w, r)
	if !ok {
		return
	}

	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	params, fieldErrors := req.toParams()
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if err := h.queries.UpdateSubmission(ctx, submission.ID, params); err != nil {
		WriteInternalError(w, "Failed to update submission")
		return
	}

	updated, err := h.queries.GetSubmission(ctx, submission.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload submission")
		return
	}
	WriteSuccess(w, storeSubmissionToResponse(updated), nil)
}

// UpdateSubmissionStatusRequest is the body for the status transition
// endpoint.
type UpdateSubmissionStatusRequest struct {
	Status string `json:"status"`
}

// UpdateSubmissionStatus handles POST /api/v1/submissions/{id}/status.
func (h *Handler) UpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	submission, ok := h.requireSubmission(w, r)
	if !ok {
		return
	}

	var req UpdateSubmissionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if !model.IsValidSubmissionStatus(req.Status) {
		WriteValidationError(w, map[string]string{"status": "Status must be one of: pending, confirmed, completed, cancelled"})
		return
	}

	if err := h.queries.UpdateSubmissionStatus(ctx, submission.ID, req.Status); err != nil {
		WriteInternalError(w, "Failed to update submission status")
		return
	}

	updated, err := h.queries.GetSubmission(ctx, submission.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload submission")
		return
	}
	WriteSuccess(w, storeSubmissionToResponse(updated), nil)
}

// DeleteSubmission handles DELETE /api/v1/submissions/{id}.
func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	submission, ok := h.requireSubmission(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteSubmission(r.Context(), submission.ID); err != nil {
		WriteInternalError(w, "Failed to delete submission")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireSubmission(w http.ResponseWriter, r *http.Request) (store.Submission, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid submission ID", nil)
		return store.Submission{}, false
	}
	submission, err := h.queries.GetSubmission(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Submission not found")
		} else {
			WriteInternalError(w, "Failed to retrieve submission")
		}
		return store.Submission{}, false
	}
	return submission, true
}
