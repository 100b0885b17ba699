// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/store"
)

// NotaryResponse represents a notary in API responses.
type NotaryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Photo        string    `json:"photo,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Languages    []string  `json:"languages"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int64     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func storeNotaryToResponse(n store.Notary) NotaryResponse {
	return NotaryResponse{
		ID:           n.ID,
		Name:         n.Name,
		Title:        n.Title,
		Email:        n.Email,
		Phone:        n.Phone,
		Photo:        n.Photo,
		Bio:          n.Bio,
		Languages:    n.Languages,
		IsActive:     n.IsActive,
		DisplayOrder: n.DisplayOrder,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

// NotaryRequest is the request body for creating or updating a notary.
type NotaryRequest struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Photo        string   `json:"photo"`
	Bio          string   `json:"bio"`
	Languages    []string `json:"languages"`
	IsActive     bool     `json:"is_active"`
	DisplayOrder int64    `json:"display_order"`
}

func (req NotaryRequest) toParams() store.NotaryParams {
	languages := req.Languages
	if languages == nil {
		languages = []string{}
	}
	return store.NotaryParams{
		Name:         req.Name,
		Title:        req.Title,
		Email:        req.Email,
		Phone:        req.Phone,
		Photo:        req.Photo,
		Bio:          req.Bio,
		Languages:    languages,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	}
}

// ListNotaries handles GET /api/v1/notaries.
func (h *Handler) ListNotaries(w http.ResponseWriter, r *http.Request) {
	notaries, err := h.queries.ListNotaries(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list notaries")
		return
	}
	responses := make([]NotaryResponse, 0, len(notaries))
	for _, n := range notaries {
		responses = append(responses, storeNotaryToResponse(n))
	}
	WriteSuccess(w, responses, nil)
}

// GetNotary handles GET /api/v1/notaries/{id}.
func (h *Handler) GetNotary(w http.ResponseWriter, r *http.Request) {
	notary, ok := h.requireNotary(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, storeNotaryToResponse(notary), nil)
}

// CreateNotary handles POST /api/v1/notaries.
func (h *Handler) CreateNotary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req NotaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	id, err := h.queries.CreateNotary(ctx, req.toParams())
	if err != nil {
		WriteInternalError(w, "Failed to create notary")
		return
	}

	created, err := h.queries.GetNotary(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload notary")
		return
	}
	WriteCreated(w, storeNotaryToResponse(created))
}

// UpdateNotary handles PUT /api/v1/notaries/{id}.
func (h *Handler) UpdateNotary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notary, ok := h.requireNotary(w, r)
	if !ok {
		return
	}

	var req NotaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	if err := h.queries.UpdateNotary(ctx, notary.ID, req.toParams()); err != nil {
		WriteInternalError(w, "Failed to update notary")
		return
	}

	updated, err := h.queries.GetNotary(ctx, notary.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload notary")
		return
	}
	WriteSuccess(w, storeNotaryToResponse(updated), nil)
}

// DeleteNotary handles DELETE /api/v1/notaries/{id}.
func (h *Handler) DeleteNotary(w http.ResponseWriter, r *http.Request) {
	notary, ok := h.requireNotary(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteNotary(r.Context(), notary.ID); err != nil {
		WriteInternalError(w, "Failed to delete notary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireNotary(w http.ResponseWriter, r *http.Request) (store.Notary, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid notary ID", nil)
		return store.Notary{}, false
	}
	notary, err := h.queries.GetNotary(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Notary not found")
		} else {
			WriteInternalError(w, "Failed to retrieve notary")
		}
		return store.Notary{}, false
	}
	return notary, true
}
