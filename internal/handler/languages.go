// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/olegiv/notary-go/internal/store"
)

// LanguageResponse represents a language in API responses.
type LanguageResponse struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	NativeName   string    `json:"native_name"`
	IsActive     bool      `json:"is_active"`
	IsDefault    bool      `json:"is_default"`
	DisplayOrder int64     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func storeLanguageToResponse(l store.Language) LanguageResponse {
	return LanguageResponse{
		ID:           l.ID,
		Code:         l.Code,
		Name:         l.Name,
		NativeName:   l.NativeName,
		IsActive:     l.IsActive,
		IsDefault:    l.IsDefault,
		DisplayOrder: l.DisplayOrder,
		CreatedAt:    l.CreatedAt,
	}
}

// LanguageRequest is the request body for creating or updating a language.
type LanguageRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"native_name"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int64  `json:"display_order"`
}

// ListLanguages handles GET /api/v1/languages. Served from the cache.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.languages.List(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list languages")
		return
	}
	responses := make([]LanguageResponse, 0, len(languages))
	for _, l := range languages {
		responses = append(responses, storeLanguageToResponse(l))
	}
	WriteSuccess(w, responses, nil)
}

// CreateLanguage handles POST /api/v1/languages.
func (h *Handler) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.Code == "" {
		fieldErrors["code"] = "Code is required"
	} else if _, err := language.Parse(req.Code); err != nil {
		fieldErrors["code"] = "Code must be a valid BCP 47 language tag"
	}
	if req.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if _, err := h.queries.GetLanguageByCode(ctx, req.Code); err == nil {
		WriteValidationError(w, map[string]string{"code": "Language already exists"})
		return
	}

	id, err := h.queries.CreateLanguage(ctx, store.CreateLanguageParams{
		Code:         req.Code,
		Name:         req.Name,
		NativeName:   req.NativeName,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create language")
		return
	}
	h.languages.Invalidate(ctx)

	created, err := h.queries.GetLanguage(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload language")
		return
	}
	WriteCreated(w, storeLanguageToResponse(created))
}

// UpdateLanguage handles PUT /api/v1/languages/{id}. The code is immutable
// once created since it names storage columns.
func (h *Handler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lang, ok := h.requireLanguage(w, r)
	if !ok {
		return
	}

	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	err := h.queries.UpdateLanguage(ctx, store.UpdateLanguageParams{
		ID:           lang.ID,
		Name:         req.Name,
		NativeName:   req.NativeName,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		WriteInternalError(w, "Failed to update language")
		return
	}
	h.languages.Invalidate(ctx)

	updated, err := h.queries.GetLanguage(ctx, lang.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload language")
		return
	}
	WriteSuccess(w, storeLanguageToResponse(updated), nil)
}

// SetDefaultLanguage handles POST /api/v1/languages/{id}/default.
func (h *Handler) SetDefaultLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lang, ok := h.requireLanguage(w, r)
	if !ok {
		return
	}

	if err := h.queries.SetDefaultLanguage(ctx, lang.ID); err != nil {
		WriteInternalError(w, "Failed to set default language")
		return
	}
	h.languages.Invalidate(ctx)

	updated, err := h.queries.GetLanguage(ctx, lang.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload language")
		return
	}
	WriteSuccess(w, storeLanguageToResponse(updated), nil)
}

// DeleteLanguage handles DELETE /api/v1/languages/{id}. The default language
// cannot be deleted.
func (h *Handler) DeleteLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lang, ok := h.requireLanguage(w, r)
	if !ok {
		return
	}
	if lang.IsDefault {
		WriteConflict(w, "The default language cannot be deleted")
		return
	}

	if err := h.queries.DeleteLanguage(ctx, lang.ID); err != nil {
		WriteInternalError(w, "Failed to delete language")
		return
	}
	h.languages.Invalidate(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireLanguage(w http.ResponseWriter, r *http.Request) (store.Language, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid language ID", nil)
		return store.Language{}, false
	}
	lang, err := h.queries.GetLanguage(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Language not found")
		} else {
			WriteInternalError(w, "Failed to retrieve language")
		}
		return store.Language{}, false
	}
	return lang, true
}
