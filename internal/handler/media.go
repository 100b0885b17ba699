// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/notary-go/internal/middleware"
	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/service"
	"github.com/olegiv/notary-go/internal/store"
)

// MediaResponse represents an uploaded image in API responses.
type MediaResponse struct {
	ID           int64             `json:"id"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"original_name"`
	MimeType     string            `json:"mime_type"`
	Size         int64             `json:"size"`
	Width        int64             `json:"width"`
	Height       int64             `json:"height"`
	AltText      string            `json:"alt_text,omitempty"`
	UploadedBy   int64             `json:"uploaded_by"`
	URL          string            `json:"url"`
	Variants     map[string]string `json:"variants"`
	CreatedAt    time.Time         `json:"created_at"`
}

func storeMediaToResponse(m store.Media) MediaResponse {
	variants := make(map[string]string, len(model.ImageVariants))
	for variant := range model.ImageVariants {
		variants[variant] = service.VariantURL(m, variant)
	}
	return MediaResponse{
		ID:           m.ID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		Width:        m.Width,
		Height:       m.Height,
		AltText:      m.AltText,
		UploadedBy:   m.UploadedBy,
		URL:          service.PublicURL(m),
		Variants:     variants,
		CreatedAt:    m.CreatedAt,
	}
}

// ListMedia handles GET /api/v1/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 24, 100)

	media, err := h.queries.ListMedia(ctx, int64(perPage), int64((page-1)*perPage))
	if err != nil {
		WriteInternalError(w, "Failed to list media")
		return
	}
	total, err := h.queries.CountMedia(ctx)
	if err != nil {
		WriteInternalError(w, "Failed to count media")
		return
	}

	responses := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		responses = append(responses, storeMediaToResponse(m))
	}
	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}

// GetMedia handles GET /api/v1/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	media, ok := h.requireMedia(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, storeMediaToResponse(media), nil)
}

// UploadMedia handles POST /api/v1/media as a multipart form with a "file"
// part.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		WriteBadRequest(w, h.msg(r, "media_too_large", map[string]any{
			"Limit": strconv.Itoa(service.MaxUploadSize / (1024 * 1024)),
		}), nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file upload", nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.media.Upload(ctx, file, header, middleware.GetUserID(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			WriteValidationError(w, map[string]string{
				"file": h.msg(r, "media_too_large", map[string]any{
					"Limit": strconv.Itoa(service.MaxUploadSize / (1024 * 1024)),
				}),
			})
		case errors.Is(err, service.ErrUnsupportedType):
			WriteValidationError(w, map[string]string{
				"file": h.msg(r, "media_unsupported_type", nil),
			})
		case errors.Is(err, service.ErrEmptyUpload):
			WriteValidationError(w, map[string]string{"file": "Upload is empty"})
		default:
			h.logger.Error("media upload failed", "source", "media", "error", err)
			WriteInternalError(w, "Failed to process upload")
		}
		return
	}

	h.logger.Info("media uploaded", "source", "media",
		"media_id", result.Media.ID, "filename", result.Media.Filename)
	WriteCreated(w, storeMediaToResponse(result.Media))
}

// UpdateMediaAltTextRequest is the body for the alt-text endpoint.
type UpdateMediaAltTextRequest struct {
	AltText string `json:"alt_text"`
}

// UpdateMediaAltText handles PUT /api/v1/media/{id}/alt.
func (h *Handler) UpdateMediaAltText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	media, ok := h.requireMedia(w, r)
	if !ok {
		return
	}

	var req UpdateMediaAltTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if err := h.queries.UpdateMediaAltText(ctx, media.ID, req.AltText); err != nil {
		WriteInternalError(w, "Failed to update media")
		return
	}

	updated, err := h.queries.GetMedia(ctx, media.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload media")
		return
	}
	WriteSuccess(w, storeMediaToResponse(updated), nil)
}

// DeleteMedia handles DELETE /api/v1/media/{id}, removing the record and the
// stored files.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	media, ok := h.requireMedia(w, r)
	if !ok {
		return
	}
	if err := h.media.Delete(r.Context(), media.ID); err != nil {
		WriteInternalError(w, "Failed to delete media")
		return
	}
	h.logger.Info("media deleted", "source", "media", "media_id", media.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireMedia(w http.ResponseWriter, r *http.Request) (store.Media, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return store.Media{}, false
	}
	media, err := h.queries.GetMedia(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Media not found")
		} else {
			WriteInternalError(w, "Failed to retrieve media")
		}
		return store.Media{}, false
	}
	return media, true
}
