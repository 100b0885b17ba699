// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
)

// EventResponse represents a logged event in API responses.
type EventResponse struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListEvents handles GET /api/v1/events. Admin only.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	level := r.URL.Query().Get("level")
	switch level {
	case "", model.EventLevelInfo, model.EventLevelWarning, model.EventLevelError:
	default:
		WriteBadRequest(w, "Invalid level filter", nil)
		return
	}

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 50, 200)

	events, err := h.queries.ListEvents(ctx, store.ListEventsParams{
		Level:  level,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list events")
		return
	}
	total, err := h.queries.CountEvents(ctx, level)
	if err != nil {
		WriteInternalError(w, "Failed to count events")
		return
	}

	responses := make([]EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, EventResponse{
			ID:        e.ID,
			Level:     e.Level,
			Message:   e.Message,
			Source:    e.Source,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}
