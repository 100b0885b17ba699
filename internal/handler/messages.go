// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/notary-go/internal/middleware"
	"github.com/olegiv/notary-go/internal/store"
)

// MessageResponse represents an inbox message in API responses.
type MessageResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	IP         string    `json:"ip,omitempty"`
	Country    string    `json:"country,omitempty"`
	Browser    string    `json:"browser,omitempty"`
	OS         string    `json:"os,omitempty"`
	Device     string    `json:"device,omitempty"`
	IsRead     bool      `json:"is_read"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
}

func storeMessageToResponse(m store.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Subject:    m.Subject,
		Body:       m.Body,
		IP:         m.IP,
		Country:    m.Country,
		Browser:    m.Browser,
		OS:         m.OS,
		Device:     m.Device,
		IsRead:     m.IsRead,
		IsArchived: m.IsArchived,
		CreatedAt:  m.CreatedAt,
	}
}

// ListMessages handles GET /api/v1/messages. Filters: ?archived=1, ?unread=1.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	params := store.ListMessagesParams{
		Archived: r.URL.Query().Get("archived") == "1",
		Unread:   r.URL.Query().Get("unread") == "1",
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	messages, err := h.queries.ListMessages(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list messages")
		return
	}
	total, err := h.queries.CountMessages(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to count messages")
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, storeMessageToResponse(m))
	}
	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}

// GetMessage handles GET /api/v1/messages/{id} and marks the message read.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	message, ok := h.requireMessage(w, r)
	if !ok {
		return
	}
	if !message.IsRead {
		if err := h.queries.MarkMessageRead(ctx, message.ID, true); err == nil {
			message.IsRead = true
		}
	}
	WriteSuccess(w, storeMessageToResponse(message), nil)
}

// MarkMessageRead handles POST /api/v1/messages/{id}/read.
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	h.toggleMessage(w, r, func(id int64, v bool) error {
		return h.queries.MarkMessageRead(r.Context(), id, v)
	})
}

// ArchiveMessage handles POST /api/v1/messages/{id}/archive.
func (h *Handler) ArchiveMessage(w http.ResponseWriter, r *http.Request) {
	h.toggleMessage(w, r, func(id int64, v bool) error {
		return h.queries.ArchiveMessage(r.Context(), id, v)
	})
}

// toggleMessage applies a boolean flag from the {"value": bool} body,
// defaulting to true on an empty body.
func (h *Handler) toggleMessage(w http.ResponseWriter, r *http.Request, apply func(int64, bool) error) {
	message, ok := h.requireMessage(w, r)
	if !ok {
		return
	}

	req := struct {
		Value *bool `json:"value"`
	}{}
	_ = json.NewDecoder(r.Body).Decode(&req)
	value := true
	if req.Value != nil {
		value = *req.Value
	}

	if err := apply(message.ID, value); err != nil {
		WriteInternalError(w, "Failed to update message")
		return
	}

	updated, err := h.queries.GetMessage(r.Context(), message.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload message")
		return
	}
	WriteSuccess(w, storeMessageToResponse(updated), nil)
}

// DeleteMessage handles DELETE /api/v1/messages/{id}.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	message, ok := h.requireMessage(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteMessage(r.Context(), message.ID); err != nil {
		WriteInternalError(w, "Failed to delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IntakeMessageRequest is the body of the public contact form endpoint.
type IntakeMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// IntakeMessage handles POST /api/public/messages, the contact form on the
// marketing site. The client address, country and user agent details are
// captured for the inbox.
func (h *Handler) IntakeMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IntakeMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if req.Email == "" {
		fieldErrors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fieldErrors["email"] = "Email is not valid"
	}
	if req.Body == "" {
		fieldErrors["body"] = "Message is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	ip := middleware.ClientIP(r)
	country := ""
	if h.geo != nil {
		country = h.geo.Country(ip)
	}

	ua := useragent.Parse(r.UserAgent())
	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	}

	id, err := h.queries.CreateMessage(ctx, store.CreateMessageParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Body:    req.Body,
		IP:      ip,
		Country: country,
		Browser: ua.Name,
		OS:      ua.OS,
		Device:  device,
	})
	if err != nil {
		WriteInternalError(w, "Failed to record message")
		return
	}
	h.logger.Info("contact message received", "source", "system",
		"message_id", id, "country", country)

	WriteCreated(w, map[string]any{
		"id":      id,
		"message": h.msg(r, "message_received", nil),
	})
}

func (h *Handler) requireMessage(w http.ResponseWriter, r *http.Request) (store.Message, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid message ID", nil)
		return store.Message{}, false
	}
	message, err := h.queries.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Message not found")
		} else {
			WriteInternalError(w, "Failed to retrieve message")
		}
		return store.Message{}, false
	}
	return message, true
}
