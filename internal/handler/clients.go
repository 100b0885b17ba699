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

	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/util"
)

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Timezone  string    `json:"timezone"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func storeClientToResponse(c store.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Timezone:  c.Timezone,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ClientRequest is the request body for creating or updating a client.
type ClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Timezone  string `json:"timezone"`
	Notes     string `json:"notes"`
}

func (req *ClientRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	if req.FirstName == "" {
		fieldErrors["first_name"] = "First name is required"
	}
	if req.LastName == "" {
		fieldErrors["last_name"] = "Last name is required"
	}
	if req.Email == "" {
		fieldErrors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fieldErrors["email"] = "Email is not valid"
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	} else if err := util.ValidateTimezone(req.Timezone); err != nil {
		fieldErrors["timezone"] = "Timezone must be a valid IANA zone name"
	}
	return fieldErrors
}

// ListClients handles GET /api/v1/clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	search := r.URL.Query().Get("search")
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	clients, err := h.queries.ListClients(ctx, store.ListClientsParams{
		Search: search,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, "Failed to list clients")
		return
	}
	total, err := h.queries.CountClients(ctx, search)
	if err != nil {
		WriteInternalError(w, "Failed to count clients")
		return
	}

	responses := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		responses = append(responses, storeClientToResponse(c))
	}
	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}

// GetClient handles GET /api/v1/clients/{id}.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, ok := h.requireClient(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, storeClientToResponse(client), nil)
}

// CreateClient handles POST /api/v1/clients.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := req.validate(); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	id, err := h.queries.CreateClient(ctx, store.ClientParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Timezone:  req.Timezone,
		Notes:     req.Notes,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create client")
		return
	}

	created, err := h.queries.GetClient(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload client")
		return
	}
	WriteCreated(w, storeClientToResponse(created))
}

// UpdateClient handles PUT /api/v1/clients/{id}.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, ok := h.requireClient(w, r)
	if !ok {
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := req.validate(); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	err := h.queries.UpdateClient(ctx, client.ID, store.ClientParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Timezone:  req.Timezone,
		Notes:     req.Notes,
	})
	if err != nil {
		WriteInternalError(w, "Failed to update client")
		return
	}

	updated, err := h.queries.GetClient(ctx, client.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload client")
		return
	}
	WriteSuccess(w, storeClientToResponse(updated), nil)
}

// DeleteClient handles DELETE /api/v1/clients/{id}.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	client, ok := h.requireClient(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteClient(r.Context(), client.ID); err != nil {
		WriteInternalError(w, "Failed to delete client")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireClient(w http.ResponseWriter, r *http.Request) (store.Client, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid client ID", nil)
		return store.Client{}, false
	}
	client, err := h.queries.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Client not found")
		} else {
			WriteInternalError(w, "Failed to retrieve client")
		}
		return store.Client{}, false
	}
	return client, true
}
