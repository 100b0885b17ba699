// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/olegiv/notary-go/internal/auth"
	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
)

// ListUsers handles GET /api/v1/users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, storeUserToResponse(u))
	}
	WriteSuccess(w, responses, nil)
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser handles POST /api/v1/users. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.Email == "" {
		fieldErrors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fieldErrors["email"] = "Email is not valid"
	}
	if req.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if len(req.Password) < 12 {
		fieldErrors["password"] = "Password must be at least 12 characters"
	}
	if req.Role == "" {
		req.Role = model.RoleEditor
	}
	if !model.IsValidRole(req.Role) {
		fieldErrors["role"] = "Role must be 'admin' or 'editor'"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
		WriteValidationError(w, map[string]string{"email": "Email already in use"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "Failed to hash password")
		return
	}

	id, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	}
	h.logger.Info("user created", "source", "auth", "user_id", id, "role", req.Role)

	created, err := h.queries.GetUser(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload user")
		return
	}
	WriteCreated(w, storeUserToResponse(created))
}
