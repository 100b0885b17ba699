// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/auth"
	"github.com/olegiv/notary-go/internal/middleware"
	"github.com/olegiv/notary-go/internal/store"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func storeUserToResponse(u store.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.LastLoginAt.Valid {
		resp.LastLoginAt = &u.LastLoginAt.Time
	}
	return resp
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{
			"email":    "Email is required",
			"password": "Password is required",
		})
		return
	}

	user, err := h.queries.GetUserByEmail(ctx, req.Email)
	if err != nil || !user.IsActive {
		// Same response for unknown account and wrong password.
		h.logger.Warn("login failed", "source", "auth",
			"email", req.Email, "ip", middleware.ClientIP(r))
		WriteUnauthorized(w, h.msg(r, "login_invalid_credentials", nil))
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.logger.Warn("login failed", "source", "auth",
			"email", req.Email, "ip", middleware.ClientIP(r))
		WriteUnauthorized(w, h.msg(r, "login_invalid_credentials", nil))
		return
	}

	// Upgrade hashes created with older parameters on successful login.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := auth.HashPassword(req.Password); hashErr == nil {
			_ = h.queries.UpdateUserPassword(ctx, user.ID, newHash)
		}
	}

	if err := h.sessions.RenewToken(ctx); err != nil {
		WriteInternalError(w, "Failed to create session")
		return
	}
	h.sessions.Put(ctx, middleware.SessionKeyUserID, user.ID)

	_ = h.queries.TouchUserLogin(ctx, user.ID)
	h.logger.Info("user logged in", "source", "auth", "user_id", user.ID)

	WriteSuccess(w, storeUserToResponse(user), nil)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		WriteInternalError(w, "Failed to destroy session")
		return
	}
	if userID != 0 {
		h.logger.Info("user logged out", "source", "auth", "user_id", userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, storeUserToResponse(*user), nil)
}
