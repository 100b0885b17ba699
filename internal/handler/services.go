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
	"github.com/olegiv/notary-go/internal/util"
)

// ServiceResponse represents a notary service in API responses.
type ServiceResponse struct {
	ID              int64                   `json:"id"`
	Slug            string                  `json:"slug"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description,omitempty"`
	Icon            string                  `json:"icon,omitempty"`
	BasePriceCents  int64                   `json:"base_price_cents"`
	DurationMinutes int64                   `json:"duration_minutes"`
	IsActive        bool                    `json:"is_active"`
	DisplayOrder    int64                   `json:"display_order"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Options         []ServiceOptionResponse `json:"options,omitempty"`
}

// ServiceOptionResponse represents a service option in API responses.
type ServiceOptionResponse struct {
	ID           int64     `json:"id"`
	ServiceID    int64     `json:"service_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	IsDefault    bool      `json:"is_default"`
	DisplayOrder int64     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func storeServiceToResponse(s store.Service) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		Slug:            s.Slug,
		Name:            s.Name,
		Description:     s.Description,
		Icon:            s.Icon,
		BasePriceCents:  s.BasePriceCents,
		DurationMinutes: s.DurationMinutes,
		IsActive:        s.IsActive,
		DisplayOrder:    s.DisplayOrder,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func storeServiceOptionToResponse(o store.ServiceOption) ServiceOptionResponse {
	return ServiceOptionResponse{
		ID:           o.ID,
		ServiceID:    o.ServiceID,
		Name:         o.Name,
		Description:  o.Description,
		PriceCents:   o.PriceCents,
		IsDefault:    o.IsDefault,
		DisplayOrder: o.DisplayOrder,
		CreatedAt:    o.CreatedAt,
	}
}

// ServiceRequest is the request body for creating or updating a service.
type ServiceRequest struct {
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Icon            string `json:"icon"`
	BasePriceCents  int64  `json:"base_price_cents"`
	DurationMinutes int64  `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
	DisplayOrder    int64  `json:"display_order"`
}

// ServiceOptionRequest is the request body for creating or updating an option.
type ServiceOptionRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	IsDefault    bool   `json:"is_default"`
	DisplayOrder int64  `json:"display_order"`
}

// ListServices handles GET /api/v1/services. Options are attached when
// ?include=options is given.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services, err := h.queries.ListServices(ctx)
	if err != nil {
		WriteInternalError(w, "Failed to list services")
		return
	}
	includeOptions := r.URL.Query().Get("include") == "options"

	responses := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		resp := storeServiceToResponse(s)
		if includeOptions {
			options, optErr := h.queries.ListServiceOptions(ctx, s.ID)
			if optErr == nil {
				resp.Options = make([]ServiceOptionResponse, 0, len(options))
				for _, o := range options {
					resp.Options = append(resp.Options, storeServiceOptionToResponse(o))
				}
			}
		}
		responses = append(responses, resp)
	}
	WriteSuccess(w, responses, nil)
}

// GetService handles GET /api/v1/services/{id}, always including options.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, ok := h.requireService(w, r)
	if !ok {
		return
	}

	resp := storeServiceToResponse(svc)
	options, err := h.queries.ListServiceOptions(ctx, svc.ID)
	if err == nil {
		resp.Options = make([]ServiceOptionResponse, 0, len(options))
		for _, o := range options {
			resp.Options = append(resp.Options, storeServiceOptionToResponse(o))
		}
	}
	WriteSuccess(w, resp, nil)
}

// CreateService handles POST /api/v1/services.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}

	id, err := h.queries.CreateService(ctx, store.ServiceParams{
		Slug:            req.Slug,
		Name:            req.Name,
		Description:     req.Description,
		Icon:            req.Icon,
		BasePriceCents:  req.BasePriceCents,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create service")
		return
	}

	created, err := h.queries.GetService(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload service")
		return
	}
	WriteCreated(w, storeServiceToResponse(created))
}

// UpdateService handles PUT /api/v1/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, ok := h.requireService(w, r)
	if !ok {
		return
	}

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}
	if req.Slug == "" {
		req.Slug = svc.Slug
	}

	err := h.queries.UpdateService(ctx, svc.ID, store.ServiceParams{
		Slug:            req.Slug,
		Name:            req.Name,
		Description:     req.Description,
		Icon:            req.Icon,
		BasePriceCents:  req.BasePriceCents,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		WriteInternalError(w, "Failed to update service")
		return
	}

	updated, err := h.queries.GetService(ctx, svc.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload service")
		return
	}
	WriteSuccess(w, storeServiceToResponse(updated), nil)
}

// DeleteService handles DELETE /api/v1/services/{id}. Options are removed by
// the foreign key cascade.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.requireService(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteService(r.Context(), svc.ID); err != nil {
		WriteInternalError(w, "Failed to delete service")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateServiceOption handles POST /api/v1/services/{id}/options.
func (h *Handler) CreateServiceOption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, ok := h.requireService(w, r)
	if !ok {
		return
	}

	var req ServiceOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	id, err := h.queries.CreateServiceOption(ctx, store.ServiceOptionParams{
		ServiceID:    svc.ID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		IsDefault:    req.IsDefault,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create service option")
		return
	}

	created, err := h.queries.GetServiceOption(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload service option")
		return
	}
	WriteCreated(w, storeServiceOptionToResponse(created))
}

// UpdateServiceOption handles PUT /api/v1/services/{id}/options/{optionID}.
func (h *Handler) UpdateServiceOption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	svc, ok := h.requireService(w, r)
	if !ok {
		return
	}
	option, ok := h.requireServiceOption(w, r, svc.ID)
	if !ok {
		return
	}

	var req ServiceOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "Name is required"})
		return
	}

	err := h.queries.UpdateServiceOption(ctx, option.ID, store.ServiceOptionParams{
		ServiceID:    svc.ID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		IsDefault:    req.IsDefault,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		WriteInternalError(w, "Failed to update service option")
		return
	}

	updated, err := h.queries.GetServiceOption(ctx, option.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload service option")
		return
	}
	WriteSuccess(w, storeServiceOptionToResponse(updated), nil)
}

// DeleteServiceOption handles DELETE /api/v1/services/{id}/options/{optionID}.
func (h *Handler) DeleteServiceOption(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.requireService(w, r)
	if !ok {
		return
	}
	option, ok := h.requireServiceOption(w, r, svc.ID)
	if !ok {
		return
	}
	if err := h.queries.DeleteServiceOption(r.Context(), option.ID); err != nil {
		WriteInternalError(w, "Failed to delete service option")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireService(w http.ResponseWriter, r *http.Request) (store.Service, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid service ID", nil)
		return store.Service{}, false
	}
	svc, err := h.queries.GetService(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Service not found")
		} else {
			WriteInternalError(w, "Failed to retrieve service")
		}
		return store.Service{}, false
	}
	return svc, true
}

func (h *Handler) requireServiceOption(w http.ResponseWriter, r *http.Request, serviceID int64) (store.ServiceOption, bool) {
	id, err := ParseURLParamInt64(r, "optionID")
	if err != nil {
		WriteBadRequest(w, "Invalid option ID", nil)
		return store.ServiceOption{}, false
	}
	option, err := h.queries.GetServiceOption(r.Context(), id)
	if err != nil || option.ServiceID != serviceID {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Service option not found")
		} else {
			WriteInternalError(w, "Failed to retrieve service option")
		}
		return store.ServiceOption{}, false
	}
	return option, true
}
