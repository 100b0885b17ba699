// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the REST API handlers for the admin back office.
package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/notary-go/internal/cache"
	"github.com/olegiv/notary-go/internal/geoip"
	"github.com/olegiv/notary-go/internal/i18n"
	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/service"
	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/translate"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	sessions   *scs.SessionManager
	translator *i18n.Translator
	languages  *cache.Languages
	media      *service.MediaService
	reg        *locale.Registry
	translate  translate.Service
	geo        *geoip.Lookup
	baseURL    string
	siteName   string
	logger     *slog.Logger

	// translating tracks posts with a translation batch in flight so a
	// second request for the same post gets a conflict instead of a
	// concurrent batch.
	translating sync.Map
}

// Deps bundles the collaborators a Handler needs.
type Deps struct {
	DB         *sql.DB
	Sessions   *scs.SessionManager
	Translator *i18n.Translator
	Languages  *cache.Languages
	Media      *service.MediaService
	Registry   *locale.Registry
	Translate  translate.Service
	GeoIP      *geoip.Lookup
	BaseURL    string
	SiteName   string
	Logger     *slog.Logger
}

// NewHandler creates an API handler.
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:         deps.DB,
		queries:    store.New(deps.DB),
		sessions:   deps.Sessions,
		translator: deps.Translator,
		languages:  deps.Languages,
		media:      deps.Media,
		reg:        deps.Registry,
		translate:  deps.Translate,
		geo:        deps.GeoIP,
		baseURL:    deps.BaseURL,
		siteName:   deps.SiteName,
		logger:     logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// NewMeta builds pagination metadata from a total row count.
func NewMeta(total int64, page, perPage int) *Meta {
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return &Meta{Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field
// errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// ParseIDParam parses the {id} URL parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ParseURLParamInt64 parses a named URL parameter as int64.
func ParseURLParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// ParseURLQueryInt64 parses a named query parameter as int64, zero when
// absent or malformed.
func ParseURLQueryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ParsePageParam parses the "page" query parameter, defaulting to 1.
func ParsePageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPageParam parses the "per_page" query parameter, clamped to max.
func ParsePerPageParam(r *http.Request, def, max int) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 {
		return def
	}
	if perPage > max {
		return max
	}
	return perPage
}

// requestLocale resolves the response locale for localized messages: the
// "locale" query parameter when supported, otherwise the base locale.
func (h *Handler) requestLocale(r *http.Request) string {
	code := r.URL.Query().Get("locale")
	if code != "" && h.reg.Contains(code) {
		return code
	}
	return h.reg.Base()
}

// msg returns a localized UI message for the request's locale.
func (h *Handler) msg(r *http.Request, key string, data map[string]any) string {
	return h.translator.T(h.requestLocale(r), key, data)
}
