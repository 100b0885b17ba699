// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/content"
	"github.com/olegiv/notary-go/internal/form"
	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/translate"
)

// PostSummaryResponse represents a post in list responses.
type PostSummaryResponse struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Status      string     `json:"status"`
	CoverImage  string     `json:"cover_image,omitempty"`
	AuthorName  string     `json:"author_name,omitempty"`
	IsFeatured  bool       `json:"is_featured"`
	ViewsCount  int64      `json:"views_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func postSummaryToResponse(p store.PostSummary) PostSummaryResponse {
	resp := PostSummaryResponse{
		ID:         p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Status:     p.Status,
		CoverImage: p.CoverImage,
		AuthorName: p.AuthorName,
		IsFeatured: p.IsFeatured,
		ViewsCount: p.ViewsCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	if p.ScheduledAt.Valid {
		resp.ScheduledAt = &p.ScheduledAt.Time
	}
	return resp
}

// ListPosts handles GET /api/v1/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := r.URL.Query().Get("status")
	if status != "" && !model.IsValidPostStatus(status) {
		WriteBadRequest(w, "Invalid status filter", nil)
		return
	}

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	params := store.ListPostsParams{
		Status: status,
		Search: r.URL.Query().Get("search"),
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	}

	posts, err := h.queries.ListPosts(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list posts")
		return
	}
	total, err := h.queries.CountPosts(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to count posts")
		return
	}

	responses := make([]PostSummaryResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, postSummaryToResponse(p))
	}

	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}

// GetPost handles GET /api/v1/posts/{id}. The response is the per-locale
// document shape with one content bundle per supported locale. With
// ?render=true the content fields are returned as display HTML instead of
// the stored source, so the SPA can preview markdown posts.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.requirePostDocument(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("render") == "true" {
		for _, bundle := range doc.Bundles {
			rendered, err := content.RenderBody(bundle.Content, doc.Common.ContentFormat)
			if err != nil {
				WriteInternalError(w, "Failed to render post content")
				return
			}
			bundle.Content = rendered
		}
	}
	WriteSuccess(w, doc, nil)
}

// sanitizeDocument strips unsafe markup from rich-text bundles before
// storage. Markdown sources are stored verbatim and sanitized at render.
func sanitizeDocument(doc *locale.Document) {
	if doc.Common.ContentFormat != model.ContentFormatHTML {
		return
	}
	for _, bundle := range doc.Bundles {
		if bundle.Content != "" {
			bundle.Content = content.Sanitize(bundle.Content)
		}
	}
}

// CreatePost handles POST /api/v1/posts. The request body is the same
// document shape GetPost returns.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var doc locale.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if doc.Common.Status == "" {
		doc.Common.Status = model.PostStatusDraft
	}
	if doc.Common.ContentFormat == "" {
		doc.Common.ContentFormat = model.ContentFormatHTML
	}
	if fieldErrors := h.validatePostDocument(&doc); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}
	sanitizeDocument(&doc)

	row, err := locale.Flatten(&doc, h.reg, h.baseURL)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	slug, _ := row[locale.ColSlug].(string)
	if slug == "" {
		WriteValidationError(w, map[string]string{"slug": "Slug or base title is required"})
		return
	}
	if taken := h.slugTaken(w, r, slug, 0); taken {
		return
	}

	id, err := h.queries.CreatePost(ctx, row)
	if err != nil {
		WriteInternalError(w, "Failed to create post")
		return
	}
	h.logger.Info("post created", "source", "post", "post_id", id, "slug", slug)

	created, err := h.queries.GetPostRow(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload post")
		return
	}
	WriteCreated(w, locale.Expand(created, h.reg))
}

// UpdatePost handles PUT /api/v1/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	if _, err := h.queries.GetPostSummary(ctx, id); err != nil {
		writePostLookupError(w, err)
		return
	}

	var doc locale.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if fieldErrors := h.validatePostDocument(&doc); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}
	sanitizeDocument(&doc)

	row, err := locale.Flatten(&doc, h.reg, h.baseURL)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	if slug, _ := row[locale.ColSlug].(string); slug != "" {
		if taken := h.slugTaken(w, r, slug, id); taken {
			return
		}
	}

	if err := h.queries.UpdatePostColumns(ctx, id, row); err != nil {
		writePostLookupError(w, err)
		return
	}

	updated, err := h.queries.GetPostRow(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload post")
		return
	}
	WriteSuccess(w, locale.Expand(updated, h.reg), nil)
}

// DeletePost handles DELETE /api/v1/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	if err := h.queries.DeletePost(r.Context(), id); err != nil {
		writePostLookupError(w, err)
		return
	}
	h.logger.Info("post deleted", "source", "post", "post_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// PublishPost handles POST /api/v1/posts/{id}/publish: immediate publication,
// clearing any pending schedule.
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}
	if err := h.queries.PublishPost(ctx, id, time.Now().UTC()); err != nil {
		writePostLookupError(w, err)
		return
	}
	h.logger.Info("post published", "source", "post", "post_id", id)

	summary, err := h.queries.GetPostSummary(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload post")
		return
	}
	WriteSuccess(w, postSummaryToResponse(summary), nil)
}

// TranslateRequest is the request body for POST /api/v1/posts/{id}/translate.
// Empty target locales default to every supported locale except the source;
// empty fields default to every localized field.
type TranslateRequest struct {
	SourceLocale  string   `json:"source_locale"`
	TargetLocales []string `json:"target_locales"`
	Fields        []string `json:"fields"`
}

// TranslatePost handles POST /api/v1/posts/{id}/translate. Runs the batch
// synchronously; only one batch per post may be in flight.
func (h *Handler) TranslatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.translate == nil {
		WriteError(w, http.StatusServiceUnavailable, "translation_not_configured",
			h.msg(r, "translation_not_configured", nil), nil)
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.SourceLocale == "" {
		req.SourceLocale = h.reg.Base()
	}
	if len(req.TargetLocales) == 0 {
		for _, code := range h.reg.Codes() {
			if code != req.SourceLocale {
				req.TargetLocales = append(req.TargetLocales, code)
			}
		}
	}
	if len(req.Fields) == 0 {
		req.Fields = append([]string{}, locale.LocalizedFields...)
	}

	if _, running := h.translating.LoadOrStore(id, struct{}{}); running {
		WriteConflict(w, h.msg(r, "post_translation_running", nil))
		return
	}
	defer h.translating.Delete(id)

	row, err := h.queries.GetPostRow(ctx, id)
	if err != nil {
		writePostLookupError(w, err)
		return
	}
	doc := locale.Expand(row, h.reg)

	fs := form.New(h.reg)
	fs.Load(doc)

	orchestrator := translate.NewOrchestrator(h.translate, h.queries, h.reg, h.logger)
	result, err := orchestrator.Run(ctx, translate.Job{
		PostID:        id,
		SourceLocale:  req.SourceLocale,
		TargetLocales: req.TargetLocales,
		Fields:        req.Fields,
		Source:        doc.Bundles[req.SourceLocale],
	}, fs, nil)
	if err != nil {
		if errors.Is(err, translate.ErrInvalidJob) {
			WriteBadRequest(w, err.Error(), nil)
		} else {
			WriteInternalError(w, "Translation batch failed")
		}
		return
	}

	h.logger.Info("translation batch finished", "source", "translation",
		"post_id", id, "succeeded", result.Stats.Succeeded, "failed", result.Stats.Failed)
	WriteSuccess(w, result, nil)
}

// validatePostDocument checks status, content format and locale codes.
func (h *Handler) validatePostDocument(doc *locale.Document) map[string]string {
	fieldErrors := make(map[string]string)
	if doc.Common.Status != "" && !model.IsValidPostStatus(doc.Common.Status) {
		fieldErrors["status"] = "Status must be one of: draft, scheduled, published, archived"
	}
	if doc.Common.ContentFormat != "" &&
		doc.Common.ContentFormat != model.ContentFormatHTML &&
		doc.Common.ContentFormat != model.ContentFormatMarkdown {
		fieldErrors["content_format"] = "Content format must be 'html' or 'markdown'"
	}
	for code := range doc.Bundles {
		if !h.reg.Contains(code) {
			fieldErrors["content"] = "Unsupported locale: " + code
			break
		}
	}
	return fieldErrors
}

// slugTaken checks slug uniqueness, writing the error response on conflict.
func (h *Handler) slugTaken(w http.ResponseWriter, r *http.Request, slug string, excludeID int64) bool {
	exists, err := h.queries.PostSlugExists(r.Context(), slug, excludeID)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return true
	}
	if exists {
		WriteValidationError(w, map[string]string{"slug": h.msg(r, "post_slug_taken", nil)})
		return true
	}
	return false
}

// requirePostDocument parses the post ID and loads the expanded document.
func (h *Handler) requirePostDocument(w http.ResponseWriter, r *http.Request) (*locale.Document, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return nil, false
	}
	row, err := h.queries.GetPostRow(r.Context(), id)
	if err != nil {
		writePostLookupError(w, err)
		return nil, false
	}
	return locale.Expand(row, h.reg), true
}

func writePostLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Post not found")
	} else {
		WriteInternalError(w, "Failed to retrieve post")
	}
}
