// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/transfer"
)

// Export handles POST /api/v1/admin/export. The body may carry
// transfer.ExportOptions; an empty body exports everything except messages.
// The response is a JSON download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	opts := transfer.DefaultExportOptions()
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if opts.PostStatus == "" {
		opts.PostStatus = "all"
	}

	exporter := transfer.NewExporter(h.queries, h.reg, h.logger)
	exporter.SetSite(h.siteName, h.baseURL)

	filename := fmt.Sprintf("notary-export-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.ExportToWriter(r.Context(), opts, w); err != nil {
		h.logger.Error("export failed", "source", "transfer", "error", err)
		WriteInternalError(w, "Export failed")
	}
}

// ImportRequest is the POST /api/v1/admin/import body: the export envelope
// plus optional import options. Absent options import every entity except
// messages, skipping rows that already exist.
type ImportRequest struct {
	Options *transfer.ImportOptions `json:"options"`
	Data    transfer.ExportData     `json:"data"`
}

func defaultImportOptions() transfer.ImportOptions {
	return transfer.ImportOptions{
		ImportLanguages:   true,
		ImportUsers:       true,
		ImportPosts:       true,
		ImportNotaries:    true,
		ImportServices:    true,
		ImportClients:     true,
		ImportSubmissions: true,
		ImportPayments:    true,
		SkipExisting:      true,
	}
}

// Import handles POST /api/v1/admin/import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	opts := defaultImportOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	importer := transfer.NewImporter(h.queries, h.db, h.reg, h.baseURL, h.logger)
	result, err := importer.Import(r.Context(), &req.Data, opts)
	if err != nil {
		if errors.Is(err, transfer.ErrValidation) {
			details := make(map[string]string, len(result.Errors))
			for _, e := range result.Errors {
				details[e.Entity+"/"+e.Key] = e.Message
			}
			WriteValidationError(w, details)
			return
		}
		h.logger.Error("import failed", "source", "transfer", "error", err)
		WriteInternalError(w, "Import failed")
		return
	}

	h.logger.Info("import completed", "source", "transfer",
		"imported", result.TotalImported(), "dry_run", result.DryRun, "errors", len(result.Errors))
	WriteSuccess(w, result, nil)
}

// ImportLegacyRequest is the POST /api/v1/admin/import/legacy body.
type ImportLegacyRequest struct {
	DSN string `json:"dsn"`
}

// ImportLegacy handles POST /api/v1/admin/import/legacy: a one-shot pull of
// posts and clients from the previous hosted database. The driver is picked
// from the DSN scheme, Postgres or MySQL.
func (h *Handler) ImportLegacy(w http.ResponseWriter, r *http.Request) {
	var req ImportLegacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.DSN == "" {
		WriteValidationError(w, map[string]string{"dsn": "DSN is required"})
		return
	}

	src, err := transfer.OpenLegacy(req.DSN)
	if err != nil {
		WriteBadRequest(w, "Failed to connect to legacy database", nil)
		return
	}
	defer func() { _ = src.Close() }()

	importer := transfer.NewLegacyImporter(src, h.queries, h.reg, h.baseURL, h.logger)
	result, err := importer.Run(r.Context())
	if err != nil {
		h.logger.Error("legacy import failed", "source", "transfer", "driver", src.Driver(), "error", err)
		WriteInternalError(w, "Legacy import failed")
		return
	}

	h.logger.Info("legacy import completed", "source", "transfer",
		"driver", src.Driver(), "imported", result.TotalImported(), "errors", len(result.Errors))
	WriteSuccess(w, result, nil)
}
