// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate drives machine translation of post content: one external
// service call per target locale, merged incrementally into the form store
// and persisted per locale.
package translate

import (
	"context"

	"github.com/olegiv/notary-go/internal/locale"
)

// Request asks the translation service for one target locale. Fields holds
// the scalar source texts keyed by field name; FAQ is translated as a
// structured list with pairing and order preserved.
type Request struct {
	SourceLocale string            `json:"source_locale"`
	TargetLocale string            `json:"target_locale"`
	Fields       map[string]string `json:"fields"`
	FAQ          []locale.FAQEntry `json:"faq,omitempty"`
}

// Response carries the translated values. A partial response is valid:
// fields absent here are left unchanged by the caller, never cleared.
type Response struct {
	Fields map[string]string `json:"fields"`
	FAQ    []locale.FAQEntry `json:"faq,omitempty"`
}

// Service is the external translation collaborator.
type Service interface {
	Translate(ctx context.Context, req Request) (*Response, error)
}
