// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content prepares post bodies for storage and display: markdown
// rendering and HTML sanitization.
package content

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/notary-go/internal/model"
)

// sanitizer strips dangerous markup from rich-text content while keeping the
// tags the editor produces.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize removes unsafe HTML from editor content.
func Sanitize(html string) string {
	return sanitizer.Sanitize(html)
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}

// RenderBody returns display HTML for a post body in either storage format.
func RenderBody(body, format string) (string, error) {
	if format == model.ContentFormatMarkdown {
		return RenderMarkdown(body)
	}
	return Sanitize(body), nil
}
