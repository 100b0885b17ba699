// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// ValidPostStatuses contains all valid blog post statuses.
var ValidPostStatuses = []string{
	PostStatusDraft,
	PostStatusScheduled,
	PostStatusPublished,
	PostStatusArchived,
}

// IsValidPostStatus reports whether status is a known post status.
func IsValidPostStatus(status string) bool {
	for _, s := range ValidPostStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Content formats for the blog editor.
const (
	ContentFormatHTML     = "html"
	ContentFormatMarkdown = "markdown"
)
