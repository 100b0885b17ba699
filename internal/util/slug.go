// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers: URL slug generation with
// transliteration, nullable-type conversions, and appointment time formatting.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// slugInvalid matches everything outside the slug alphabet.
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	// slugHyphenRuns matches runs of two or more hyphens.
	slugHyphenRuns = regexp.MustCompile(`-{2,}`)
	// whitespaceRuns matches runs of whitespace.
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Slugify converts a title to a URL-friendly slug: transliterates to ASCII,
// lowercases, collapses whitespace runs to single hyphens and strips every
// character outside [a-z0-9-].
func Slugify(s string) string {
	result := unidecode.Unidecode(s)
	result = strings.ToLower(strings.TrimSpace(result))
	result = whitespaceRuns.ReplaceAllString(result, "-")
	result = slugInvalid.ReplaceAllString(result, "")
	result = slugHyphenRuns.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s is a well-formed slug: lowercase letters,
// digits and single interior hyphens only.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}
