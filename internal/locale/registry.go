// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package locale implements the multi-language content model for blog posts.
// Localized fields are stored flat in one row: the base locale uses the plain
// column name, every other locale uses a "field_<code>" suffixed column. The
// package translates between that storage shape and the per-locale bundle
// shape the editor works with.
package locale

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrUnknownLocale is returned when a locale code is not present in the
// registry. Reaching it through the admin UI indicates a programming error.
var ErrUnknownLocale = errors.New("unknown locale code")

// Localized field names. These are the only fields that carry per-locale
// storage columns.
const (
	FieldTitle           = "title"
	FieldExcerpt         = "excerpt"
	FieldContent         = "content"
	FieldMetaTitle       = "meta_title"
	FieldMetaDescription = "meta_description"
	FieldCategory        = "category"
	FieldCTA             = "cta"
	FieldFAQ             = "faq"
)

// ScalarFields lists the localized plain-string fields in storage order.
var ScalarFields = []string{
	FieldTitle,
	FieldExcerpt,
	FieldContent,
	FieldMetaTitle,
	FieldMetaDescription,
	FieldCategory,
	FieldCTA,
}

// LocalizedFields lists every localized field, including the structured FAQ.
var LocalizedFields = append(append([]string{}, ScalarFields...), FieldFAQ)

// IsLocalizedField reports whether name is a localized field.
func IsLocalizedField(name string) bool {
	for _, f := range LocalizedFields {
		if f == name {
			return true
		}
	}
	return false
}

// Registry holds the ordered set of supported locales and designates the one
// base locale whose fields are stored in unsuffixed columns. It is built once
// from configuration and passed in explicitly so tests can substitute
// alternate locale sets.
type Registry struct {
	codes []string
	base  string
	set   map[string]struct{}
}

// NewRegistry builds a Registry from an ordered list of locale codes and the
// base locale code. Every code must be a well-formed BCP 47 tag and the base
// must be one of the codes.
func NewRegistry(codes []string, base string) (*Registry, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("locale registry needs at least one locale")
	}

	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, err := language.Parse(code); err != nil {
			return nil, fmt.Errorf("invalid locale code %q: %w", code, err)
		}
		if _, dup := set[code]; dup {
			return nil, fmt.Errorf("duplicate locale code %q", code)
		}
		set[code] = struct{}{}
	}

	if _, ok := set[base]; !ok {
		return nil, fmt.Errorf("base locale %q is not in the locale set: %w", base, ErrUnknownLocale)
	}

	return &Registry{
		codes: append([]string{}, codes...),
		base:  base,
		set:   set,
	}, nil
}

// Codes returns the supported locale codes in registry order.
func (r *Registry) Codes() []string {
	return append([]string{}, r.codes...)
}

// Base returns the base locale code.
func (r *Registry) Base() string {
	return r.base
}

// Contains reports whether code is a supported locale.
func (r *Registry) Contains(code string) bool {
	_, ok := r.set[code]
	return ok
}

// StorageKey maps a localized field and locale to its storage column name:
// the plain field name for the base locale, "field_<code>" otherwise.
func (r *Registry) StorageKey(field, code string) (string, error) {
	if !r.Contains(code) {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, code)
	}
	if code == r.base {
		return field, nil
	}
	return field + "_" + code, nil
}

// LocaleColumns returns every storage column name belonging to one locale's
// bundle, in field order. Used to scope partial updates to a single locale.
func (r *Registry) LocaleColumns(code string) ([]string, error) {
	if !r.Contains(code) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, code)
	}
	cols := make([]string, 0, len(LocalizedFields))
	for _, f := range LocalizedFields {
		key, _ := r.StorageKey(f, code)
		cols = append(cols, key)
	}
	return cols, nil
}
