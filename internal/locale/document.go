// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package locale

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/olegiv/notary-go/internal/util"
)

// Common column names for the non-localized part of a post row.
const (
	ColSlug            = "slug"
	ColCoverImage      = "cover_image"
	ColTags            = "tags"
	ColAuthorName      = "author_name"
	ColStatus          = "status"
	ColMetaKeywords    = "meta_keywords"
	ColCanonicalURL    = "canonical_url"
	ColContentFormat   = "content_format"
	ColIsFeatured      = "is_featured"
	ColViewsCount      = "views_count"
	ColReadTimeMinutes = "read_time_minutes"
	ColPublishedAt     = "published_at"
	ColScheduledAt     = "scheduled_at"
)

// Common holds the non-localized fields shared by every locale of a post.
// Numeric and boolean zero values are legitimate and must survive a
// round-trip, so defaulting is by type, never by truthiness.
type Common struct {
	Slug            string     `json:"slug"`
	CoverImage      string     `json:"cover_image"`
	Tags            []string   `json:"tags"`
	AuthorName      string     `json:"author_name"`
	Status          string     `json:"status"`
	MetaKeywords    string     `json:"meta_keywords"`
	CanonicalURL    string     `json:"canonical_url"`
	ContentFormat   string     `json:"content_format"`
	IsFeatured      bool       `json:"is_featured"`
	ViewsCount      int64      `json:"views_count"`
	ReadTimeMinutes *int64     `json:"read_time_minutes"`
	PublishedAt     *time.Time `json:"published_at"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
}

// Document is the per-locale editing shape of one post: common fields plus
// one bundle for every locale in the registry.
type Document struct {
	ID      int64              `json:"id"`
	Common  Common             `json:"common"`
	Bundles map[string]*Bundle `json:"content"`
}

// Row is the flat storage shape: column name to value. Values use Go types
// (string, bool, int64, []string, []FAQEntry, *time.Time); the store layer
// converts to and from database columns.
type Row map[string]any

// NewDocument returns an empty document with one seeded empty bundle per
// registry locale.
func NewDocument(reg *Registry) *Document {
	doc := &Document{
		Common:  Common{Tags: []string{}},
		Bundles: make(map[string]*Bundle, len(reg.Codes())),
	}
	for _, code := range reg.Codes() {
		doc.Bundles[code] = NewBundle()
	}
	return doc
}

// Expand converts a storage row into the per-locale document shape. Absent or
// null columns yield the field's empty default; Expand never fails on missing
// data.
func Expand(row Row, reg *Registry) *Document {
	doc := NewDocument(reg)

	doc.Common = Common{
		Slug:            rowString(row, ColSlug),
		CoverImage:      rowString(row, ColCoverImage),
		Tags:            rowStrings(row, ColTags),
		AuthorName:      rowString(row, ColAuthorName),
		Status:          rowString(row, ColStatus),
		MetaKeywords:    rowString(row, ColMetaKeywords),
		CanonicalURL:    rowString(row, ColCanonicalURL),
		ContentFormat:   rowString(row, ColContentFormat),
		IsFeatured:      rowBool(row, ColIsFeatured),
		ViewsCount:      rowInt64(row, ColViewsCount),
		ReadTimeMinutes: rowInt64Ptr(row, ColReadTimeMinutes),
		PublishedAt:     rowTimePtr(row, ColPublishedAt),
		ScheduledAt:     rowTimePtr(row, ColScheduledAt),
	}
	if id, ok := row["id"].(int64); ok {
		doc.ID = id
	}

	for _, code := range reg.Codes() {
		bundle := doc.Bundles[code]
		for _, field := range ScalarFields {
			key, _ := reg.StorageKey(field, code)
			_ = bundle.SetField(field, rowString(row, key))
		}
		faqKey, _ := reg.StorageKey(FieldFAQ, code)
		bundle.FAQ = rowFAQ(row, faqKey)
	}

	return doc
}

// Flatten converts a document back into the storage row shape. Scalar fields
// that are empty strings are omitted so partial updates do not clobber
// unrelated columns; array and boolean fields are always present. The slug is
// the user-supplied value when non-empty, otherwise derived from the base
// locale's title, and the canonical URL is always built from the base locale.
func Flatten(doc *Document, reg *Registry, baseURL string) (Row, error) {
	for code := range doc.Bundles {
		if !reg.Contains(code) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, code)
		}
	}

	row := Row{}

	slug := doc.Common.Slug
	if slug == "" {
		if base := doc.Bundles[reg.Base()]; base != nil {
			slug = util.Slugify(base.Title)
		}
	}
	putString(row, ColSlug, slug)
	if slug != "" {
		putString(row, ColCanonicalURL, baseURL+"/blog/"+slug)
	}

	putString(row, ColCoverImage, doc.Common.CoverImage)
	putString(row, ColAuthorName, doc.Common.AuthorName)
	putString(row, ColStatus, doc.Common.Status)
	putString(row, ColMetaKeywords, doc.Common.MetaKeywords)
	putString(row, ColContentFormat, doc.Common.ContentFormat)

	// Arrays, booleans and counters are written unconditionally: their zero
	// values are real values, not "missing".
	row[ColTags] = append([]string{}, doc.Common.Tags...)
	row[ColIsFeatured] = doc.Common.IsFeatured
	row[ColViewsCount] = doc.Common.ViewsCount
	if doc.Common.ReadTimeMinutes != nil {
		v := *doc.Common.ReadTimeMinutes
		row[ColReadTimeMinutes] = v
	}
	if doc.Common.PublishedAt != nil {
		t := *doc.Common.PublishedAt
		row[ColPublishedAt] = t
	}
	if doc.Common.ScheduledAt != nil {
		t := *doc.Common.ScheduledAt
		row[ColScheduledAt] = t
	}

	for _, code := range reg.Codes() {
		bundle := doc.Bundles[code]
		if bundle == nil {
			bundle = NewBundle()
		}
		if err := flattenBundle(row, bundle, reg, code); err != nil {
			return nil, err
		}
	}

	return row, nil
}

// FlattenLocale emits only the storage columns of a single locale's bundle.
// Used to persist one locale at a time during a translation batch.
func FlattenLocale(doc *Document, reg *Registry, code string) (Row, error) {
	bundle, ok := doc.Bundles[code]
	if !ok || !reg.Contains(code) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, code)
	}
	row := Row{}
	if err := flattenBundle(row, bundle, reg, code); err != nil {
		return nil, err
	}
	return row, nil
}

func flattenBundle(row Row, bundle *Bundle, reg *Registry, code string) error {
	for _, field := range ScalarFields {
		key, err := reg.StorageKey(field, code)
		if err != nil {
			return err
		}
		value, _ := bundle.Field(field)
		putString(row, key, value)
	}
	faqKey, err := reg.StorageKey(FieldFAQ, code)
	if err != nil {
		return err
	}
	row[faqKey] = append([]FAQEntry{}, bundle.FAQ...)
	return nil
}

// putString adds a scalar column only when non-empty.
func putString(row Row, key, value string) {
	if value != "" {
		row[key] = value
	}
}

func rowString(row Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func rowBool(row Row, key string) bool {
	switch v := row[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	default:
		return false
	}
}

func rowInt64(row Row, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func rowInt64Ptr(row Row, key string) *int64 {
	switch v := row[key].(type) {
	case int64:
		return &v
	case int:
		n := int64(v)
		return &n
	case *int64:
		return v
	default:
		return nil
	}
}

func rowTimePtr(row Row, key string) *time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	default:
		return nil
	}
}

func rowStrings(row Row, key string) []string {
	switch v := row[key].(type) {
	case []string:
		return append([]string{}, v...)
	case string:
		// Stored as a JSON array in a text column.
		if v == "" {
			return []string{}
		}
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
		return []string{}
	default:
		return []string{}
	}
}

func rowFAQ(row Row, key string) []FAQEntry {
	switch v := row[key].(type) {
	case []FAQEntry:
		return append([]FAQEntry{}, v...)
	case string:
		if v == "" {
			return []FAQEntry{}
		}
		var out []FAQEntry
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
		return []FAQEntry{}
	default:
		return []FAQEntry{}
	}
}
