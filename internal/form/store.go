// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form holds the in-memory state of the one post being edited.
// Edits are locale-scoped: writing a field of one locale never perturbs any
// other locale, and switching the active locale flushes the external
// rich-text editor into the store first so no unsaved edits are lost.
package form

import (
	"fmt"
	"sync"
	"time"

	"github.com/olegiv/notary-go/internal/locale"
)

// FlushFunc is called with the active locale immediately before it changes
// (or before switching editing modes). It returns the editor widget's current
// content so it can be captured into the store. A nil return leaves the
// stored content untouched.
type FlushFunc func(activeLocale string) *string

// Store is the editable state for a single post. It is safe for use from the
// translation orchestrator's progress callback while the owning request
// reads it.
type Store struct {
	mu           sync.Mutex
	reg          *locale.Registry
	doc          *locale.Document
	activeLocale string
	flush        FlushFunc
}

// New creates a store seeded with one empty bundle per registry locale. The
// base locale starts active.
func New(reg *locale.Registry) *Store {
	return &Store{
		reg:          reg,
		doc:          locale.NewDocument(reg),
		activeLocale: reg.Base(),
	}
}

// Load replaces the store's document, e.g. after expanding a persisted row.
func (s *Store) Load(doc *locale.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	for _, code := range s.reg.Codes() {
		if s.doc.Bundles[code] == nil {
			s.doc.Bundles[code] = locale.NewBundle()
		}
	}
}

// Document returns a deep copy of the current document.
func (s *Store) Document() *locale.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

// ActiveLocale returns the locale currently being edited.
func (s *Store) ActiveLocale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocale
}

// SetFlush registers the editor-flush callback.
func (s *Store) SetFlush(fn FlushFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flush = fn
}

// SetActiveLocale flushes the external editor into the current locale's
// content and then switches. Unsaved edits in every locale are retained.
func (s *Store) SetActiveLocale(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.reg.Contains(code) {
		return fmt.Errorf("%w: %q", locale.ErrUnknownLocale, code)
	}
	s.flushEditorLocked()
	s.activeLocale = code
	return nil
}

// FlushEditor captures the editor widget's content without switching locale.
// Called before toggling between rich-text and raw-markup editing modes.
func (s *Store) FlushEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushEditorLocked()
}

func (s *Store) flushEditorLocked() {
	if s.flush == nil {
		return
	}
	if content := s.flush(s.activeLocale); content != nil {
		s.doc.Bundles[s.activeLocale].Content = *content
	}
}

// SetCommonField sets a non-localized field by column name.
func (s *Store) SetCommonField(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &s.doc.Common
	switch name {
	case locale.ColSlug:
		return assignString(&c.Slug, name, value)
	case locale.ColCoverImage:
		return assignString(&c.CoverImage, name, value)
	case locale.ColAuthorName:
		return assignString(&c.AuthorName, name, value)
	case locale.ColStatus:
		return assignString(&c.Status, name, value)
	case locale.ColMetaKeywords:
		return assignString(&c.MetaKeywords, name, value)
	case locale.ColContentFormat:
		return assignString(&c.ContentFormat, name, value)
	case locale.ColTags:
		v, ok := value.([]string)
		if !ok {
			return fmt.Errorf("field %q expects []string, got %T", name, value)
		}
		c.Tags = append([]string{}, v...)
	case locale.ColIsFeatured:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %q expects bool, got %T", name, value)
		}
		c.IsFeatured = v
	case locale.ColViewsCount:
		v, ok := value.(int64)
		if !ok {
			return fmt.Errorf("field %q expects int64, got %T", name, value)
		}
		c.ViewsCount = v
	case locale.ColReadTimeMinutes:
		switch v := value.(type) {
		case nil:
			c.ReadTimeMinutes = nil
		case int64:
			c.ReadTimeMinutes = &v
		default:
			return fmt.Errorf("field %q expects int64 or nil, got %T", name, value)
		}
	case locale.ColPublishedAt:
		return assignTimePtr(&c.PublishedAt, name, value)
	case locale.ColScheduledAt:
		return assignTimePtr(&c.ScheduledAt, name, value)
	default:
		return fmt.Errorf("unknown common field %q", name)
	}
	return nil
}

// SetLocaleField sets a localized scalar field for one locale.
func (s *Store) SetLocaleField(code, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return err
	}
	return bundle.SetField(field, value)
}

// LocaleField reads a localized scalar field for one locale.
func (s *Store) LocaleField(code, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return "", err
	}
	return bundle.Field(field)
}

// Bundle returns a deep copy of one locale's bundle.
func (s *Store) Bundle(code string) (*locale.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return nil, err
	}
	return bundle.Clone(), nil
}

// MergeBundle copies the non-empty fields of src into one locale's bundle.
// Fields absent from src are left unchanged, never cleared; a partial
// translation response must not wipe out existing content.
func (s *Store) MergeBundle(code string, src *locale.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return err
	}
	for _, field := range locale.ScalarFields {
		if v, _ := src.Field(field); v != "" {
			_ = bundle.SetField(field, v)
		}
	}
	if len(src.FAQ) > 0 {
		bundle.FAQ = append([]locale.FAQEntry{}, src.FAQ...)
	}
	return nil
}

// AddFAQEntry appends an empty question/answer pair to one locale's FAQ.
func (s *Store) AddFAQEntry(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return err
	}
	bundle.FAQ = append(bundle.FAQ, locale.FAQEntry{})
	return nil
}

// RemoveFAQEntry removes the entry at index. Entries are index-addressed:
// removal shifts every subsequent entry down by one.
func (s *Store) RemoveFAQEntry(code string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(bundle.FAQ) {
		return fmt.Errorf("faq index %d out of range [0,%d)", index, len(bundle.FAQ))
	}
	bundle.FAQ = append(bundle.FAQ[:index], bundle.FAQ[index+1:]...)
	return nil
}

// UpdateFAQEntry sets the question or answer of the entry at index.
func (s *Store) UpdateFAQEntry(code string, index int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, err := s.bundleLocked(code)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(bundle.FAQ) {
		return fmt.Errorf("faq index %d out of range [0,%d)", index, len(bundle.FAQ))
	}
	switch field {
	case "question":
		bundle.FAQ[index].Question = value
	case "answer":
		bundle.FAQ[index].Answer = value
	default:
		return fmt.Errorf("unknown faq field %q", field)
	}
	return nil
}

func (s *Store) bundleLocked(code string) (*locale.Bundle, error) {
	if !s.reg.Contains(code) {
		return nil, fmt.Errorf("%w: %q", locale.ErrUnknownLocale, code)
	}
	bundle := s.doc.Bundles[code]
	if bundle == nil {
		bundle = locale.NewBundle()
		s.doc.Bundles[code] = bundle
	}
	return bundle, nil
}

func (s *Store) cloneLocked() *locale.Document {
	clone := &locale.Document{
		ID:      s.doc.ID,
		Common:  s.doc.Common,
		Bundles: make(map[string]*locale.Bundle, len(s.doc.Bundles)),
	}
	clone.Common.Tags = append([]string{}, s.doc.Common.Tags...)
	for code, bundle := range s.doc.Bundles {
		clone.Bundles[code] = bundle.Clone()
	}
	return clone
}

func assignString(dst *string, name string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q expects string, got %T", name, value)
	}
	*dst = v
	return nil
}

func assignTimePtr(dst **time.Time, name string, value any) error {
	switch v := value.(type) {
	case nil:
		*dst = nil
	case time.Time:
		*dst = &v
	case *time.Time:
		*dst = v
	default:
		return fmt.Errorf("field %q expects time.Time or nil, got %T", name, value)
	}
	return nil
}
