// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package locale

import "fmt"

// FAQEntry is one question/answer pair. FAQ order is meaningful (question
// numbering is positional) and is preserved verbatim through expand/flatten.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Bundle holds the localized field values for one entity in one language.
// Every field has a defined empty default; bundles are never nil for a
// supported locale.
type Bundle struct {
	Title           string     `json:"title"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	Category        string     `json:"category"`
	CTA             string     `json:"cta"`
	FAQ             []FAQEntry `json:"faq"`
}

// NewBundle returns an empty bundle with a non-nil FAQ list.
func NewBundle() *Bundle {
	return &Bundle{FAQ: []FAQEntry{}}
}

// Field returns the value of a scalar localized field by name.
func (b *Bundle) Field(name string) (string, error) {
	switch name {
	case FieldTitle:
		return b.Title, nil
	case FieldExcerpt:
		return b.Excerpt, nil
	case FieldContent:
		return b.Content, nil
	case FieldMetaTitle:
		return b.MetaTitle, nil
	case FieldMetaDescription:
		return b.MetaDescription, nil
	case FieldCategory:
		return b.Category, nil
	case FieldCTA:
		return b.CTA, nil
	default:
		return "", fmt.Errorf("unknown scalar field %q", name)
	}
}

// SetField sets the value of a scalar localized field by name.
func (b *Bundle) SetField(name, value string) error {
	switch name {
	case FieldTitle:
		b.Title = value
	case FieldExcerpt:
		b.Excerpt = value
	case FieldContent:
		b.Content = value
	case FieldMetaTitle:
		b.MetaTitle = value
	case FieldMetaDescription:
		b.MetaDescription = value
	case FieldCategory:
		b.Category = value
	case FieldCTA:
		b.CTA = value
	default:
		return fmt.Errorf("unknown scalar field %q", name)
	}
	return nil
}

// Clone returns a deep copy of the bundle.
func (b *Bundle) Clone() *Bundle {
	c := *b
	c.FAQ = append([]FAQEntry{}, b.FAQ...)
	return &c
}

// HasContent reports whether the bundle carries any translatable text at all.
func (b *Bundle) HasContent() bool {
	for _, f := range ScalarFields {
		if v, _ := b.Field(f); v != "" {
			return true
		}
	}
	return len(b.FAQ) > 0
}

// Subset returns a copy of the bundle restricted to the named fields; fields
// not listed are left at their empty defaults.
func (b *Bundle) Subset(fields []string) *Bundle {
	sub := NewBundle()
	for _, f := range fields {
		if f == FieldFAQ {
			sub.FAQ = append([]FAQEntry{}, b.FAQ...)
			continue
		}
		if v, err := b.Field(f); err == nil {
			_ = sub.SetField(f, v)
		}
	}
	return sub
}
