package locale

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]string{"en", "fr", "es"}, "en")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		base  string
	}{
		{"empty set", nil, "en"},
		{"invalid code", []string{"en", "not a tag"}, "en"},
		{"duplicate code", []string{"en", "en"}, "en"},
		{"base not listed", []string{"en", "fr"}, "de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.codes, tt.base); err == nil {
				t.Errorf("NewRegistry(%v, %q) succeeded, want error", tt.codes, tt.base)
			}
		})
	}
}

func TestStorageKey(t *testing.T) {
	reg := testRegistry(t)

	key, err := reg.StorageKey(FieldTitle, "en")
	if err != nil || key != "title" {
		t.Errorf("StorageKey(title, en) = %q, %v; want \"title\"", key, err)
	}

	key, err = reg.StorageKey(FieldTitle, "fr")
	if err != nil || key != "title_fr" {
		t.Errorf("StorageKey(title, fr) = %q, %v; want \"title_fr\"", key, err)
	}

	if _, err := reg.StorageKey(FieldTitle, "de"); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("StorageKey(title, de) error = %v, want ErrUnknownLocale", err)
	}
}

func TestLocaleColumns(t *testing.T) {
	reg := testRegistry(t)

	cols, err := reg.LocaleColumns("fr")
	if err != nil {
		t.Fatalf("LocaleColumns(fr): %v", err)
	}
	want := []string{"title_fr", "excerpt_fr", "content_fr", "meta_title_fr",
		"meta_description_fr", "category_fr", "cta_fr", "faq_fr"}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Errorf("LocaleColumns(fr) mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_DerivesSlugFromBaseTitle(t *testing.T) {
	reg := testRegistry(t)
	doc := NewDocument(reg)
	doc.Bundles["en"].Title = "Hello, World! 2024"

	row, err := Flatten(doc, reg, "https://example.com")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if got := row[ColSlug]; got != "hello-world-2024" {
		t.Errorf("slug = %v, want hello-world-2024", got)
	}
	if got := row[ColCanonicalURL]; got != "https://example.com/blog/hello-world-2024" {
		t.Errorf("canonical_url = %v", got)
	}
}

func TestFlatten_UserSlugWins(t *testing.T) {
	reg := testRegistry(t)
	doc := NewDocument(reg)
	doc.Common.Slug = "custom-slug"
	doc.Bundles["en"].Title = "Completely Different Title"

	row, err := Flatten(doc, reg, "https://example.com")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if got := row[ColSlug]; got != "custom-slug" {
		t.Errorf("slug = %v, want custom-slug", got)
	}
}

func TestFlatten_OmitsEmptyScalarsWritesZeroValues(t *testing.T) {
	reg := testRegistry(t)
	doc := NewDocument(reg)
	doc.Common.Slug = "post"
	doc.Bundles["en"].Title = "Title"
	// fr and es stay empty.

	row, err := Flatten(doc, reg, "https://example.com")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if _, present := row["title_fr"]; present {
		t.Error("empty title_fr should be omitted")
	}
	if _, present := row["content_es"]; present {
		t.Error("empty content_es should be omitted")
	}

	// Zero-valued arrays, booleans and counters are real values.
	if _, present := row[ColTags]; !present {
		t.Error("tags should always be written")
	}
	if v, present := row[ColIsFeatured]; !present || v != false {
		t.Errorf("is_featured = %v, %v; want false, present", v, present)
	}
	if v, present := row[ColViewsCount]; !present || v != int64(0) {
		t.Errorf("views_count = %v, %v; want 0, present", v, present)
	}
}

func TestFlatten_UnknownBundleLocale(t *testing.T) {
	reg := testRegistry(t)
	doc := NewDocument(reg)
	doc.Bundles["de"] = NewBundle()

	if _, err := Flatten(doc, reg, "https://example.com"); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("Flatten error = %v, want ErrUnknownLocale", err)
	}
}

func TestExpandFlatten_RoundTrip(t *testing.T) {
	reg := testRegistry(t)
	published := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	readTime := int64(7)

	doc := NewDocument(reg)
	doc.Common = Common{
		Slug:            "notarization-guide",
		CoverImage:      "uploads/cover.webp",
		Tags:            []string{"legal", "guide"},
		AuthorName:      "Marie",
		Status:          "published",
		MetaKeywords:    "notary, guide",
		ContentFormat:   "html",
		IsFeatured:      true,
		ViewsCount:      42,
		ReadTimeMinutes: &readTime,
		PublishedAt:     &published,
	}
	doc.Bundles["en"] = &Bundle{
		Title:   "Notarization Guide",
		Excerpt: "Everything you need.",
		Content: "<p>Guide body</p>",
		FAQ: []FAQEntry{
			{Question: "How long?", Answer: "30 minutes."},
			{Question: "What to bring?", Answer: "Your ID."},
		},
	}
	doc.Bundles["fr"] = &Bundle{
		Title:   "Guide de notarisation",
		Content: "<p>Corps du guide</p>",
		FAQ:     []FAQEntry{},
	}

	row, err := Flatten(doc, reg, "https://example.com")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	got := Expand(row, reg)

	// Canonical URL is rebuilt by Flatten, so mirror it before comparing.
	doc.Common.CanonicalURL = "https://example.com/blog/notarization-guide"

	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExpand_ParsesJSONTextColumns(t *testing.T) {
	reg := testRegistry(t)
	row := Row{
		"id":     int64(3),
		"slug":   "post",
		"tags":   `["a","b"]`,
		"faq":    `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`,
		"faq_fr": "",
	}

	doc := Expand(row, reg)
	if doc.ID != 3 {
		t.Errorf("ID = %d, want 3", doc.ID)
	}
	if diff := cmp.Diff([]string{"a", "b"}, doc.Common.Tags); diff != "" {
		t.Errorf("tags mismatch:\n%s", diff)
	}
	want := []FAQEntry{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}}
	if diff := cmp.Diff(want, doc.Bundles["en"].FAQ); diff != "" {
		t.Errorf("faq order mismatch:\n%s", diff)
	}
	if len(doc.Bundles["fr"].FAQ) != 0 {
		t.Errorf("faq_fr = %v, want empty", doc.Bundles["fr"].FAQ)
	}
}

func TestFlattenLocale_ScopesToOneLocale(t *testing.T) {
	reg := testRegistry(t)
	doc := NewDocument(reg)
	doc.Bundles["en"].Title = "English"
	doc.Bundles["fr"].Title = "Français"

	row, err := FlattenLocale(doc, reg, "fr")
	if err != nil {
		t.Fatalf("FlattenLocale: %v", err)
	}
	if got := row["title_fr"]; got != "Français" {
		t.Errorf("title_fr = %v", got)
	}
	if _, present := row["title"]; present {
		t.Error("base locale column should not be written")
	}

	if _, err := FlattenLocale(doc, reg, "de"); !errors.Is(err, ErrUnknownLocale) {
		t.Errorf("FlattenLocale(de) error = %v, want ErrUnknownLocale", err)
	}
}

func TestBundleSubset(t *testing.T) {
	b := &Bundle{
		Title:   "Title",
		Content: "Body",
		FAQ:     []FAQEntry{{Question: "Q", Answer: "A"}},
	}

	sub := b.Subset([]string{FieldTitle, FieldFAQ})
	if sub.Title != "Title" || sub.Content != "" {
		t.Errorf("Subset = %+v, want title only", sub)
	}
	if len(sub.FAQ) != 1 {
		t.Errorf("Subset FAQ = %v", sub.FAQ)
	}
}
