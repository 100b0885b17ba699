package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/olegiv/notary-go/internal/locale"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	reg, err := locale.NewRegistry([]string{"en", "fr", "es"}, "en")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return New(reg)
}

func TestLocaleFieldIsolation(t *testing.T) {
	s := testStore(t)

	if err := s.SetLocaleField("en", locale.FieldTitle, "English"); err != nil {
		t.Fatalf("SetLocaleField(en): %v", err)
	}
	if err := s.SetLocaleField("fr", locale.FieldTitle, "Français"); err != nil {
		t.Fatalf("SetLocaleField(fr): %v", err)
	}

	for code, want := range map[string]string{"en": "English", "fr": "Français", "es": ""} {
		got, err := s.LocaleField(code, locale.FieldTitle)
		if err != nil {
			t.Fatalf("LocaleField(%s): %v", code, err)
		}
		if got != want {
			t.Errorf("title[%s] = %q, want %q", code, got, want)
		}
	}
}

func TestSetLocaleField_UnknownLocale(t *testing.T) {
	s := testStore(t)
	if err := s.SetLocaleField("de", locale.FieldTitle, "x"); !errors.Is(err, locale.ErrUnknownLocale) {
		t.Errorf("error = %v, want ErrUnknownLocale", err)
	}
}

func TestSetActiveLocale_FlushesEditorFirst(t *testing.T) {
	s := testStore(t)

	var flushedLocale string
	s.SetFlush(func(active string) *string {
		flushedLocale = active
		content := "unsaved edit in " + active
		return &content
	})

	if err := s.SetActiveLocale("fr"); err != nil {
		t.Fatalf("SetActiveLocale: %v", err)
	}
	if flushedLocale != "en" {
		t.Errorf("flush saw locale %q, want en", flushedLocale)
	}
	if got, _ := s.LocaleField("en", locale.FieldContent); got != "unsaved edit in en" {
		t.Errorf("en content = %q, editor flush was lost", got)
	}
	if got := s.ActiveLocale(); got != "fr" {
		t.Errorf("active locale = %q, want fr", got)
	}

	// A nil flush return leaves stored content untouched.
	s.SetFlush(func(string) *string { return nil })
	if err := s.SetActiveLocale("en"); err != nil {
		t.Fatalf("SetActiveLocale: %v", err)
	}
	if got, _ := s.LocaleField("fr", locale.FieldContent); got != "" {
		t.Errorf("fr content = %q, want unchanged empty", got)
	}
}

func TestSetActiveLocale_UnknownLocaleKeepsCurrent(t *testing.T) {
	s := testStore(t)
	if err := s.SetActiveLocale("de"); !errors.Is(err, locale.ErrUnknownLocale) {
		t.Errorf("error = %v, want ErrUnknownLocale", err)
	}
	if got := s.ActiveLocale(); got != "en" {
		t.Errorf("active locale = %q, want en", got)
	}
}

func TestRemoveFAQEntry_ShiftsSubsequentEntries(t *testing.T) {
	s := testStore(t)
	for _, q := range []string{"A", "B", "C"} {
		if err := s.AddFAQEntry("en"); err != nil {
			t.Fatalf("AddFAQEntry: %v", err)
		}
		idx := len(mustBundle(t, s, "en").FAQ) - 1
		if err := s.UpdateFAQEntry("en", idx, "question", q); err != nil {
			t.Fatalf("UpdateFAQEntry: %v", err)
		}
	}

	if err := s.RemoveFAQEntry("en", 1); err != nil {
		t.Fatalf("RemoveFAQEntry: %v", err)
	}

	want := []locale.FAQEntry{{Question: "A"}, {Question: "C"}}
	if diff := cmp.Diff(want, mustBundle(t, s, "en").FAQ); diff != "" {
		t.Errorf("FAQ after removal (-want +got):\n%s", diff)
	}

	if err := s.RemoveFAQEntry("en", 5); err == nil {
		t.Error("RemoveFAQEntry(5) succeeded, want out of range error")
	}
}

func TestMergeBundle_PartialNeverClears(t *testing.T) {
	s := testStore(t)
	if err := s.SetLocaleField("fr", locale.FieldTitle, "Titre existant"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLocaleField("fr", locale.FieldExcerpt, "Extrait existant"); err != nil {
		t.Fatal(err)
	}

	// A partial result carries only the content field.
	src := &locale.Bundle{Content: "<p>Nouveau contenu</p>"}
	if err := s.MergeBundle("fr", src); err != nil {
		t.Fatalf("MergeBundle: %v", err)
	}

	b := mustBundle(t, s, "fr")
	if b.Title != "Titre existant" || b.Excerpt != "Extrait existant" {
		t.Errorf("existing fields were cleared: %+v", b)
	}
	if b.Content != "<p>Nouveau contenu</p>" {
		t.Errorf("content = %q", b.Content)
	}
}

func TestDocumentReturnsDeepCopy(t *testing.T) {
	s := testStore(t)
	if err := s.SetLocaleField("en", locale.FieldTitle, "Original"); err != nil {
		t.Fatal(err)
	}

	copied := s.Document()
	copied.Bundles["en"].Title = "Mutated"
	copied.Common.Slug = "mutated"

	if got, _ := s.LocaleField("en", locale.FieldTitle); got != "Original" {
		t.Errorf("store title = %q, copy mutation leaked", got)
	}
	if s.Document().Common.Slug != "" {
		t.Error("store slug mutated through copy")
	}
}

func mustBundle(t *testing.T, s *Store, code string) *locale.Bundle {
	t.Helper()
	b, err := s.Bundle(code)
	if err != nil {
		t.Fatalf("Bundle(%s): %v", code, err)
	}
	return b
}
