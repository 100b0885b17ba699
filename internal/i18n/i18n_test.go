package i18n

import (
	"strings"
	"testing"
)

func TestT_DefaultLocale(t *testing.T) {
	tr := NewTranslator("en", nil)
	if got := tr.T("en", "error_not_found", nil); got != "Not found" {
		t.Errorf("T = %q, want %q", got, "Not found")
	}
}

func TestT_OtherLocale(t *testing.T) {
	tr := NewTranslator("en", nil)
	if got := tr.T("fr", "error_not_found", nil); got != "Introuvable" {
		t.Errorf("T = %q, want %q", got, "Introuvable")
	}
}

func TestT_FallbackToDefault(t *testing.T) {
	tr := NewTranslator("en", nil)
	// Unsupported locale falls back to English.
	if got := tr.T("pt", "error_not_found", nil); got != "Not found" {
		t.Errorf("T = %q, want %q", got, "Not found")
	}
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	tr := NewTranslator("en", nil)
	if got := tr.T("en", "no_such_key", nil); got != "no_such_key" {
		t.Errorf("T = %q, want key echoed back", got)
	}
}

func TestT_TemplateData(t *testing.T) {
	tr := NewTranslator("en", nil)
	got := tr.T("en", "media_too_large", map[string]any{"Limit": "5MB"})
	if !strings.Contains(got, "5MB") {
		t.Errorf("T = %q, want the limit interpolated", got)
	}
}

func TestT_EmptyKey(t *testing.T) {
	tr := NewTranslator("en", nil)
	if got := tr.T("en", "", nil); got != "" {
		t.Errorf("T(empty key) = %q, want empty", got)
	}
}
