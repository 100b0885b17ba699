package util

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Café Été", "cafe-ete"},
		{"Procuração & Apostila", "procuracao-apostila"},
		{"already-a-slug", "already-a-slug"},
		{"Multiple   spaces --- hyphens", "multiple-spaces-hyphens"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"a", "post-1", "hello-world-2024"}
	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "UpperCase", "with space", "accentué"}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}

func TestValidateTimezone(t *testing.T) {
	if err := ValidateTimezone("Europe/Paris"); err != nil {
		t.Errorf("ValidateTimezone(Europe/Paris) = %v", err)
	}
	if err := ValidateTimezone("UTC"); err != nil {
		t.Errorf("ValidateTimezone(UTC) = %v", err)
	}
	if err := ValidateTimezone(""); err == nil {
		t.Error("ValidateTimezone(\"\") succeeded")
	}
	if err := ValidateTimezone("Mars/Olympus"); err == nil {
		t.Error("ValidateTimezone(Mars/Olympus) succeeded")
	}
}

func TestFormatInZone(t *testing.T) {
	// 14:00 UTC is 15:00 in Paris in winter.
	instant := time.Date(2026, 1, 20, 14, 0, 0, 0, time.UTC)

	if got := FormatInZone(instant, "Europe/Paris"); got != "Tue, 20 Jan 2026 15:00" {
		t.Errorf("FormatInZone(Paris) = %q", got)
	}
	// Unknown zones fall back to UTC rather than failing.
	if got := FormatInZone(instant, "Nope/Nowhere"); got != "Tue, 20 Jan 2026 14:00" {
		t.Errorf("FormatInZone(unknown) = %q", got)
	}
}

func TestToZone(t *testing.T) {
	instant := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	paris := ToZone(instant, "Europe/Paris")
	if paris.Hour() != 14 {
		t.Errorf("ToZone(Paris).Hour() = %d, want 14", paris.Hour())
	}
	if !paris.Equal(instant) {
		t.Error("ToZone changed the instant")
	}
}
