// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "NOTARY_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/notary.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/notary.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.BaseLocale != "en" {
		t.Errorf("BaseLocale = %q, want %q", cfg.BaseLocale, "en")
	}
	if len(cfg.Locales) != 4 {
		t.Errorf("Locales = %v, want 4 entries", cfg.Locales)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	customSecret := "custom-secret-key-32-bytes-long!"
	setEnv(t, "NOTARY_SESSION_SECRET", customSecret)
	setEnv(t, "NOTARY_DB_PATH", "/custom/path.db")
	setEnv(t, "NOTARY_SERVER_HOST", "0.0.0.0")
	setEnv(t, "NOTARY_SERVER_PORT", "3000")
	setEnv(t, "NOTARY_ENV", "production")
	setEnv(t, "NOTARY_BASE_URL", "https://notary.example.com")
	setEnv(t, "NOTARY_LOCALES", "en,fr")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SessionSecret != customSecret {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, customSecret)
	}
	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.BaseURL != "https://notary.example.com" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "https://notary.example.com")
	}
	if len(cfg.Locales) != 2 || cfg.Locales[0] != "en" || cfg.Locales[1] != "fr" {
		t.Errorf("Locales = %v, want [en fr]", cfg.Locales)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail when NOTARY_SESSION_SECRET is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "NOTARY_SESSION_SECRET", tt.secret)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_BaseLocaleMustBeListed(t *testing.T) {
	os.Clearenv()
	setEnv(t, "NOTARY_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")
	setEnv(t, "NOTARY_LOCALES", "fr,es")
	setEnv(t, "NOTARY_BASE_LOCALE", "en")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail when base locale is not in the locale list")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_TranslationEnabled(t *testing.T) {
	if (Config{}).TranslationEnabled() {
		t.Error("TranslationEnabled() = true without API key")
	}
	if !(Config{OpenAIKey: "sk-test"}).TranslationEnabled() {
		t.Error("TranslationEnabled() = false with API key set")
	}
}

func TestConfig_GeoIPEnabled(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		enabled bool
	}{
		{"empty path", "", false},
		{"path set", "/path/to/GeoLite2-Country.mmdb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{GeoIPDBPath: tt.path}
			if got := cfg.GeoIPEnabled(); got != tt.enabled {
				t.Errorf("GeoIPEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}
