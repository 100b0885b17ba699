// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from NOTARY_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"NOTARY_DB_PATH" envDefault:"./data/notary.db"`
	SessionSecret string `env:"NOTARY_SESSION_SECRET,required"`
	ServerHost    string `env:"NOTARY_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NOTARY_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"NOTARY_ENV" envDefault:"development"`
	LogLevel      string `env:"NOTARY_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"NOTARY_UPLOADS_DIR" envDefault:"./uploads"`

	// Public site base URL, used to build canonical links for blog posts.
	BaseURL  string `env:"NOTARY_BASE_URL" envDefault:"http://localhost:8080"`
	SiteName string `env:"NOTARY_SITE_NAME" envDefault:"Notary Back Office"`

	// Site languages: ordered locale codes, first entry of Locales need not be
	// the base; BaseLocale names the unsuffixed storage language.
	Locales    []string `env:"NOTARY_LOCALES" envDefault:"en,fr,es,de"`
	BaseLocale string   `env:"NOTARY_BASE_LOCALE" envDefault:"en"`

	// Machine translation
	OpenAIKey   string `env:"NOTARY_OPENAI_API_KEY"`
	OpenAIModel string `env:"NOTARY_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Cache configuration
	RedisURL     string `env:"NOTARY_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"NOTARY_CACHE_PREFIX" envDefault:"notary:"` // Redis key prefix
	CacheTTL     int    `env:"NOTARY_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"NOTARY_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"NOTARY_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Seeding configuration
	DoSeed        bool   `env:"NOTARY_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"NOTARY_ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword string `env:"NOTARY_ADMIN_PASSWORD" envDefault:"changeme"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// TranslationEnabled returns true if an OpenAI API key is configured.
func (c Config) TranslationEnabled() bool {
	return c.OpenAIKey != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("NOTARY_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("NOTARY_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("NOTARY_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if len(cfg.Locales) == 0 {
		return nil, fmt.Errorf("NOTARY_LOCALES must name at least one locale")
	}
	baseListed := false
	for _, code := range cfg.Locales {
		if code == cfg.BaseLocale {
			baseListed = true
			break
		}
	}
	if !baseListed {
		return nil, fmt.Errorf("NOTARY_BASE_LOCALE %q is not in NOTARY_LOCALES %v",
			cfg.BaseLocale, cfg.Locales)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
