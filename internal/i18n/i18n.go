// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n localizes server-generated strings (validation and
// notification messages returned by the admin API).
package i18n

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.fr.toml", "active.es.toml", "active.de.toml"}

// Translator wraps a go-i18n bundle with a default-locale fallback chain.
type Translator struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
	logger      *slog.Logger
}

// NewTranslator loads the embedded message files for the given default locale.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	if logger == nil {
		logger = slog.Default()
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Warn("i18n message file failed to load", "file", file, "error", err)
		}
	}

	return &Translator{bundle: bundle, defaultLang: tag, logger: logger}
}

// T renders the message for key in the requested locale, falling back to the
// default locale and finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	langs := make([]string, 0, 2)
	if locale != "" {
		langs = append(langs, locale)
	}
	langs = append(langs, t.defaultLang.String())

	localizer := i18n.NewLocalizer(t.bundle, langs...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}
