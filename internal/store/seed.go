// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/notary-go/internal/auth"
	"github.com/olegiv/notary-go/internal/model"
)

// Seed inserts the default admin account and the site languages when the
// database is empty. Safe to run on every startup.
func Seed(ctx context.Context, q *Queries, adminEmail, adminPassword string, logger *slog.Logger) error {
	userCount, err := q.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if userCount == 0 {
		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if _, err := q.CreateUser(ctx, CreateUserParams{
			Email:        adminEmail,
			Name:         "Administrator",
			PasswordHash: hash,
			Role:         model.RoleAdmin,
		}); err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		logger.Info("seeded admin user", "email", adminEmail)
	}

	langCount, err := q.CountLanguages(ctx)
	if err != nil {
		return fmt.Errorf("counting languages: %w", err)
	}
	if langCount == 0 {
		defaults := []CreateLanguageParams{
			{Code: "en", Name: "English", NativeName: "English", IsActive: true, IsDefault: true, DisplayOrder: 1},
			{Code: "fr", Name: "French", NativeName: "Français", IsActive: true, DisplayOrder: 2},
			{Code: "es", Name: "Spanish", NativeName: "Español", IsActive: true, DisplayOrder: 3},
			{Code: "de", Name: "German", NativeName: "Deutsch", IsActive: true, DisplayOrder: 4},
		}
		for _, lang := range defaults {
			if _, err := q.CreateLanguage(ctx, lang); err != nil {
				return fmt.Errorf("creating language %s: %w", lang.Code, err)
			}
		}
		logger.Info("seeded site languages", "count", len(defaults))
	}

	return nil
}
