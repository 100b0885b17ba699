// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared helpers for package tests.
package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/store"
)

// TestDB opens an in-memory database with all migrations applied.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// In-memory SQLite gives every connection its own database.
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// TestRegistry returns a locale registry matching the migration schema.
func TestRegistry(t *testing.T) *locale.Registry {
	t.Helper()

	reg, err := locale.NewRegistry([]string{"en", "fr", "es", "de"}, "en")
	if err != nil {
		t.Fatalf("building test registry: %v", err)
	}
	return reg
}
