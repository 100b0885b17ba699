// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olegiv/notary-go/internal/store"
)

const languagesKey = "languages"

// Languages caches the site language list, the hottest read in the admin UI.
type Languages struct {
	cache   Cache
	queries *store.Queries
	ttl     time.Duration
}

// NewLanguages creates the typed language cache.
func NewLanguages(c Cache, queries *store.Queries, ttl time.Duration) *Languages {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Languages{cache: c, queries: queries, ttl: ttl}
}

// List returns all languages, serving from cache when possible.
func (l *Languages) List(ctx context.Context) ([]store.Language, error) {
	if data, err := l.cache.Get(ctx, languagesKey); err == nil {
		var langs []store.Language
		if err := json.Unmarshal(data, &langs); err == nil {
			return langs, nil
		}
		// Unreadable entry: drop it and fall through to the database.
		_ = l.cache.Delete(ctx, languagesKey)
	}

	langs, err := l.queries.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(langs); err == nil {
		_ = l.cache.Set(ctx, languagesKey, data, l.ttl)
	}
	return langs, nil
}

// Invalidate drops the cached list after any language write.
func (l *Languages) Invalidate(ctx context.Context) {
	_ = l.cache.Delete(ctx, languagesKey)
}
