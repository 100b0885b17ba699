// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching layer: a byte-value Cache interface with
// in-memory and Redis implementations, plus typed helpers for hot reads.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is the storage-agnostic contract. Implementations are safe for
// concurrent use; values are opaque bytes.
type Cache interface {
	// Get returns the value or ErrCacheMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero TTL means the implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}

// Error is a sentinel error type for cache operations.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// Options selects and configures the cache backend.
type Options struct {
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	MaxEntries int
}

// New returns a Redis cache when a URL is configured, falling back to the
// in-memory cache when the connection fails so a Redis outage never blocks
// startup.
func New(opts Options, logger *slog.Logger) Cache {
	if opts.RedisURL != "" {
		c, err := NewRedisCache(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
		if err == nil {
			logger.Info("cache backend: redis", "prefix", opts.Prefix)
			return c
		}
		logger.Warn("redis cache unavailable, using memory cache", "error", err)
	}
	return NewMemoryCache(opts.DefaultTTL, opts.MaxEntries)
}
