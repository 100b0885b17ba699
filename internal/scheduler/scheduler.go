// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background jobs: publishing scheduled posts,
// pruning the event log and reloading the GeoIP database.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/notary-go/internal/geoip"
	"github.com/olegiv/notary-go/internal/store"
)

// eventRetention is how long event log rows are kept.
const eventRetention = 90 * 24 * time.Hour

// Scheduler runs the recurring background jobs.
type Scheduler struct {
	db     *sql.DB
	geo    *geoip.Lookup
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler. geo may be nil when GeoIP is not configured.
func New(db *sql.DB, geo *geoip.Lookup, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:     db,
		geo:    geo,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop: scheduled posts are
// checked every minute, the event log is pruned and the GeoIP database
// reloaded nightly.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.publishDuePosts(); err != nil {
			s.logger.Error("failed to publish scheduled posts", "source", "scheduler", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.purgeOldEvents(); err != nil {
			s.logger.Error("failed to purge old events", "source", "scheduler", "error", err)
		}
		s.reloadGeoIP()
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishDuePosts publishes every scheduled post whose time has arrived.
func (s *Scheduler) publishDuePosts() error {
	ctx := context.Background()
	queries := store.New(s.db)
	now := time.Now().UTC()

	posts, err := queries.ListDueScheduledPosts(ctx, now)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	for _, post := range posts {
		if err := queries.PublishPost(ctx, post.ID, now); err != nil {
			s.logger.Error("failed to publish scheduled post",
				"source", "scheduler", "post_id", post.ID, "slug", post.Slug, "error", err)
			continue
		}
		s.logger.Info("published scheduled post",
			"source", "scheduler", "post_id", post.ID, "slug", post.Slug)
	}
	return nil
}

// purgeOldEvents removes event log rows past the retention window.
func (s *Scheduler) purgeOldEvents() error {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-eventRetention)

	purged, err := store.New(s.db).PurgeEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.logger.Info("purged old events", "source", "scheduler", "count", purged, "cutoff", cutoff)
	}
	return nil
}

// reloadGeoIP picks up a refreshed GeoIP database file when one is present.
func (s *Scheduler) reloadGeoIP() {
	if s.geo == nil || !s.geo.IsEnabled() {
		return
	}
	if err := s.geo.Reload(); err != nil {
		s.logger.Warn("geoip database reload failed", "source", "scheduler", "error", err)
	}
}
