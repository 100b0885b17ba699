package scheduler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/olegiv/notary-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func testScheduler(t *testing.T) (*Scheduler, *store.Queries) {
	t.Helper()
	db := testDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, nil, logger), store.New(db)
}

func TestPublishDuePosts(t *testing.T) {
	s, q := testScheduler(t)
	ctx := context.Background()
	now := time.Now().UTC()

	dueID, err := q.CreatePost(ctx, map[string]any{
		"slug": "due", "status": "scheduled", "title": "Due",
		"scheduled_at": now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	futureID, err := q.CreatePost(ctx, map[string]any{
		"slug": "future", "status": "scheduled", "title": "Future",
		"scheduled_at": now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := s.publishDuePosts(); err != nil {
		t.Fatalf("publishDuePosts: %v", err)
	}

	due, err := q.GetPostSummary(ctx, dueID)
	if err != nil {
		t.Fatalf("GetPostSummary: %v", err)
	}
	if due.Status != "published" {
		t.Errorf("due post status = %q, want published", due.Status)
	}
	future, err := q.GetPostSummary(ctx, futureID)
	if err != nil {
		t.Fatalf("GetPostSummary: %v", err)
	}
	if future.Status != "scheduled" {
		t.Errorf("future post status = %q, want still scheduled", future.Status)
	}
}

func TestPublishDuePosts_EmptyDatabase(t *testing.T) {
	s, _ := testScheduler(t)
	if err := s.publishDuePosts(); err != nil {
		t.Fatalf("publishDuePosts on empty db: %v", err)
	}
}

func TestPurgeOldEvents(t *testing.T) {
	s, q := testScheduler(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insert := func(createdAt time.Time, message string) {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO events (level, message, source, created_at) VALUES (?, ?, ?, ?)`,
			"INFO", message, "test", createdAt)
		if err != nil {
			t.Fatalf("inserting event: %v", err)
		}
	}
	insert(now.Add(-eventRetention-24*time.Hour), "old")
	insert(now, "recent")

	if err := s.purgeOldEvents(); err != nil {
		t.Fatalf("purgeOldEvents: %v", err)
	}

	count, err := q.CountEvents(ctx, "")
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 1 {
		t.Errorf("events left = %d, want 1", count)
	}
}

func TestStartStop(t *testing.T) {
	s, _ := testScheduler(t)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("registered jobs = %d, want 2", got)
	}
	s.Stop()
}
