package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/olegiv/notary-go/internal/locale"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func TestFilterPostColumns_DropsUnknownKeys(t *testing.T) {
	names := filterPostColumns(map[string]any{
		"title":                   "x",
		"title_fr":                "y",
		"faq_de":                  "[]",
		"id":                      int64(1),
		"created_at":              "now",
		"slug; DROP TABLE posts":  "evil",
		"definitely_not_a_column": "nope",
	})
	want := []string{"faq_de", "title", "title_fr"}
	if len(names) != len(want) {
		t.Fatalf("filterPostColumns = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestBindValue(t *testing.T) {
	if got := bindValue(true); got != int64(1) {
		t.Errorf("bindValue(true) = %v", got)
	}
	if got := bindValue(false); got != int64(0) {
		t.Errorf("bindValue(false) = %v", got)
	}
	if got := bindValue([]string{"a", "b"}); got != `["a","b"]` {
		t.Errorf("bindValue([]string) = %v", got)
	}
	if got := bindValue([]locale.FAQEntry{{Question: "Q", Answer: "A"}}); got != `[{"question":"Q","answer":"A"}]` {
		t.Errorf("bindValue(faq) = %v", got)
	}
	if got := bindValue((*int64)(nil)); got != nil {
		t.Errorf("bindValue(nil *int64) = %v", got)
	}
	n := int64(7)
	if got := bindValue(&n); got != int64(7) {
		t.Errorf("bindValue(&7) = %v", got)
	}
}

func TestCreatePost_RoundTripThroughRow(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	id, err := q.CreatePost(ctx, map[string]any{
		"slug":        "first-post",
		"status":      "draft",
		"title":       "First Post",
		"title_fr":    "Premier article",
		"tags":        []string{"legal"},
		"is_featured": true,
		"faq":         []locale.FAQEntry{{Question: "Q", Answer: "A"}},
		"ignored_key": "dropped silently",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	row, err := q.GetPostRow(ctx, id)
	if err != nil {
		t.Fatalf("GetPostRow: %v", err)
	}
	if row["slug"] != "first-post" || row["title"] != "First Post" {
		t.Errorf("row = %v", row)
	}
	if row["title_fr"] != "Premier article" {
		t.Errorf("title_fr = %v", row["title_fr"])
	}
	if row["tags"] != `["legal"]` {
		t.Errorf("tags = %v", row["tags"])
	}
	if _, present := row["ignored_key"]; present {
		t.Error("non-whitelisted key reached storage")
	}

	summary, err := q.GetPostSummary(ctx, id)
	if err != nil {
		t.Fatalf("GetPostSummary: %v", err)
	}
	if summary.Title != "First Post" || !summary.IsFeatured {
		t.Errorf("summary = %+v", summary)
	}
}

func TestCreatePost_NoValidColumns(t *testing.T) {
	db := testDB(t)
	q := New(db)

	if _, err := q.CreatePost(context.Background(), map[string]any{"bogus": 1}); err == nil {
		t.Error("CreatePost with no valid columns succeeded")
	}
}

func TestUpdatePostColumns(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	id, err := q.CreatePost(ctx, map[string]any{
		"slug": "post", "status": "draft", "title": "Original",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := q.UpdatePostColumns(ctx, id, map[string]any{"title_fr": "Mise à jour"}); err != nil {
		t.Fatalf("UpdatePostColumns: %v", err)
	}

	row, err := q.GetPostRow(ctx, id)
	if err != nil {
		t.Fatalf("GetPostRow: %v", err)
	}
	if row["title"] != "Original" {
		t.Errorf("base title changed: %v", row["title"])
	}
	if row["title_fr"] != "Mise à jour" {
		t.Errorf("title_fr = %v", row["title_fr"])
	}

	if err := q.UpdatePostColumns(ctx, 9999, map[string]any{"title": "x"}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("update of missing row = %v, want sql.ErrNoRows", err)
	}

	// A map with only non-whitelisted keys is a no-op, not an error.
	if err := q.UpdatePostColumns(ctx, id, map[string]any{"bogus": "x"}); err != nil {
		t.Errorf("no-op update = %v", err)
	}
}

func TestPostSlugExists(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	id, err := q.CreatePost(ctx, map[string]any{"slug": "taken", "status": "draft", "title": "T"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	exists, err := q.PostSlugExists(ctx, "taken", 0)
	if err != nil || !exists {
		t.Errorf("PostSlugExists(taken, 0) = %v, %v; want true", exists, err)
	}
	exists, err = q.PostSlugExists(ctx, "taken", id)
	if err != nil || exists {
		t.Errorf("PostSlugExists(taken, self) = %v, %v; want false", exists, err)
	}
	exists, err = q.PostSlugExists(ctx, "free", 0)
	if err != nil || exists {
		t.Errorf("PostSlugExists(free, 0) = %v, %v; want false", exists, err)
	}
}

func TestScheduledPublishing(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()
	now := time.Now().UTC()

	dueID, err := q.CreatePost(ctx, map[string]any{
		"slug": "due", "status": "scheduled", "title": "Due",
		"scheduled_at": now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := q.CreatePost(ctx, map[string]any{
		"slug": "future", "status": "scheduled", "title": "Future",
		"scheduled_at": now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	due, err := q.ListDueScheduledPosts(ctx, now)
	if err != nil {
		t.Fatalf("ListDueScheduledPosts: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueID {
		t.Fatalf("due = %+v, want just the past-due post", due)
	}

	if err := q.PublishPost(ctx, dueID, now); err != nil {
		t.Fatalf("PublishPost: %v", err)
	}
	summary, err := q.GetPostSummary(ctx, dueID)
	if err != nil {
		t.Fatalf("GetPostSummary: %v", err)
	}
	if summary.Status != "published" {
		t.Errorf("status = %q, want published", summary.Status)
	}
	if !summary.PublishedAt.Valid {
		t.Error("published_at not stamped")
	}
	if summary.ScheduledAt.Valid {
		t.Error("scheduled_at not cleared")
	}

	due, err = q.ListDueScheduledPosts(ctx, now)
	if err != nil {
		t.Fatalf("ListDueScheduledPosts: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("due after publish = %+v, want none", due)
	}
}
