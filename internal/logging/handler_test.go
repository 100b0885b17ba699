package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		t.Fatalf("creating events table: %v", err)
	}
	return db
}

func TestHandle_PersistsWarnAndAbove(t *testing.T) {
	db := testDB(t)
	inner := slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("just info")
	logger.Warn("post publish failed", "post_id", 7)
	logger.Error("translation failed", "target_locale", "fr")

	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

func TestEventSource_ExplicitAttributeWins(t *testing.T) {
	r := slog.NewRecord(time.Now(), slog.LevelWarn, "translation failed", 0)
	r.AddAttrs(slog.String("source", model.EventSourceMedia))
	if got := eventSource(r); got != model.EventSourceMedia {
		t.Errorf("eventSource = %q, want %q", got, model.EventSourceMedia)
	}
}

func TestEventSource_InferredFromMessage(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"login attempt rejected", model.EventSourceAuth},
		{"locale translation failed", model.EventSourceTranslation},
		{"scheduled post publish failed", model.EventSourcePost},
		{"upload rejected", model.EventSourceMedia},
		{"something odd happened", model.EventSourceSystem},
	}

	for _, tt := range tests {
		r := slog.NewRecord(time.Now(), slog.LevelWarn, tt.message, 0)
		if got := eventSource(r); got != tt.want {
			t.Errorf("eventSource(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestEventLevel(t *testing.T) {
	if got := eventLevel(slog.LevelError); got != model.EventLevelError {
		t.Errorf("eventLevel(error) = %q", got)
	}
	if got := eventLevel(slog.LevelWarn); got != model.EventLevelWarning {
		t.Errorf("eventLevel(warn) = %q", got)
	}
	if got := eventLevel(slog.LevelInfo); got != model.EventLevelInfo {
		t.Errorf("eventLevel(info) = %q", got)
	}
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
