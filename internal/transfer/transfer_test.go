package transfer

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportEmptyDatabase(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t)
	exporter := NewExporter(store.New(db), reg, discardLogger())

	data, err := exporter.Export(context.Background(), DefaultExportOptions())
	require.NoError(t, err)

	assert.Equal(t, ExportVersion, data.Version)
	assert.False(t, data.ExportedAt.IsZero())
	assert.Equal(t, "en", data.Site.BaseLocale)
	assert.Empty(t, data.Posts)
	assert.Empty(t, data.Clients)
}

func TestExportToWriterProducesValidJSON(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t)
	exporter := NewExporter(store.New(db), reg, discardLogger())

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportToWriter(context.Background(), DefaultExportOptions(), &buf))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, ExportVersion, data.Version)
}

func seedCRM(t *testing.T, queries *store.Queries) (clientID, serviceID, notaryID int64) {
	t.Helper()
	ctx := context.Background()

	var err error
	clientID, err = queries.CreateClient(ctx, store.ClientParams{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie@example.com",
		Timezone:  "Europe/Paris",
	})
	require.NoError(t, err)

	serviceID, err = queries.CreateService(ctx, store.ServiceParams{
		Slug:            "apostille",
		Name:            "Apostille",
		BasePriceCents:  4500,
		DurationMinutes: 30,
		IsActive:        true,
	})
	require.NoError(t, err)

	notaryID, err = queries.CreateNotary(ctx, store.NotaryParams{
		Name:      "Jean Martin",
		Email:     "jean@example.com",
		Languages: []string{"fr", "en"},
		IsActive:  true,
	})
	require.NoError(t, err)

	return clientID, serviceID, notaryID
}

func TestExportResolvesSubmissionReferences(t *testing.T) {
	db := testutil.TestDB(t)
	reg := testutil.TestRegistry(t)
	queries := store.New(db)
	ctx := context.Background()

	clientID, serviceID, notaryID := seedCRM(t, queries)

	scheduled := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	_, err := queries.CreateSubmission(ctx, store.SubmissionParams{
		ClientID:    clientID,
		ServiceID:   serviceID,
		NotaryID:    sql.NullInt64{Int64: notaryID, Valid: true},
		Status:      "confirmed",
		ScheduledAt: sql.NullTime{Time: scheduled, Valid: true},
		Timezone:    "Europe/Paris",
	})
	require.NoError(t, err)

	exporter := NewExporter(queries, reg, discardLogger())
	data, err := exporter.Export(ctx, DefaultExportOptions())
	require.NoError(t, err)

	require.Len(t, data.Submissions, 1)
	sub := data.Submissions[0]
	assert.Equal(t, "marie@example.com", sub.ClientEmail)
	assert.Equal(t, "apostille", sub.ServiceSlug)
	assert.Equal(t, "jean@example.com", sub.NotaryEmail)
	require.NotNil(t, sub.ScheduledAt)
	assert.True(t, sub.ScheduledAt.Equal(scheduled))
}

func TestImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := testutil.TestRegistry(t)

	// Source database with one of everything.
	srcDB := testutil.TestDB(t)
	srcQueries := store.New(srcDB)
	clientID, serviceID, _ := seedCRM(t, srcQueries)

	subID, err := srcQueries.CreateSubmission(ctx, store.SubmissionParams{
		ClientID:  clientID,
		ServiceID: serviceID,
		Status:    "pending",
		Timezone:  "UTC",
	})
	require.NoError(t, err)

	_, err = srcQueries.CreatePayment(ctx, store.PaymentParams{
		SubmissionID: sql.NullInt64{Int64: subID, Valid: true},
		ClientID:     clientID,
		Provider:     "stripe",
		AmountCents:  4500,
		Currency:     "EUR",
		Status:       "paid",
		PaidAt:       sql.NullTime{Time: time.Now().UTC(), Valid: true},
	})
	require.NoError(t, err)

	exporter := NewExporter(srcQueries, reg, discardLogger())
	data, err := exporter.Export(ctx, DefaultExportOptions())
	require.NoError(t, err)

	// Fresh destination database.
	dstDB := testutil.TestDB(t)
	dstQueries := store.New(dstDB)
	importer := NewImporter(dstQueries, dstDB, reg, "https://example.com", discardLogger())

	result, err := importer.Import(ctx, data, DefaultImportOptions())
	require.NoError(t, err)
	assert.False(t, result.HasErrors(), "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Imported["clients"])
	assert.Equal(t, 1, result.Imported["services"])
	assert.Equal(t, 1, result.Imported["notaries"])
	assert.Equal(t, 1, result.Imported["submissions"])
	assert.Equal(t, 1, result.Imported["payments"])

	// The payment must be re-linked to the new submission row.
	payments, err := dstQueries.ListPayments(ctx, store.ListPaymentsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.True(t, payments[0].SubmissionID.Valid)

	subs, err := dstQueries.ListSubmissions(ctx, store.ListSubmissionsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, subs[0].ID, payments[0].SubmissionID.Int64)
}

func TestImportSkipsExistingRows(t *testing.T) {
	ctx := context.Background()
	reg := testutil.TestRegistry(t)
	db := testutil.TestDB(t)
	queries := store.New(db)
	seedCRM(t, queries)

	data := &ExportData{
		Version: ExportVersion,
		Clients: []ExportClient{{FirstName: "Marie", LastName: "Dupont", Email: "marie@example.com"}},
	}

	importer := NewImporter(queries, db, reg, "https://example.com", discardLogger())
	result, err := importer.Import(ctx, data, DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported["clients"])
	assert.Equal(t, 1, result.Skipped["clients"])
}

func TestImportRejectsUnsupportedVersion(t *testing.T) {
	reg := testutil.TestRegistry(t)
	db := testutil.TestDB(t)
	importer := NewImporter(store.New(db), db, reg, "https://example.com", discardLogger())

	data := &ExportData{Version: "99.0"}
	result, err := importer.Import(context.Background(), data, DefaultImportOptions())
	require.ErrorIs(t, err, ErrValidation)
	assert.True(t, result.HasErrors())
}

func TestImportDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	reg := testutil.TestRegistry(t)
	db := testutil.TestDB(t)
	queries := store.New(db)
	importer := NewImporter(queries, db, reg, "https://example.com", discardLogger())

	data := &ExportData{
		Version: ExportVersion,
		Clients: []ExportClient{{FirstName: "Ana", LastName: "Silva", Email: "ana@example.com"}},
	}

	opts := DefaultImportOptions()
	opts.DryRun = true
	result, err := importer.Import(ctx, data, opts)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Imported["clients"])

	count, err := queries.CountClients(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportPostDocument(t *testing.T) {
	ctx := context.Background()
	reg := testutil.TestRegistry(t)
	db := testutil.TestDB(t)
	queries := store.New(db)
	importer := NewImporter(queries, db, reg, "https://example.com", discardLogger())

	var post ExportPost
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 42,
		"common": {"slug": "power-of-attorney", "status": "published", "content_format": "html", "tags": ["legal"]},
		"content": {
			"en": {"title": "Power of Attorney", "content": "<p>Guide</p>", "faq": []},
			"fr": {"title": "Procuration", "content": "<p>Guide</p>", "faq": []}
		}
	}`), &post))

	data := &ExportData{Version: ExportVersion, Posts: []ExportPost{post}}
	result, err := importer.Import(ctx, data, DefaultImportOptions())
	require.NoError(t, err)
	assert.False(t, result.HasErrors(), "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Imported["posts"])

	exists, err := queries.PostSlugExists(ctx, "power-of-attorney", 0)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLegacyDriverSelection(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
	}{
		{"postgres://user:pw@localhost/legacy", "pgx"},
		{"postgresql://user:pw@localhost/legacy", "pgx"},
		{"user:pw@tcp(localhost:3306)/legacy", "mysql"},
		{"legacy.sock", "mysql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.driver, legacyDriver(tt.dsn), "dsn %q", tt.dsn)
	}
}
