package translate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/notary-go/internal/form"
	"github.com/olegiv/notary-go/internal/locale"
)

// fakeService translates by prefixing values with the target locale and can
// be told to fail specific locales.
type fakeService struct {
	failLocales map[string]bool
	requests    []Request
}

func (f *fakeService) Translate(_ context.Context, req Request) (*Response, error) {
	f.requests = append(f.requests, req)
	if f.failLocales[req.TargetLocale] {
		return nil, errors.New("upstream unavailable")
	}
	out := make(map[string]string, len(req.Fields))
	for k, v := range req.Fields {
		out[k] = "[" + req.TargetLocale + "] " + v
	}
	resp := &Response{Fields: out}
	for _, e := range req.FAQ {
		resp.FAQ = append(resp.FAQ, locale.FAQEntry{
			Question: "[" + req.TargetLocale + "] " + e.Question,
			Answer:   "[" + req.TargetLocale + "] " + e.Answer,
		})
	}
	return resp, nil
}

// fakePersister records every column write.
type fakePersister struct {
	writes []map[string]any
	err    error
}

func (f *fakePersister) UpdatePostColumns(_ context.Context, _ int64, cols map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, cols)
	return nil
}

func testSetup(t *testing.T) (*locale.Registry, *form.Store) {
	t.Helper()
	reg, err := locale.NewRegistry([]string{"en", "fr", "es", "de"}, "en")
	require.NoError(t, err)
	return reg, form.New(reg)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sourceBundle() *locale.Bundle {
	return &locale.Bundle{
		Title:   "Notary Guide",
		Content: "<p>Body</p>",
		FAQ:     []locale.FAQEntry{{Question: "Q1", Answer: "A1"}},
	}
}

func TestRun_TranslatesAllTargets(t *testing.T) {
	reg, fs := testSetup(t)
	svc := &fakeService{}
	persister := &fakePersister{}
	o := NewOrchestrator(svc, persister, reg, discard())

	result, err := o.Run(context.Background(), Job{
		PostID:        1,
		SourceLocale:  "en",
		TargetLocales: []string{"fr", "es"},
		Fields:        []string{locale.FieldTitle, locale.FieldContent, locale.FieldFAQ},
		Source:        sourceBundle(),
	}, fs, nil)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 2, Succeeded: 2, Failed: 0}, result.Stats)
	assert.Empty(t, result.Errors)

	frTitle, err := fs.LocaleField("fr", locale.FieldTitle)
	require.NoError(t, err)
	assert.Equal(t, "[fr] Notary Guide", frTitle)

	frBundle, err := fs.Bundle("fr")
	require.NoError(t, err)
	require.Len(t, frBundle.FAQ, 1)
	assert.Equal(t, "[fr] Q1", frBundle.FAQ[0].Question)

	// One persist per locale, scoped to that locale's columns.
	require.Len(t, persister.writes, 2)
	_, hasFr := persister.writes[0]["title_fr"]
	assert.True(t, hasFr)
	_, hasBase := persister.writes[0]["title"]
	assert.False(t, hasBase, "base locale columns must not be touched")
}

func TestRun_OneFailureDoesNotAbortBatch(t *testing.T) {
	reg, fs := testSetup(t)
	svc := &fakeService{failLocales: map[string]bool{"es": true}}
	persister := &fakePersister{}
	o := NewOrchestrator(svc, persister, reg, discard())

	result, err := o.Run(context.Background(), Job{
		PostID:        1,
		SourceLocale:  "en",
		TargetLocales: []string{"fr", "es", "de"},
		Fields:        []string{locale.FieldTitle},
		Source:        sourceBundle(),
	}, fs, nil)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 3, Succeeded: 2, Failed: 1}, result.Stats)
	assert.Contains(t, result.Errors, "es")

	deTitle, err := fs.LocaleField("de", locale.FieldTitle)
	require.NoError(t, err)
	assert.Equal(t, "[de] Notary Guide", deTitle, "locale after the failure must still run")

	esTitle, err := fs.LocaleField("es", locale.FieldTitle)
	require.NoError(t, err)
	assert.Empty(t, esTitle)
}

func TestRun_SkipsEmptySourceFields(t *testing.T) {
	reg, fs := testSetup(t)
	svc := &fakeService{}
	o := NewOrchestrator(svc, &fakePersister{}, reg, discard())

	src := &locale.Bundle{Title: "Only Title", FAQ: []locale.FAQEntry{}}
	_, err := o.Run(context.Background(), Job{
		PostID:        1,
		SourceLocale:  "en",
		TargetLocales: []string{"fr"},
		Fields:        []string{locale.FieldTitle, locale.FieldExcerpt, locale.FieldFAQ},
		Source:        src,
	}, fs, nil)
	require.NoError(t, err)

	require.Len(t, svc.requests, 1)
	assert.Equal(t, map[string]string{locale.FieldTitle: "Only Title"}, svc.requests[0].Fields)
	assert.Empty(t, svc.requests[0].FAQ)
}

func TestRun_AllSourceFieldsEmptyIsInvalid(t *testing.T) {
	reg, fs := testSetup(t)
	o := NewOrchestrator(&fakeService{}, &fakePersister{}, reg, discard())

	_, err := o.Run(context.Background(), Job{
		PostID:        1,
		SourceLocale:  "en",
		TargetLocales: []string{"fr"},
		Fields:        []string{locale.FieldExcerpt},
		Source:        locale.NewBundle(),
	}, fs, nil)
	assert.ErrorIs(t, err, ErrInvalidJob)
}

func TestRun_ValidatesJob(t *testing.T) {
	reg, fs := testSetup(t)
	o := NewOrchestrator(&fakeService{}, &fakePersister{}, reg, discard())
	ctx := context.Background()

	tests := []struct {
		name string
		job  Job
	}{
		{"unsaved post", Job{SourceLocale: "en", TargetLocales: []string{"fr"},
			Fields: []string{locale.FieldTitle}, Source: sourceBundle()}},
		{"missing source bundle", Job{PostID: 1, SourceLocale: "en",
			TargetLocales: []string{"fr"}, Fields: []string{locale.FieldTitle}}},
		{"unknown source locale", Job{PostID: 1, SourceLocale: "xx",
			TargetLocales: []string{"fr"}, Fields: []string{locale.FieldTitle}, Source: sourceBundle()}},
		{"no targets", Job{PostID: 1, SourceLocale: "en",
			Fields: []string{locale.FieldTitle}, Source: sourceBundle()}},
		{"target equals source", Job{PostID: 1, SourceLocale: "en",
			TargetLocales: []string{"en"}, Fields: []string{locale.FieldTitle}, Source: sourceBundle()}},
		{"unknown field", Job{PostID: 1, SourceLocale: "en",
			TargetLocales: []string{"fr"}, Fields: []string{"slug"}, Source: sourceBundle()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Run(ctx, tt.job, fs, nil)
			assert.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}

func TestRun_ProgressSequence(t *testing.T) {
	reg, fs := testSetup(t)
	svc := &fakeService{failLocales: map[string]bool{"es": true}}
	o := NewOrchestrator(svc, &fakePersister{}, reg, discard())

	var events []Progress
	_, err := o.Run(context.Background(), Job{
		PostID:        1,
		SourceLocale:  "en",
		TargetLocales: []string{"fr", "es"},
		Fields:        []string{locale.FieldTitle},
		Source:        sourceBundle(),
	}, fs, func(p Progress) { events = append(events, p) })
	require.NoError(t, err)

	var sequence []string
	for _, e := range events {
		sequence = append(sequence, e.Status)
	}
	assert.Equal(t, []string{
		StatusStarting,
		StatusTranslating, StatusSaving, StatusSuccess,
		StatusTranslating, StatusError,
	}, sequence)

	// Progress counters are 1-based per target locale.
	assert.Equal(t, 0, events[0].Current)
	assert.Equal(t, 1, events[1].Current)
	assert.Equal(t, 2, events[4].Current)
	assert.Equal(t, 2, events[4].Total)

	success := events[3]
	require.NotNil(t, success.Bundle)
	assert.Equal(t, "[fr] Notary Guide", success.Bundle.Title)
}

func TestRun_PersistFailureCountsAsLocaleFailure(t *testing.T) {
	reg, fs := testSetup(t)
	svc := &fakeService{}
	persister := &fakePersister{err: errors.New("disk full")}
	o := NewOrchestrator(svc, persister, reg, discard())

	result, err := o.Run(context.Background(), Job{
		PostID:        1,
		SourceLocale:  "en",
		TargetLocales: []string{"fr"},
		Fields:        []string{locale.FieldTitle},
		Source:        sourceBundle(),
	}, fs, nil)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 1, Succeeded: 0, Failed: 1}, result.Stats)
	assert.Contains(t, result.Errors["fr"], "disk full")
}
