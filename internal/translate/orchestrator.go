// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/notary-go/internal/form"
	"github.com/olegiv/notary-go/internal/locale"
)

// ErrInvalidJob is returned when a batch fails validation before any locale
// is attempted.
var ErrInvalidJob = errors.New("invalid translation job")

// Batch step statuses, in the order a single locale passes through them.
const (
	StatusStarting    = "starting"
	StatusTranslating = "translating"
	StatusSaving      = "saving"
	StatusSuccess     = "success"
	StatusError       = "error"
)

// Progress is emitted once per step. Current counts target locales starting
// at 1; Locale is empty only for the initial "starting" event.
type Progress struct {
	Current int            `json:"current"`
	Total   int            `json:"total"`
	Locale  string         `json:"locale,omitempty"`
	Status  string         `json:"status"`
	Bundle  *locale.Bundle `json:"translation,omitempty"`
}

// ProgressFunc receives progress events. It is invoked on the orchestrator's
// goroutine; the form store it mutates is mutex-guarded.
type ProgressFunc func(Progress)

// Job describes one translation batch for a single persisted post.
type Job struct {
	PostID        int64
	SourceLocale  string
	TargetLocales []string
	Fields        []string
	Source        *locale.Bundle
}

// Stats summarizes a finished batch.
type Stats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Result is the aggregate outcome of a batch. Errors is keyed by target
// locale; Bundles holds the merged bundle of every locale that succeeded.
type Result struct {
	Stats   Stats                     `json:"stats"`
	Errors  map[string]string         `json:"errors"`
	Bundles map[string]*locale.Bundle `json:"bundles"`
}

// Persister writes a set of storage columns for one post. Only the provided
// keys are written. *store.Queries satisfies this.
type Persister interface {
	UpdatePostColumns(ctx context.Context, id int64, cols map[string]any) error
}

// Orchestrator runs translation batches: strictly sequential per target
// locale, one request/persist cycle at a time, a single locale's failure
// never aborting the batch.
type Orchestrator struct {
	service   Service
	persister Persister
	reg       *locale.Registry
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(service Service, persister Persister, reg *locale.Registry, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		service:   service,
		persister: persister,
		reg:       reg,
		logger:    logger,
	}
}

// Run executes a batch against the given form store. Target locales are
// processed in order; each successful locale is merged into the store and
// persisted immediately so earlier results survive later failures. Run only
// returns an error for invalid jobs; per-locale failures are reported in the
// Result.
func (o *Orchestrator) Run(ctx context.Context, job Job, fs *form.Store, onProgress ProgressFunc) (*Result, error) {
	if err := o.validate(job); err != nil {
		return nil, err
	}
	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	// Restrict the source to the selected fields and drop the ones that are
	// empty: they are not sent and not counted as failures.
	subset := job.Source.Subset(job.Fields)
	fields := make(map[string]string)
	for _, f := range job.Fields {
		if f == locale.FieldFAQ {
			continue
		}
		if v, err := subset.Field(f); err == nil && v != "" {
			fields[f] = v
		}
	}
	var faq []locale.FAQEntry
	if containsField(job.Fields, locale.FieldFAQ) && len(subset.FAQ) > 0 {
		faq = subset.FAQ
	}
	if len(fields) == 0 && len(faq) == 0 {
		return nil, fmt.Errorf("%w: no non-empty source fields selected", ErrInvalidJob)
	}

	total := len(job.TargetLocales)
	result := &Result{
		Stats:   Stats{Total: total},
		Errors:  make(map[string]string),
		Bundles: make(map[string]*locale.Bundle),
	}

	onProgress(Progress{Current: 0, Total: total, Status: StatusStarting})

	for i, target := range job.TargetLocales {
		current := i + 1
		onProgress(Progress{Current: current, Total: total, Locale: target, Status: StatusTranslating})

		resp, err := o.service.Translate(ctx, Request{
			SourceLocale: job.SourceLocale,
			TargetLocale: target,
			Fields:       fields,
			FAQ:          faq,
		})
		if err != nil {
			o.logger.Warn("locale translation failed",
				"post_id", job.PostID, "target_locale", target, "error", err)
			result.Stats.Failed++
			result.Errors[target] = err.Error()
			onProgress(Progress{Current: current, Total: total, Locale: target, Status: StatusError})
			continue
		}

		onProgress(Progress{Current: current, Total: total, Locale: target, Status: StatusSaving})

		// Merge only what actually came back; absent fields keep their
		// current value in the store.
		merged := locale.NewBundle()
		for f, v := range resp.Fields {
			if locale.IsLocalizedField(f) && f != locale.FieldFAQ {
				_ = merged.SetField(f, v)
			}
		}
		merged.FAQ = resp.FAQ
		if err := fs.MergeBundle(target, merged); err != nil {
			result.Stats.Failed++
			result.Errors[target] = err.Error()
			onProgress(Progress{Current: current, Total: total, Locale: target, Status: StatusError})
			continue
		}

		if err := o.persistLocale(ctx, job.PostID, fs, target); err != nil {
			o.logger.Warn("locale persist failed",
				"post_id", job.PostID, "target_locale", target, "error", err)
			result.Stats.Failed++
			result.Errors[target] = err.Error()
			onProgress(Progress{Current: current, Total: total, Locale: target, Status: StatusError})
			continue
		}

		bundle, _ := fs.Bundle(target)
		result.Stats.Succeeded++
		result.Bundles[target] = bundle
		onProgress(Progress{Current: current, Total: total, Locale: target, Status: StatusSuccess, Bundle: bundle})
	}

	return result, nil
}

// persistLocale writes just the target locale's suffixed columns.
func (o *Orchestrator) persistLocale(ctx context.Context, postID int64, fs *form.Store, target string) error {
	doc := fs.Document()
	row, err := locale.FlattenLocale(doc, o.reg, target)
	if err != nil {
		return err
	}
	return o.persister.UpdatePostColumns(ctx, postID, row)
}

func (o *Orchestrator) validate(job Job) error {
	if job.PostID == 0 {
		return fmt.Errorf("%w: post must be saved before translating", ErrInvalidJob)
	}
	if job.Source == nil {
		return fmt.Errorf("%w: missing source bundle", ErrInvalidJob)
	}
	if !o.reg.Contains(job.SourceLocale) {
		return fmt.Errorf("%w: %v %q", ErrInvalidJob, locale.ErrUnknownLocale, job.SourceLocale)
	}
	if len(job.TargetLocales) == 0 {
		return fmt.Errorf("%w: no target locales", ErrInvalidJob)
	}
	for _, t := range job.TargetLocales {
		if !o.reg.Contains(t) {
			return fmt.Errorf("%w: %v %q", ErrInvalidJob, locale.ErrUnknownLocale, t)
		}
		if t == job.SourceLocale {
			return fmt.Errorf("%w: target locale %q equals source", ErrInvalidJob, t)
		}
	}
	if len(job.Fields) == 0 {
		return fmt.Errorf("%w: no fields selected", ErrInvalidJob)
	}
	for _, f := range job.Fields {
		if !locale.IsLocalizedField(f) {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidJob, f)
		}
	}
	return nil
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
