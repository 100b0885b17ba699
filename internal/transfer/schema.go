// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer provides JSON import/export of back-office content and a
// one-shot importer for legacy databases.
package transfer

import (
	"time"

	"github.com/olegiv/notary-go/internal/locale"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportData is the complete export structure.
type ExportData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Site        ExportSite         `json:"site"`
	Languages   []ExportLanguage   `json:"languages,omitempty"`
	Users       []ExportUser       `json:"users,omitempty"`
	Posts       []ExportPost       `json:"posts,omitempty"`
	Notaries    []ExportNotary     `json:"notaries,omitempty"`
	Services    []ExportService    `json:"services,omitempty"`
	Clients     []ExportClient     `json:"clients,omitempty"`
	Submissions []ExportSubmission `json:"submissions,omitempty"`
	Payments    []ExportPayment    `json:"payments,omitempty"`
	Messages    []ExportMessage    `json:"messages,omitempty"`
}

// ExportSite contains basic site information.
type ExportSite struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	BaseLocale string `json:"base_locale,omitempty"`
}

// ExportLanguage is a language configuration row.
type ExportLanguage struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"native_name"`
	IsActive     bool   `json:"is_active"`
	IsDefault    bool   `json:"is_default"`
	DisplayOrder int64  `json:"display_order"`
}

// ExportUser is a user account for export. Password hashes are never exported;
// imported users receive a random unusable password and must be reset.
type ExportUser struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportPost carries a blog post as its full per-locale document.
type ExportPost struct {
	ID      int64                     `json:"id"`
	Common  locale.Common             `json:"common"`
	Bundles map[string]*locale.Bundle `json:"content"`
}

// ExportNotary is a notary profile.
type ExportNotary struct {
	Name         string   `json:"name"`
	Title        string   `json:"title,omitempty"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone,omitempty"`
	Photo        string   `json:"photo,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	IsActive     bool     `json:"is_active"`
	DisplayOrder int64    `json:"display_order"`
}

// ExportService is a service with its price options.
type ExportService struct {
	Slug            string                `json:"slug"`
	Name            string                `json:"name"`
	Description     string                `json:"description,omitempty"`
	Icon            string                `json:"icon,omitempty"`
	BasePriceCents  int64                 `json:"base_price_cents"`
	DurationMinutes int64                 `json:"duration_minutes"`
	IsActive        bool                  `json:"is_active"`
	DisplayOrder    int64                 `json:"display_order"`
	Options         []ExportServiceOption `json:"options,omitempty"`
}

// ExportServiceOption is one price option of a service.
type ExportServiceOption struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	IsDefault    bool   `json:"is_default"`
	DisplayOrder int64  `json:"display_order"`
}

// ExportClient is a client record.
type ExportClient struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportSubmission references its related entities by natural key so an
// import into a fresh database can re-link them. ID is the source row ID,
// kept so payments can point back at their submission.
type ExportSubmission struct {
	ID          int64      `json:"id"`
	ClientEmail string     `json:"client_email"`
	ServiceSlug string     `json:"service_slug"`
	OptionName  string     `json:"option_name,omitempty"`
	NotaryEmail string     `json:"notary_email,omitempty"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
	Location    string     `json:"location,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ExportPayment references its client by email and its submission by the
// source submission ID.
type ExportPayment struct {
	SubmissionID *int64     `json:"submission_id,omitempty"`
	ClientEmail  string     `json:"client_email"`
	Provider     string     `json:"provider"`
	ProviderRef  string     `json:"provider_ref,omitempty"`
	AmountCents  int64      `json:"amount_cents"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ExportMessage is a contact form message.
type ExportMessage struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	IP         string    `json:"ip,omitempty"`
	Country    string    `json:"country,omitempty"`
	Browser    string    `json:"browser,omitempty"`
	OS         string    `json:"os,omitempty"`
	Device     string    `json:"device,omitempty"`
	IsRead     bool      `json:"is_read"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExportOptions configures what an export includes.
type ExportOptions struct {
	IncludeLanguages   bool   `json:"include_languages"`
	IncludeUsers       bool   `json:"include_users"`
	IncludePosts       bool   `json:"include_posts"`
	IncludeNotaries    bool   `json:"include_notaries"`
	IncludeServices    bool   `json:"include_services"`
	IncludeClients     bool   `json:"include_clients"`
	IncludeSubmissions bool   `json:"include_submissions"`
	IncludePayments    bool   `json:"include_payments"`
	IncludeMessages    bool   `json:"include_messages"`
	PostStatus         string `json:"post_status"` // "all", "published" or "draft"
}

// DefaultExportOptions includes everything except messages, which carry
// visitor IP addresses and are excluded by default for privacy.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeLanguages:   true,
		IncludeUsers:       true,
		IncludePosts:       true,
		IncludeNotaries:    true,
		IncludeServices:    true,
		IncludeClients:     true,
		IncludeSubmissions: true,
		IncludePayments:    true,
		IncludeMessages:    false,
		PostStatus:         "all",
	}
}

// ImportOptions configures what an import applies.
type ImportOptions struct {
	ImportLanguages   bool
	ImportUsers       bool
	ImportPosts       bool
	ImportNotaries    bool
	ImportServices    bool
	ImportClients     bool
	ImportSubmissions bool
	ImportPayments    bool
	ImportMessages    bool

	// SkipExisting leaves rows whose natural key already exists untouched
	// instead of failing the import.
	SkipExisting bool

	// DryRun validates and counts without writing anything.
	DryRun bool
}

// DefaultImportOptions imports everything, skipping rows that already exist.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		ImportLanguages:   true,
		ImportUsers:       true,
		ImportPosts:       true,
		ImportNotaries:    true,
		ImportServices:    true,
		ImportClients:     true,
		ImportSubmissions: true,
		ImportPayments:    true,
		ImportMessages:    true,
		SkipExisting:      true,
	}
}

// ImportResult reports what an import did.
type ImportResult struct {
	DryRun   bool           `json:"dry_run"`
	Imported map[string]int `json:"imported"`
	Skipped  map[string]int `json:"skipped"`
	Errors   []ImportError  `json:"errors,omitempty"`
}

// ImportError describes one failed row.
type ImportError struct {
	Entity  string `json:"entity"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// NewImportResult creates an empty result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{
		DryRun:   dryRun,
		Imported: make(map[string]int),
		Skipped:  make(map[string]int),
	}
}

// AddError records a failed row.
func (r *ImportResult) AddError(entity, key, message string) {
	r.Errors = append(r.Errors, ImportError{Entity: entity, Key: key, Message: message})
}

// HasErrors reports whether any row failed.
func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// TotalImported returns the number of rows written across all entities.
func (r *ImportResult) TotalImported() int {
	total := 0
	for _, n := range r.Imported {
		total += n
	}
	return total
}
