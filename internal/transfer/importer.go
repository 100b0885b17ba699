// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olegiv/notary-go/internal/auth"
	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
)

// ErrValidation is returned when the import payload fails validation.
var ErrValidation = errors.New("import validation failed")

// Importer applies a JSON export to the database.
type Importer struct {
	store   *store.Queries
	db      *sql.DB
	reg     *locale.Registry
	baseURL string
	logger  *slog.Logger
}

// NewImporter creates an importer. baseURL is used to rebuild canonical URLs
// for imported posts.
func NewImporter(queries *store.Queries, db *sql.DB, reg *locale.Registry, baseURL string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: queries, db: db, reg: reg, baseURL: baseURL, logger: logger}
}

// Import applies the export data inside a single transaction and rolls back
// on any fatal error. Row-level failures are recorded in the result and do
// not abort the import.
func (i *Importer) Import(ctx context.Context, data *ExportData, opts ImportOptions) (*ImportResult, error) {
	result := NewImportResult(opts.DryRun)

	if errs := i.Validate(data); len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result, ErrValidation
	}

	if opts.DryRun {
		i.countEntities(data, opts, result)
		return result, nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := i.store.WithTx(tx)

	// Dependency order: languages and users stand alone, CRM reference data
	// (clients, notaries, services) precedes submissions, payments reference
	// submissions, messages stand alone.
	if opts.ImportLanguages {
		i.importLanguages(ctx, queries, data.Languages, opts, result)
	}
	if opts.ImportUsers {
		i.importUsers(ctx, queries, data.Users, opts, result)
	}
	if opts.ImportPosts {
		i.importPosts(ctx, queries, data.Posts, opts, result)
	}
	if opts.ImportClients {
		i.importClients(ctx, queries, data.Clients, opts, result)
	}
	if opts.ImportNotaries {
		i.importNotaries(ctx, queries, data.Notaries, opts, result)
	}
	if opts.ImportServices {
		i.importServices(ctx, queries, data.Services, opts, result)
	}

	var submissionIDs map[int64]int64
	if opts.ImportSubmissions {
		submissionIDs = i.importSubmissions(ctx, queries, data.Submissions, opts, result)
	}
	if opts.ImportPayments {
		i.importPayments(ctx, queries, data.Payments, submissionIDs, result)
	}
	if opts.ImportMessages {
		i.importMessages(ctx, queries, data.Messages, result)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	i.logger.Info("import completed", "source", "transfer",
		"imported", result.TotalImported(), "errors", len(result.Errors))
	return result, nil
}

// ImportFromReader parses JSON from r and imports it.
func (i *Importer) ImportFromReader(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing export JSON: %w", err)
	}
	return i.Import(ctx, &data, opts)
}

// ImportFromFile reads an export file and imports it.
func (i *Importer) ImportFromFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return i.ImportFromReader(ctx, f, opts)
}

// Validate checks structural requirements before anything is written.
func (i *Importer) Validate(data *ExportData) []ImportError {
	var errs []ImportError
	if data.Version == "" {
		errs = append(errs, ImportError{Entity: "export", Message: "missing version"})
	} else if data.Version != ExportVersion {
		errs = append(errs, ImportError{Entity: "export",
			Message: fmt.Sprintf("unsupported version %q", data.Version)})
	}
	for _, l := range data.Languages {
		if l.Code == "" {
			errs = append(errs, ImportError{Entity: "language", Message: "missing code"})
		}
	}
	for _, u := range data.Users {
		if u.Email == "" {
			errs = append(errs, ImportError{Entity: "user", Message: "missing email"})
		}
		if u.Role != "" && !model.IsValidRole(u.Role) {
			errs = append(errs, ImportError{Entity: "user", Key: u.Email,
				Message: fmt.Sprintf("invalid role %q", u.Role)})
		}
	}
	for _, p := range data.Posts {
		if p.Common.Slug == "" {
			errs = append(errs, ImportError{Entity: "post",
				Key: strconv.FormatInt(p.ID, 10), Message: "missing slug"})
		}
	}
	for _, c := range data.Clients {
		if c.Email == "" {
			errs = append(errs, ImportError{Entity: "client", Message: "missing email"})
		}
	}
	for _, s := range data.Services {
		if s.Slug == "" {
			errs = append(errs, ImportError{Entity: "service", Key: s.Name, Message: "missing slug"})
		}
	}
	return errs
}

func (i *Importer) countEntities(data *ExportData, opts ImportOptions, result *ImportResult) {
	if opts.ImportLanguages {
		result.Imported["languages"] = len(data.Languages)
	}
	if opts.ImportUsers {
		result.Imported["users"] = len(data.Users)
	}
	if opts.ImportPosts {
		result.Imported["posts"] = len(data.Posts)
	}
	if opts.ImportNotaries {
		result.Imported["notaries"] = len(data.Notaries)
	}
	if opts.ImportServices {
		result.Imported["services"] = len(data.Services)
	}
	if opts.ImportClients {
		result.Imported["clients"] = len(data.Clients)
	}
	if opts.ImportSubmissions {
		result.Imported["submissions"] = len(data.Submissions)
	}
	if opts.ImportPayments {
		result.Imported["payments"] = len(data.Payments)
	}
	if opts.ImportMessages {
		result.Imported["messages"] = len(data.Messages)
	}
}

func (i *Importer) importLanguages(ctx context.Context, queries *store.Queries, languages []ExportLanguage, opts ImportOptions, result *ImportResult) {
	for _, l := range languages {
		if _, err := queries.GetLanguageByCode(ctx, l.Code); err == nil {
			if opts.SkipExisting {
				result.Skipped["languages"]++
				continue
			}
			result.AddError("language", l.Code, "already exists")
			continue
		}
		_, err := queries.CreateLanguage(ctx, store.CreateLanguageParams{
			Code:         l.Code,
			Name:         l.Name,
			NativeName:   l.NativeName,
			IsActive:     l.IsActive,
			IsDefault:    l.IsDefault,
			DisplayOrder: l.DisplayOrder,
		})
		if err != nil {
			result.AddError("language", l.Code, err.Error())
			continue
		}
		result.Imported["languages"]++
	}
}

// importUsers creates accounts with a random password. Exports never carry
// password hashes, so imported users must go through a password reset.
func (i *Importer) importUsers(ctx context.Context, queries *store.Queries, users []ExportUser, opts ImportOptions, result *ImportResult) {
	for _, u := range users {
		if _, err := queries.GetUserByEmail(ctx, u.Email); err == nil {
			if opts.SkipExisting {
				result.Skipped["users"]++
				continue
			}
			result.AddError("user", u.Email, "already exists")
			continue
		}

		hash, err := auth.HashPassword(randomPassword())
		if err != nil {
			result.AddError("user", u.Email, err.Error())
			continue
		}
		role := u.Role
		if role == "" {
			role = model.RoleEditor
		}
		if _, err := queries.CreateUser(ctx, store.CreateUserParams{
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: hash,
			Role:         role,
		}); err != nil {
			result.AddError("user", u.Email, err.Error())
			continue
		}
		result.Imported["users"]++
	}
}

func (i *Importer) importPosts(ctx context.Context, queries *store.Queries, posts []ExportPost, opts ImportOptions, result *ImportResult) {
	for _, p := range posts {
		exists, err := queries.PostSlugExists(ctx, p.Common.Slug, 0)
		if err != nil {
			result.AddError("post", p.Common.Slug, err.Error())
			continue
		}
		if exists {
			if opts.SkipExisting {
				result.Skipped["posts"]++
				continue
			}
			result.AddError("post", p.Common.Slug, "slug already exists")
			continue
		}

		doc := &locale.Document{Common: p.Common, Bundles: p.Bundles}
		row, err := locale.Flatten(doc, i.reg, i.baseURL)
		if err != nil {
			result.AddError("post", p.Common.Slug, err.Error())
			continue
		}
		if _, err := queries.CreatePost(ctx, row); err != nil {
			result.AddError("post", p.Common.Slug, err.Error())
			continue
		}
		result.Imported["posts"]++
	}
}

func (i *Importer) importClients(ctx context.Context, queries *store.Queries, clients []ExportClient, opts ImportOptions, result *ImportResult) {
	existing, err := clientIDByEmail(ctx, queries)
	if err != nil {
		result.AddError("client", "", err.Error())
		return
	}
	for _, c := range clients {
		if _, ok := existing[c.Email]; ok {
			if opts.SkipExisting {
				result.Skipped["clients"]++
				continue
			}
			result.AddError("client", c.Email, "already exists")
			continue
		}
		timezone := c.Timezone
		if timezone == "" {
			timezone = "UTC"
		}
		id, err := queries.CreateClient(ctx, store.ClientParams{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Address:   c.Address,
			Timezone:  timezone,
			Notes:     c.Notes,
		})
		if err != nil {
			result.AddError("client", c.Email, err.Error())
			continue
		}
		existing[c.Email] = id
		result.Imported["clients"]++
	}
}

func (i *Importer) importNotaries(ctx context.Context, queries *store.Queries, notaries []ExportNotary, opts ImportOptions, result *ImportResult) {
	existing, err := notaryIDByEmail(ctx, queries)
	if err != nil {
		result.AddError("notary", "", err.Error())
		return
	}
	for _, n := range notaries {
		if _, ok := existing[n.Email]; ok {
			if opts.SkipExisting {
				result.Skipped["notaries"]++
				continue
			}
			result.AddError("notary", n.Email, "already exists")
			continue
		}
		languages := n.Languages
		if languages == nil {
			languages = []string{}
		}
		id, err := queries.CreateNotary(ctx, store.NotaryParams{
			Name:         n.Name,
			Title:        n.Title,
			Email:        n.Email,
			Phone:        n.Phone,
			Photo:        n.Photo,
			Bio:          n.Bio,
			Languages:    languages,
			IsActive:     n.IsActive,
			DisplayOrder: n.DisplayOrder,
		})
		if err != nil {
			result.AddError("notary", n.Email, err.Error())
			continue
		}
		existing[n.Email] = id
		result.Imported["notaries"]++
	}
}

func (i *Importer) importServices(ctx context.Context, queries *store.Queries, services []ExportService, opts ImportOptions, result *ImportResult) {
	existing, err := serviceIDBySlug(ctx, queries)
	if err != nil {
		result.AddError("service", "", err.Error())
		return
	}
	for _, s := range services {
		if _, ok := existing[s.Slug]; ok {
			if opts.SkipExisting {
				result.Skipped["services"]++
				continue
			}
			result.AddError("service", s.Slug, "already exists")
			continue
		}
		id, err := queries.CreateService(ctx, store.ServiceParams{
			Slug:            s.Slug,
			Name:            s.Name,
			Description:     s.Description,
			Icon:            s.Icon,
			BasePriceCents:  s.BasePriceCents,
			DurationMinutes: s.DurationMinutes,
			IsActive:        s.IsActive,
			DisplayOrder:    s.DisplayOrder,
		})
		if err != nil {
			result.AddError("service", s.Slug, err.Error())
			continue
		}
		existing[s.Slug] = id

		for _, o := range s.Options {
			if _, err := queries.CreateServiceOption(ctx, store.ServiceOptionParams{
				ServiceID:    id,
				Name:         o.Name,
				Description:  o.Description,
				PriceCents:   o.PriceCents,
				IsDefault:    o.IsDefault,
				DisplayOrder: o.DisplayOrder,
			}); err != nil {
				result.AddError("service_option", s.Slug+"/"+o.Name, err.Error())
			}
		}
		result.Imported["services"]++
	}
}

// importSubmissions resolves natural keys back to row IDs and returns a map
// from source submission ID to the new row ID for payment linking.
func (i *Importer) importSubmissions(ctx context.Context, queries *store.Queries, submissions []ExportSubmission, opts ImportOptions, result *ImportResult) map[int64]int64 {
	idMap := make(map[int64]int64, len(submissions))
	if len(submissions) == 0 {
		return idMap
	}

	clients, err := clientIDByEmail(ctx, queries)
	if err != nil {
		result.AddError("submission", "", err.Error())
		return idMap
	}
	serviceIDs, optionIDs, err := serviceAndOptionIDs(ctx, queries)
	if err != nil {
		result.AddError("submission", "", err.Error())
		return idMap
	}
	notaries, err := notaryIDByEmail(ctx, queries)
	if err != nil {
		result.AddError("submission", "", err.Error())
		return idMap
	}

	for _, s := range submissions {
		key := strconv.FormatInt(s.ID, 10)

		clientID, ok := clients[s.ClientEmail]
		if !ok {
			result.AddError("submission", key, fmt.Sprintf("unknown client %q", s.ClientEmail))
			continue
		}
		serviceID, ok := serviceIDs[s.ServiceSlug]
		if !ok {
			result.AddError("submission", key, fmt.Sprintf("unknown service %q", s.ServiceSlug))
			continue
		}

		params := store.SubmissionParams{
			ClientID:  clientID,
			ServiceID: serviceID,
			Status:    s.Status,
			Timezone:  s.Timezone,
			Location:  s.Location,
			Notes:     s.Notes,
		}
		if s.OptionName != "" {
			if optionID, ok := optionIDs[s.ServiceSlug+"/"+s.OptionName]; ok {
				params.ServiceOptionID = sql.NullInt64{Int64: optionID, Valid: true}
			}
		}
		if s.NotaryEmail != "" {
			if notaryID, ok := notaries[s.NotaryEmail]; ok {
				params.NotaryID = sql.NullInt64{Int64: notaryID, Valid: true}
			}
		}
		if s.ScheduledAt != nil {
			params.ScheduledAt = sql.NullTime{Time: s.ScheduledAt.UTC(), Valid: true}
		}
		if params.Timezone == "" {
			params.Timezone = "UTC"
		}
		if params.Status == "" {
			params.Status = model.SubmissionStatusPending
		}

		newID, err := queries.CreateSubmission(ctx, params)
		if err != nil {
			result.AddError("submission", key, err.Error())
			continue
		}
		idMap[s.ID] = newID
		result.Imported["submissions"]++
	}
	return idMap
}

func (i *Importer) importPayments(ctx context.Context, queries *store.Queries, payments []ExportPayment, submissionIDs map[int64]int64, result *ImportResult) {
	if len(payments) == 0 {
		return
	}
	clients, err := clientIDByEmail(ctx, queries)
	if err != nil {
		result.AddError("payment", "", err.Error())
		return
	}

	for idx, p := range payments {
		key := strconv.Itoa(idx)

		clientID, ok := clients[p.ClientEmail]
		if !ok {
			result.AddError("payment", key, fmt.Sprintf("unknown client %q", p.ClientEmail))
			continue
		}
		params := store.PaymentParams{
			ClientID:    clientID,
			Provider:    p.Provider,
			ProviderRef: p.ProviderRef,
			AmountCents: p.AmountCents,
			Currency:    p.Currency,
			Status:      p.Status,
		}
		if p.SubmissionID != nil {
			if newID, ok := submissionIDs[*p.SubmissionID]; ok {
				params.SubmissionID = sql.NullInt64{Int64: newID, Valid: true}
			}
		}
		if p.PaidAt != nil {
			params.PaidAt = sql.NullTime{Time: p.PaidAt.UTC(), Valid: true}
		}

		if _, err := queries.CreatePayment(ctx, params); err != nil {
			result.AddError("payment", key, err.Error())
			continue
		}
		result.Imported["payments"]++
	}
}

func (i *Importer) importMessages(ctx context.Context, queries *store.Queries, messages []ExportMessage, result *ImportResult) {
	for idx, m := range messages {
		key := strconv.Itoa(idx)

		id, err := queries.CreateMessage(ctx, store.CreateMessageParams{
			Name:    m.Name,
			Email:   m.Email,
			Phone:   m.Phone,
			Subject: m.Subject,
			Body:    m.Body,
			IP:      m.IP,
			Country: m.Country,
			Browser: m.Browser,
			OS:      m.OS,
			Device:  m.Device,
		})
		if err != nil {
			result.AddError("message", key, err.Error())
			continue
		}
		if m.IsRead {
			if err := queries.MarkMessageRead(ctx, id, true); err != nil {
				result.AddError("message", key, err.Error())
			}
		}
		if m.IsArchived {
			if err := queries.ArchiveMessage(ctx, id, true); err != nil {
				result.AddError("message", key, err.Error())
			}
		}
		result.Imported["messages"]++
	}
}

func clientIDByEmail(ctx context.Context, queries *store.Queries) (map[string]int64, error) {
	clients, err := queries.ListClients(ctx, store.ListClientsParams{Limit: exportBatchSize})
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(clients))
	for _, c := range clients {
		m[c.Email] = c.ID
	}
	return m, nil
}

func notaryIDByEmail(ctx context.Context, queries *store.Queries) (map[string]int64, error) {
	notaries, err := queries.ListNotaries(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(notaries))
	for _, n := range notaries {
		m[n.Email] = n.ID
	}
	return m, nil
}

func serviceIDBySlug(ctx context.Context, queries *store.Queries) (map[string]int64, error) {
	services, err := queries.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int64, len(services))
	for _, s := range services {
		m[s.Slug] = s.ID
	}
	return m, nil
}

// serviceAndOptionIDs maps service slug to ID and "slug/option name" to
// option ID.
func serviceAndOptionIDs(ctx context.Context, queries *store.Queries) (map[string]int64, map[string]int64, error) {
	services, err := queries.ListServices(ctx)
	if err != nil {
		return nil, nil, err
	}
	serviceIDs := make(map[string]int64, len(services))
	optionIDs := make(map[string]int64)
	for _, s := range services {
		serviceIDs[s.Slug] = s.ID
		options, err := queries.ListServiceOptions(ctx, s.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, o := range options {
			optionIDs[s.Slug+"/"+o.Name] = o.ID
		}
	}
	return serviceIDs, optionIDs, nil
}

func randomPassword() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
