// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/store"
)

// exportBatchSize caps how many rows a single listing query returns.
const exportBatchSize = 10000

// Exporter serializes back-office content to the JSON export format.
type Exporter struct {
	store  *store.Queries
	reg    *locale.Registry
	logger *slog.Logger

	siteName string
	siteURL  string
}

// NewExporter creates an exporter.
func NewExporter(queries *store.Queries, reg *locale.Registry, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: queries, reg: reg, logger: logger}
}

// SetSite records the site name and URL written into the export header.
func (e *Exporter) SetSite(name, url string) {
	e.siteName = name
	e.siteURL = url
}

// Export builds an ExportData structure per the options. Failures in one
// entity are logged and the rest of the export continues.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*ExportData, error) {
	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Site: ExportSite{
			Name:       e.siteName,
			URL:        e.siteURL,
			BaseLocale: e.reg.Base(),
		},
	}

	if opts.IncludeLanguages {
		if err := e.exportLanguages(ctx, data); err != nil {
			e.logger.Warn("failed to export languages", "source", "transfer", "error", err)
		}
	}
	if opts.IncludeUsers {
		if err := e.exportUsers(ctx, data); err != nil {
			e.logger.Warn("failed to export users", "source", "transfer", "error", err)
		}
	}
	if opts.IncludePosts {
		if err := e.exportPosts(ctx, data, opts.PostStatus); err != nil {
			e.logger.Warn("failed to export posts", "source", "transfer", "error", err)
		}
	}
	if opts.IncludeNotaries {
		if err := e.exportNotaries(ctx, data); err != nil {
			e.logger.Warn("failed to export notaries", "source", "transfer", "error", err)
		}
	}
	if opts.IncludeServices {
		if err := e.exportServices(ctx, data); err != nil {
			e.logger.Warn("failed to export services", "source", "transfer", "error", err)
		}
	}
	if opts.IncludeClients {
		if err := e.exportClients(ctx, data); err != nil {
			e.logger.Warn("failed to export clients", "source", "transfer", "error", err)
		}
	}
	if opts.IncludeSubmissions {
		if err := e.exportSubmissions(ctx, data); err != nil {
			e.logger.Warn("failed to export submissions", "source", "transfer", "error", err)
		}
	}
	if opts.IncludePayments {
		if err := e.exportPayments(ctx, data); err != nil {
			e.logger.Warn("failed to export payments", "source", "transfer", "error", err)
		}
	}
	if opts.IncludeMessages {
		if err := e.exportMessages(ctx, data); err != nil {
			e.logger.Warn("failed to export messages", "source", "transfer", "error", err)
		}
	}

	return data, nil
}

// ExportToWriter writes the export as indented JSON.
func (e *Exporter) ExportToWriter(ctx context.Context, opts ExportOptions, w io.Writer) error {
	data, err := e.Export(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportToFile writes the export as JSON to a file.
func (e *Exporter) ExportToFile(ctx context.Context, opts ExportOptions, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return e.ExportToWriter(ctx, opts, f)
}

func (e *Exporter) exportLanguages(ctx context.Context, data *ExportData) error {
	languages, err := e.store.ListLanguages(ctx)
	if err != nil {
		return err
	}
	for _, l := range languages {
		data.Languages = append(data.Languages, ExportLanguage{
			Code:         l.Code,
			Name:         l.Name,
			NativeName:   l.NativeName,
			IsActive:     l.IsActive,
			IsDefault:    l.IsDefault,
			DisplayOrder: l.DisplayOrder,
		})
	}
	return nil
}

func (e *Exporter) exportUsers(ctx context.Context, data *ExportData) error {
	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		data.Users = append(data.Users, ExportUser{
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		})
	}
	return nil
}

func (e *Exporter) exportPosts(ctx context.Context, data *ExportData, status string) error {
	if status == "" || status == "all" {
		status = ""
	}
	summaries, err := e.store.ListPosts(ctx, store.ListPostsParams{
		Status: status,
		Limit:  exportBatchSize,
	})
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		row, err := e.store.GetPostRow(ctx, summary.ID)
		if err != nil {
			e.logger.Warn("failed to export post", "source", "transfer",
				"post_id", summary.ID, "error", err)
			continue
		}
		doc := locale.Expand(row, e.reg)
		data.Posts = append(data.Posts, ExportPost{
			ID:      doc.ID,
			Common:  doc.Common,
			Bundles: doc.Bundles,
		})
	}
	return nil
}

func (e *Exporter) exportNotaries(ctx context.Context, data *ExportData) error {
	notaries, err := e.store.ListNotaries(ctx)
	if err != nil {
		return err
	}
	for _, n := range notaries {
		data.Notaries = append(data.Notaries, ExportNotary{
			Name:         n.Name,
			Title:        n.Title,
			Email:        n.Email,
			Phone:        n.Phone,
			Photo:        n.Photo,
			Bio:          n.Bio,
			Languages:    n.Languages,
			IsActive:     n.IsActive,
			DisplayOrder: n.DisplayOrder,
		})
	}
	return nil
}

func (e *Exporter) exportServices(ctx context.Context, data *ExportData) error {
	services, err := e.store.ListServices(ctx)
	if err != nil {
		return err
	}
	for _, s := range services {
		exported := ExportService{
			Slug:            s.Slug,
			Name:            s.Name,
			Description:     s.Description,
			Icon:            s.Icon,
			BasePriceCents:  s.BasePriceCents,
			DurationMinutes: s.DurationMinutes,
			IsActive:        s.IsActive,
			DisplayOrder:    s.DisplayOrder,
		}
		options, err := e.store.ListServiceOptions(ctx, s.ID)
		if err != nil {
			return err
		}
		for _, o := range options {
			exported.Options = append(exported.Options, ExportServiceOption{
				Name:         o.Name,
				Description:  o.Description,
				PriceCents:   o.PriceCents,
				IsDefault:    o.IsDefault,
				DisplayOrder: o.DisplayOrder,
			})
		}
		data.Services = append(data.Services, exported)
	}
	return nil
}

func (e *Exporter) exportClients(ctx context.Context, data *ExportData) error {
	clients, err := e.store.ListClients(ctx, store.ListClientsParams{Limit: exportBatchSize})
	if err != nil {
		return err
	}
	for _, c := range clients {
		data.Clients = append(data.Clients, ExportClient{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Address:   c.Address,
			Timezone:  c.Timezone,
			Notes:     c.Notes,
			CreatedAt: c.CreatedAt,
		})
	}
	return nil
}

// exportSubmissions resolves foreign keys to natural keys (client email,
// service slug, option name, notary email) so imports can re-link rows.
func (e *Exporter) exportSubmissions(ctx context.Context, data *ExportData) error {
	clientEmails, err := e.clientEmailByID(ctx)
	if err != nil {
		return err
	}
	serviceSlugs, optionNames, err := e.serviceKeysByID(ctx)
	if err != nil {
		return err
	}
	notaryEmails, err := e.notaryEmailByID(ctx)
	if err != nil {
		return err
	}

	submissions, err := e.store.ListSubmissions(ctx, store.ListSubmissionsParams{Limit: exportBatchSize})
	if err != nil {
		return err
	}
	for _, s := range submissions {
		exported := ExportSubmission{
			ID:          s.ID,
			ClientEmail: clientEmails[s.ClientID],
			ServiceSlug: serviceSlugs[s.ServiceID],
			Status:      s.Status,
			Timezone:    s.Timezone,
			Location:    s.Location,
			Notes:       s.Notes,
			CreatedAt:   s.CreatedAt,
		}
		if s.ServiceOptionID.Valid {
			exported.OptionName = optionNames[s.ServiceOptionID.Int64]
		}
		if s.NotaryID.Valid {
			exported.NotaryEmail = notaryEmails[s.NotaryID.Int64]
		}
		if s.ScheduledAt.Valid {
			t := s.ScheduledAt.Time
			exported.ScheduledAt = &t
		}
		data.Submissions = append(data.Submissions, exported)
	}
	return nil
}

func (e *Exporter) exportPayments(ctx context.Context, data *ExportData) error {
	clientEmails, err := e.clientEmailByID(ctx)
	if err != nil {
		return err
	}

	payments, err := e.store.ListPayments(ctx, store.ListPaymentsParams{Limit: exportBatchSize})
	if err != nil {
		return err
	}
	for _, p := range payments {
		exported := ExportPayment{
			ClientEmail: clientEmails[p.ClientID],
			Provider:    p.Provider,
			ProviderRef: p.ProviderRef,
			AmountCents: p.AmountCents,
			Currency:    p.Currency,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
		}
		if p.SubmissionID.Valid {
			id := p.SubmissionID.Int64
			exported.SubmissionID = &id
		}
		if p.PaidAt.Valid {
			t := p.PaidAt.Time
			exported.PaidAt = &t
		}
		data.Payments = append(data.Payments, exported)
	}
	return nil
}

func (e *Exporter) exportMessages(ctx context.Context, data *ExportData) error {
	// The inbox listing filters on the archived flag, so fetch both halves.
	inbox, err := e.store.ListMessages(ctx, store.ListMessagesParams{Limit: exportBatchSize})
	if err != nil {
		return err
	}
	archived, err := e.store.ListMessages(ctx, store.ListMessagesParams{Archived: true, Limit: exportBatchSize})
	if err != nil {
		return err
	}
	for _, m := range append(inbox, archived...) {
		data.Messages = append(data.Messages, ExportMessage{
			Name:       m.Name,
			Email:      m.Email,
			Phone:      m.Phone,
			Subject:    m.Subject,
			Body:       m.Body,
			IP:         m.IP,
			Country:    m.Country,
			Browser:    m.Browser,
			OS:         m.OS,
			Device:     m.Device,
			IsRead:     m.IsRead,
			IsArchived: m.IsArchived,
			CreatedAt:  m.CreatedAt,
		})
	}
	return nil
}

func (e *Exporter) clientEmailByID(ctx context.Context) (map[int64]string, error) {
	clients, err := e.store.ListClients(ctx, store.ListClientsParams{Limit: exportBatchSize})
	if err != nil {
		return nil, err
	}
	m := make(map[int64]string, len(clients))
	for _, c := range clients {
		m[c.ID] = c.Email
	}
	return m, nil
}

func (e *Exporter) serviceKeysByID(ctx context.Context) (map[int64]string, map[int64]string, error) {
	services, err := e.store.ListServices(ctx)
	if err != nil {
		return nil, nil, err
	}
	slugs := make(map[int64]string, len(services))
	names := make(map[int64]string)
	for _, s := range services {
		slugs[s.ID] = s.Slug
		options, err := e.store.ListServiceOptions(ctx, s.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, o := range options {
			names[o.ID] = o.Name
		}
	}
	return slugs, names, nil
}

func (e *Exporter) notaryEmailByID(ctx context.Context) (map[int64]string, error) {
	notaries, err := e.store.ListNotaries(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int64]string, len(notaries))
	for _, n := range notaries {
		m[n.ID] = n.Email
	}
	return m, nil
}
