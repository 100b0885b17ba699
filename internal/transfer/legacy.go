// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/util"
)

// LegacySource reads from the previous hosted backend. The driver is picked
// from the DSN: postgres:// and postgresql:// URLs use pgx, anything else is
// treated as a MySQL DSN.
type LegacySource struct {
	db     *sql.DB
	driver string
}

// LegacyPost is a blog post row from the legacy schema. The legacy backend
// stored a single language, which maps onto the base locale here.
type LegacyPost struct {
	Title       string
	Slug        string
	Excerpt     string
	Body        string
	Published   bool
	PublishedAt sql.NullTime
	CreatedAt   time.Time
}

// LegacyClient is a client row from the legacy schema.
type LegacyClient struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     string
	CreatedAt time.Time
}

// legacyDriver picks the SQL driver for a legacy DSN.
func legacyDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "mysql"
}

// OpenLegacy connects to a legacy database.
func OpenLegacy(dsn string) (*LegacySource, error) {
	driver := legacyDriver(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to legacy database: %w", err)
	}
	return &LegacySource{db: db, driver: driver}, nil
}

// Driver returns the SQL driver name in use, "pgx" or "mysql".
func (s *LegacySource) Driver() string {
	return s.driver
}

// Close closes the legacy connection.
func (s *LegacySource) Close() error {
	return s.db.Close()
}

// Posts reads all blog posts from the legacy database.
func (s *LegacySource) Posts(ctx context.Context) ([]LegacyPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, slug, excerpt, body, published, published_at, created_at
		FROM blog_posts
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying legacy posts: %w", err)
	}
	defer rows.Close()

	var posts []LegacyPost
	for rows.Next() {
		var p LegacyPost
		if err := rows.Scan(&p.Title, &p.Slug, &p.Excerpt, &p.Body,
			&p.Published, &p.PublishedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning legacy post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Clients reads all client records from the legacy database.
func (s *LegacySource) Clients(ctx context.Context) ([]LegacyClient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT first_name, last_name, email, phone, notes, created_at
		FROM clients
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying legacy clients: %w", err)
	}
	defer rows.Close()

	var clients []LegacyClient
	for rows.Next() {
		var c LegacyClient
		if err := rows.Scan(&c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.Notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning legacy client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// LegacyImporter migrates posts and clients from a legacy database. It is a
// one-shot tool: rows whose slug or email already exists are skipped.
type LegacyImporter struct {
	src     *LegacySource
	store   *store.Queries
	reg     *locale.Registry
	baseURL string
	logger  *slog.Logger
}

// NewLegacyImporter creates a legacy importer.
func NewLegacyImporter(src *LegacySource, queries *store.Queries, reg *locale.Registry, baseURL string, logger *slog.Logger) *LegacyImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LegacyImporter{src: src, store: queries, reg: reg, baseURL: baseURL, logger: logger}
}

// Run migrates everything and reports per-entity counts.
func (li *LegacyImporter) Run(ctx context.Context) (*ImportResult, error) {
	result := NewImportResult(false)

	if err := li.migratePosts(ctx, result); err != nil {
		return result, err
	}
	if err := li.migrateClients(ctx, result); err != nil {
		return result, err
	}

	li.logger.Info("legacy migration completed", "source", "transfer",
		"driver", li.src.Driver(), "imported", result.TotalImported(),
		"errors", len(result.Errors))
	return result, nil
}

func (li *LegacyImporter) migratePosts(ctx context.Context, result *ImportResult) error {
	posts, err := li.src.Posts(ctx)
	if err != nil {
		return err
	}

	base := li.reg.Base()
	for _, p := range posts {
		slug := p.Slug
		if slug == "" {
			slug = util.Slugify(p.Title)
		}
		exists, err := li.store.PostSlugExists(ctx, slug, 0)
		if err != nil {
			return err
		}
		if exists {
			result.Skipped["posts"]++
			continue
		}

		doc := locale.NewDocument(li.reg)
		doc.Common.Slug = slug
		doc.Common.Status = model.PostStatusDraft
		doc.Common.ContentFormat = model.ContentFormatHTML
		if p.Published {
			doc.Common.Status = model.PostStatusPublished
			if p.PublishedAt.Valid {
				t := p.PublishedAt.Time.UTC()
				doc.Common.PublishedAt = &t
			} else {
				t := p.CreatedAt.UTC()
				doc.Common.PublishedAt = &t
			}
		}
		doc.Bundles[base].Title = p.Title
		doc.Bundles[base].Excerpt = p.Excerpt
		doc.Bundles[base].Content = p.Body

		row, err := locale.Flatten(doc, li.reg, li.baseURL)
		if err != nil {
			result.AddError("post", slug, err.Error())
			continue
		}
		if _, err := li.store.CreatePost(ctx, row); err != nil {
			result.AddError("post", slug, err.Error())
			continue
		}
		result.Imported["posts"]++
	}
	return nil
}

func (li *LegacyImporter) migrateClients(ctx context.Context, result *ImportResult) error {
	clients, err := li.src.Clients(ctx)
	if err != nil {
		return err
	}

	existing, err := clientIDByEmail(ctx, li.store)
	if err != nil {
		return err
	}
	for _, c := range clients {
		if _, ok := existing[c.Email]; ok {
			result.Skipped["clients"]++
			continue
		}
		id, err := li.store.CreateClient(ctx, store.ClientParams{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Timezone:  "UTC",
			Notes:     c.Notes,
		})
		if err != nil {
			result.AddError("client", c.Email, err.Error())
			continue
		}
		existing[c.Email] = id
		result.Imported["clients"]++
	}
	return nil
}
