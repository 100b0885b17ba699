// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olegiv/notary-go/internal/locale"
)

// localeSuffixes mirrors the posts schema: base language unsuffixed plus one
// suffixed column set per additional site language.
var localeSuffixes = []string{"", "_fr", "_es", "_de"}

// postColumns is the whitelist of writable posts columns. Writes through
// CreatePost/UpdatePostColumns silently drop anything not listed here.
var postColumns = func() map[string]bool {
	cols := map[string]bool{
		locale.ColSlug:            true,
		locale.ColStatus:          true,
		locale.ColCoverImage:      true,
		locale.ColTags:            true,
		locale.ColAuthorName:      true,
		locale.ColMetaKeywords:    true,
		locale.ColCanonicalURL:    true,
		locale.ColContentFormat:   true,
		locale.ColIsFeatured:      true,
		locale.ColViewsCount:      true,
		locale.ColReadTimeMinutes: true,
		locale.ColPublishedAt:     true,
		locale.ColScheduledAt:     true,
	}
	for _, field := range locale.LocalizedFields {
		for _, suffix := range localeSuffixes {
			cols[field+suffix] = true
		}
	}
	return cols
}()

// PostSummary is the list-view projection of a post: base-language title and
// excerpt only, no localized payload.
type PostSummary struct {
	ID          int64
	Slug        string
	Title       string
	Excerpt     string
	Status      string
	CoverImage  string
	AuthorName  string
	IsFeatured  bool
	ViewsCount  int64
	PublishedAt sql.NullTime
	ScheduledAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const postSummaryCols = `id, slug, title, excerpt, status, cover_image,
	author_name, is_featured, views_count, published_at, scheduled_at,
	created_at, updated_at`

func scanPostSummary(row interface{ Scan(...any) error }) (PostSummary, error) {
	var p PostSummary
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Status,
		&p.CoverImage, &p.AuthorName, &p.IsFeatured, &p.ViewsCount,
		&p.PublishedAt, &p.ScheduledAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListPostsParams filters and paginates the post list.
type ListPostsParams struct {
	Status string
	Search string
	Limit  int64
	Offset int64
}

// ListPosts returns post summaries newest first.
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]PostSummary, error) {
	query := `SELECT ` + postSummaryCols + ` FROM posts WHERE 1=1`
	var args []any
	if arg.Status != "" {
		query += ` AND status = ?`
		args = append(args, arg.Status)
	}
	if arg.Search != "" {
		query += ` AND (title LIKE ? OR slug LIKE ?)`
		pattern := "%" + arg.Search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []PostSummary
	for rows.Next() {
		p, err := scanPostSummary(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the total matching the same filters as ListPosts.
func (q *Queries) CountPosts(ctx context.Context, arg ListPostsParams) (int64, error) {
	query := `SELECT COUNT(*) FROM posts WHERE 1=1`
	var args []any
	if arg.Status != "" {
		query += ` AND status = ?`
		args = append(args, arg.Status)
	}
	if arg.Search != "" {
		query += ` AND (title LIKE ? OR slug LIKE ?)`
		pattern := "%" + arg.Search + "%"
		args = append(args, pattern, pattern)
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// GetPostRow reads one post as a raw column map, localized columns included.
// The caller expands it into a document.
func (q *Queries) GetPostRow(ctx context.Context, id int64) (locale.Row, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT * FROM posts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(locale.Row, len(cols))
	for i, col := range cols {
		switch v := vals[i].(type) {
		case []byte:
			row[col] = string(v)
		default:
			row[col] = v
		}
	}
	return row, nil
}

// GetPostSummary reads the list projection of one post.
func (q *Queries) GetPostSummary(ctx context.Context, id int64) (PostSummary, error) {
	return scanPostSummary(q.db.QueryRowContext(ctx,
		`SELECT `+postSummaryCols+` FROM posts WHERE id = ?`, id))
}

// CreatePost inserts a post from a flattened column map and returns its id.
func (q *Queries) CreatePost(ctx context.Context, cols map[string]any) (int64, error) {
	names := filterPostColumns(cols)
	if len(names) == 0 {
		return 0, fmt.Errorf("create post: no valid columns")
	}

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = bindValue(cols[name])
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (`+strings.Join(names, ", ")+`) VALUES (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePostColumns writes only the provided columns of one post. Keys
// outside the whitelist are dropped; an update that matches no row returns
// sql.ErrNoRows.
func (q *Queries) UpdatePostColumns(ctx context.Context, id int64, cols map[string]any) error {
	names := filterPostColumns(cols)
	if len(names) == 0 {
		return nil
	}

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, bindValue(cols[name]))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := q.db.ExecContext(ctx,
		`UPDATE posts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePost removes a post.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PostSlugExists reports whether another post already uses the slug.
func (q *Queries) PostSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&count)
	return count > 0, err
}

// ListDueScheduledPosts returns scheduled posts whose publish time has passed.
func (q *Queries) ListDueScheduledPosts(ctx context.Context, now time.Time) ([]PostSummary, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postSummaryCols+` FROM posts
		 WHERE status = 'scheduled' AND scheduled_at IS NOT NULL AND scheduled_at <= ?
		 ORDER BY scheduled_at`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []PostSummary
	for rows.Next() {
		p, err := scanPostSummary(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PublishPost transitions a post to published, stamping published_at.
func (q *Queries) PublishPost(ctx context.Context, id int64, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE posts SET status = 'published', published_at = ?,
		 scheduled_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// filterPostColumns keeps whitelisted column names in deterministic order.
func filterPostColumns(cols map[string]any) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		if postColumns[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// bindValue maps document-level values onto SQLite storage types.
func bindValue(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case []string:
		b, _ := json.Marshal(val)
		return string(b)
	case []locale.FAQEntry:
		b, _ := json.Marshal(val)
		return string(b)
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	case *time.Time:
		if val == nil {
			return nil
		}
		return *val
	default:
		return v
	}
}
