// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type Media struct {
	ID           int64
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Width        int64
	Height       int64
	AltText      string
	UploadedBy   int64
	CreatedAt    time.Time
}

const mediaCols = `id, filename, original_name, mime_type, size, width, height,
	alt_text, uploaded_by, created_at`

func scanMedia(row interface{ Scan(...any) error }) (Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size,
		&m.Width, &m.Height, &m.AltText, &m.UploadedBy, &m.CreatedAt)
	return m, err
}

func (q *Queries) GetMedia(ctx context.Context, id int64) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx,
		`SELECT `+mediaCols+` FROM media WHERE id = ?`, id))
}

func (q *Queries) GetMediaByFilename(ctx context.Context, filename string) (Media, error) {
	return scanMedia(q.db.QueryRowContext(ctx,
		`SELECT `+mediaCols+` FROM media WHERE filename = ?`, filename))
}

func (q *Queries) ListMedia(ctx context.Context, limit, offset int64) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaCols+` FROM media ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (q *Queries) CountMedia(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media`).Scan(&count)
	return count, err
}

type CreateMediaParams struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Width        int64
	Height       int64
	AltText      string
	UploadedBy   int64
}

func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO media (filename, original_name, mime_type, size, width, height, alt_text, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Filename, arg.OriginalName, arg.MimeType, arg.Size, arg.Width,
		arg.Height, arg.AltText, arg.UploadedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateMediaAltText(ctx context.Context, id int64, altText string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE media SET alt_text = ? WHERE id = ?`, altText, id)
	return err
}

func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
