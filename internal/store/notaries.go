// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"time"
)

type Notary struct {
	ID           int64
	Name         string
	Title        string
	Email        string
	Phone        string
	Photo        string
	Bio          string
	Languages    []string
	IsActive     bool
	DisplayOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const notaryCols = `id, name, title, email, phone, photo, bio, languages,
	is_active, display_order, created_at, updated_at`

func scanNotary(row interface{ Scan(...any) error }) (Notary, error) {
	var n Notary
	var languages string
	err := row.Scan(&n.ID, &n.Name, &n.Title, &n.Email, &n.Phone, &n.Photo,
		&n.Bio, &languages, &n.IsActive, &n.DisplayOrder, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(languages), &n.Languages); err != nil {
		n.Languages = []string{}
	}
	return n, nil
}

func (q *Queries) GetNotary(ctx context.Context, id int64) (Notary, error) {
	return scanNotary(q.db.QueryRowContext(ctx,
		`SELECT `+notaryCols+` FROM notaries WHERE id = ?`, id))
}

func (q *Queries) ListNotaries(ctx context.Context) ([]Notary, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+notaryCols+` FROM notaries ORDER BY display_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notaries []Notary
	for rows.Next() {
		n, err := scanNotary(rows)
		if err != nil {
			return nil, err
		}
		notaries = append(notaries, n)
	}
	return notaries, rows.Err()
}

type NotaryParams struct {
	Name         string
	Title        string
	Email        string
	Phone        string
	Photo        string
	Bio          string
	Languages    []string
	IsActive     bool
	DisplayOrder int64
}

func (q *Queries) CreateNotary(ctx context.Context, arg NotaryParams) (int64, error) {
	languages, _ := json.Marshal(arg.Languages)
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO notaries (name, title, email, phone, photo, bio, languages, is_active, display_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Title, arg.Email, arg.Phone, arg.Photo, arg.Bio,
		string(languages), arg.IsActive, arg.DisplayOrder)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateNotary(ctx context.Context, id int64, arg NotaryParams) error {
	languages, _ := json.Marshal(arg.Languages)
	_, err := q.db.ExecContext(ctx,
		`UPDATE notaries SET name = ?, title = ?, email = ?, phone = ?, photo = ?,
		 bio = ?, languages = ?, is_active = ?, display_order = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		arg.Name, arg.Title, arg.Email, arg.Phone, arg.Photo, arg.Bio,
		string(languages), arg.IsActive, arg.DisplayOrder, id)
	return err
}

func (q *Queries) DeleteNotary(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM notaries WHERE id = ?`, id)
	return err
}
