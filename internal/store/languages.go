// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type Language struct {
	ID           int64
	Code         string
	Name         string
	NativeName   string
	IsActive     bool
	IsDefault    bool
	DisplayOrder int64
	CreatedAt    time.Time
}

const languageCols = `id, code, name, native_name, is_active, is_default,
	display_order, created_at`

func scanLanguage(row interface{ Scan(...any) error }) (Language, error) {
	var l Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsActive,
		&l.IsDefault, &l.DisplayOrder, &l.CreatedAt)
	return l, err
}

func (q *Queries) GetLanguage(ctx context.Context, id int64) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx,
		`SELECT `+languageCols+` FROM languages WHERE id = ?`, id))
}

func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx,
		`SELECT `+languageCols+` FROM languages WHERE code = ?`, code))
}

func (q *Queries) ListLanguages(ctx context.Context) ([]Language, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+languageCols+` FROM languages ORDER BY display_order, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

type CreateLanguageParams struct {
	Code         string
	Name         string
	NativeName   string
	IsActive     bool
	IsDefault    bool
	DisplayOrder int64
}

func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO languages (code, name, native_name, is_active, is_default, display_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Code, arg.Name, arg.NativeName, arg.IsActive, arg.IsDefault, arg.DisplayOrder)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type UpdateLanguageParams struct {
	ID           int64
	Name         string
	NativeName   string
	IsActive     bool
	DisplayOrder int64
}

func (q *Queries) UpdateLanguage(ctx context.Context, arg UpdateLanguageParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE languages SET name = ?, native_name = ?, is_active = ?, display_order = ?
		 WHERE id = ?`,
		arg.Name, arg.NativeName, arg.IsActive, arg.DisplayOrder, arg.ID)
	return err
}

// SetDefaultLanguage marks one language default and clears the flag elsewhere.
func (q *Queries) SetDefaultLanguage(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE languages SET is_default = 0`); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE languages SET is_default = 1, is_active = 1 WHERE id = ?`, id)
	return err
}

func (q *Queries) DeleteLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM languages WHERE id = ? AND is_default = 0`, id)
	return err
}

func (q *Queries) CountLanguages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM languages`).Scan(&count)
	return count, err
}
