// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type Client struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Timezone  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const clientCols = `id, first_name, last_name, email, phone, address,
	timezone, notes, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Address, &c.Timezone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) GetClient(ctx context.Context, id int64) (Client, error) {
	return scanClient(q.db.QueryRowContext(ctx,
		`SELECT `+clientCols+` FROM clients WHERE id = ?`, id))
}

type ListClientsParams struct {
	Search string
	Limit  int64
	Offset int64
}

func (q *Queries) ListClients(ctx context.Context, arg ListClientsParams) ([]Client, error) {
	query := `SELECT ` + clientCols + ` FROM clients WHERE 1=1`
	var args []any
	if arg.Search != "" {
		query += ` AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)`
		pattern := "%" + arg.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY last_name, first_name LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (q *Queries) CountClients(ctx context.Context, search string) (int64, error) {
	query := `SELECT COUNT(*) FROM clients WHERE 1=1`
	var args []any
	if search != "" {
		query += ` AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type ClientParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Timezone  string
	Notes     string
}

func (q *Queries) CreateClient(ctx context.Context, arg ClientParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO clients (first_name, last_name, email, phone, address, timezone, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.FirstName, arg.LastName, arg.Email, arg.Phone, arg.Address, arg.Timezone, arg.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateClient(ctx context.Context, id int64, arg ClientParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE clients SET first_name = ?, last_name = ?, email = ?, phone = ?,
		 address = ?, timezone = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		arg.FirstName, arg.LastName, arg.Email, arg.Phone, arg.Address,
		arg.Timezone, arg.Notes, id)
	return err
}

func (q *Queries) DeleteClient(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	return err
}
