// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type Message struct {
	ID         int64
	Name       string
	Email      string
	Phone      string
	Subject    string
	Body       string
	IP         string
	Country    string
	Browser    string
	OS         string
	Device     string
	IsRead     bool
	IsArchived bool
	CreatedAt  time.Time
}

const messageCols = `id, name, email, phone, subject, body, ip, country,
	browser, os, device, is_read, is_archived, created_at`

func scanMessage(row interface{ Scan(...any) error }) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body,
		&m.IP, &m.Country, &m.Browser, &m.OS, &m.Device, &m.IsRead,
		&m.IsArchived, &m.CreatedAt)
	return m, err
}

func (q *Queries) GetMessage(ctx context.Context, id int64) (Message, error) {
	return scanMessage(q.db.QueryRowContext(ctx,
		`SELECT `+messageCols+` FROM messages WHERE id = ?`, id))
}

type ListMessagesParams struct {
	Archived bool
	Unread   bool
	Limit    int64
	Offset   int64
}

func (q *Queries) ListMessages(ctx context.Context, arg ListMessagesParams) ([]Message, error) {
	query := `SELECT ` + messageCols + ` FROM messages WHERE is_archived = ?`
	args := []any{arg.Archived}
	if arg.Unread {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (q *Queries) CountMessages(ctx context.Context, arg ListMessagesParams) (int64, error) {
	query := `SELECT COUNT(*) FROM messages WHERE is_archived = ?`
	args := []any{arg.Archived}
	if arg.Unread {
		query += ` AND is_read = 0`
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type CreateMessageParams struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Body    string
	IP      string
	Country string
	Browser string
	OS      string
	Device  string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO messages (name, email, phone, subject, body, ip, country, browser, os, device)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Email, arg.Phone, arg.Subject, arg.Body, arg.IP,
		arg.Country, arg.Browser, arg.OS, arg.Device)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) MarkMessageRead(ctx context.Context, id int64, read bool) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE messages SET is_read = ? WHERE id = ?`, read, id)
	return err
}

func (q *Queries) ArchiveMessage(ctx context.Context, id int64, archived bool) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE messages SET is_archived = ? WHERE id = ?`, archived, id)
	return err
}

func (q *Queries) DeleteMessage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	return err
}
