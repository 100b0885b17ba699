// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type Event struct {
	ID        int64
	Level     string
	Message   string
	Source    string
	Details   string
	CreatedAt time.Time
}

const eventCols = `id, level, message, source, details, created_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Level, &e.Message, &e.Source, &e.Details, &e.CreatedAt)
	return e, err
}

type CreateEventParams struct {
	Level   string
	Message string
	Source  string
	Details string
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, message, source, details) VALUES (?, ?, ?, ?)`,
		arg.Level, arg.Message, arg.Source, arg.Details)
	return err
}

type ListEventsParams struct {
	Level  string
	Limit  int64
	Offset int64
}

func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	query := `SELECT ` + eventCols + ` FROM events WHERE 1=1`
	var args []any
	if arg.Level != "" {
		query += ` AND level = ?`
		args = append(args, arg.Level)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (q *Queries) CountEvents(ctx context.Context, level string) (int64, error) {
	query := `SELECT COUNT(*) FROM events WHERE 1=1`
	var args []any
	if level != "" {
		query += ` AND level = ?`
		args = append(args, level)
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// PurgeEventsBefore deletes event rows older than the cutoff and returns how
// many were removed.
func (q *Queries) PurgeEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
