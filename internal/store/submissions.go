// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

type Submission struct {
	ID              int64
	ClientID        int64
	ServiceID       int64
	ServiceOptionID sql.NullInt64
	NotaryID        sql.NullInt64
	Status          string
	ScheduledAt     sql.NullTime
	Timezone        string
	Location        string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const submissionCols = `id, client_id, service_id, service_option_id, notary_id,
	status, scheduled_at, timezone, location, notes, created_at, updated_at`

func scanSubmission(row interface{ Scan(...any) error }) (Submission, error) {
	var s Submission
	err := row.Scan(&s.ID, &s.ClientID, &s.ServiceID, &s.ServiceOptionID,
		&s.NotaryID, &s.Status, &s.ScheduledAt, &s.Timezone, &s.Location,
		&s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) GetSubmission(ctx context.Context, id int64) (Submission, error) {
	return scanSubmission(q.db.QueryRowContext(ctx,
		`SELECT `+submissionCols+` FROM submissions WHERE id = ?`, id))
}

type ListSubmissionsParams struct {
	Status   string
	ClientID int64
	Limit    int64
	Offset   int64
}

func (q *Queries) ListSubmissions(ctx context.Context, arg ListSubmissionsParams) ([]Submission, error) {
	query := `SELECT ` + submissionCols + ` FROM submissions WHERE 1=1`
	var args []any
	if arg.Status != "" {
		query += ` AND status = ?`
		args = append(args, arg.Status)
	}
	if arg.ClientID != 0 {
		query += ` AND client_id = ?`
		args = append(args, arg.ClientID)
	}
	query += ` ORDER BY scheduled_at IS NULL, scheduled_at LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (q *Queries) CountSubmissions(ctx context.Context, arg ListSubmissionsParams) (int64, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE 1=1`
	var args []any
	if arg.Status != "" {
		query += ` AND status = ?`
		args = append(args, arg.Status)
	}
	if arg.ClientID != 0 {
		query += ` AND client_id = ?`
		args = append(args, arg.ClientID)
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type SubmissionParams struct {
	ClientID        int64
	ServiceID       int64
	ServiceOptionID sql.NullInt64
	NotaryID        sql.NullInt64
	Status          string
	ScheduledAt     sql.NullTime
	Timezone        string
	Location        string
	Notes           string
}

func (q *Queries) CreateSubmission(ctx context.Context, arg SubmissionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO submissions (client_id, service_id, service_option_id, notary_id,
		 status, scheduled_at, timezone, location, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.ClientID, arg.ServiceID, arg.ServiceOptionID, arg.NotaryID,
		arg.Status, arg.ScheduledAt, arg.Timezone, arg.Location, arg.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateSubmission(ctx context.Context, id int64, arg SubmissionParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE submissions SET client_id = ?, service_id = ?, service_option_id = ?,
		 notary_id = ?, status = ?, scheduled_at = ?, timezone = ?, location = ?,
		 notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		arg.ClientID, arg.ServiceID, arg.ServiceOptionID, arg.NotaryID,
		arg.Status, arg.ScheduledAt, arg.Timezone, arg.Location, arg.Notes, id)
	return err
}

func (q *Queries) UpdateSubmissionStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE submissions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	return err
}

func (q *Queries) DeleteSubmission(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	return err
}
