// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

type Payment struct {
	ID           int64
	SubmissionID sql.NullInt64
	ClientID     int64
	Provider     string
	ProviderRef  string
	AmountCents  int64
	Currency     string
	Status       string
	PaidAt       sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const paymentCols = `id, submission_id, client_id, provider, provider_ref,
	amount_cents, currency, status, paid_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.SubmissionID, &p.ClientID, &p.Provider,
		&p.ProviderRef, &p.AmountCents, &p.Currency, &p.Status, &p.PaidAt,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) GetPayment(ctx context.Context, id int64) (Payment, error) {
	return scanPayment(q.db.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE id = ?`, id))
}

type ListPaymentsParams struct {
	Status   string
	ClientID int64
	Limit    int64
	Offset   int64
}

func (q *Queries) ListPayments(ctx context.Context, arg ListPaymentsParams) ([]Payment, error) {
	query := `SELECT ` + paymentCols + ` FROM payments WHERE 1=1`
	var args []any
	if arg.Status != "" {
		query += ` AND status = ?`
		args = append(args, arg.Status)
	}
	if arg.ClientID != 0 {
		query += ` AND client_id = ?`
		args = append(args, arg.ClientID)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (q *Queries) CountPayments(ctx context.Context, arg ListPaymentsParams) (int64, error) {
	query := `SELECT COUNT(*) FROM payments WHERE 1=1`
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

type PaymentParams struct {
	SubmissionID sql.NullInt64
	ClientID     int64
	Provider     string
	ProviderRef  string
	AmountCents  int64
	Currency     string
	Status       string
	PaidAt       sql.NullTime
}

func (q *Queries) CreatePayment(ctx context.Context, arg PaymentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO payments (submission_id, client_id, provider, provider_ref,
		 amount_cents, currency, status, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SubmissionID, arg.ClientID, arg.Provider, arg.ProviderRef,
		arg.AmountCents, arg.Currency, arg.Status, arg.PaidAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePaymentStatus sets the payment status, stamping paid_at on the
// transition to paid.
func (q *Queries) UpdatePaymentStatus(ctx context.Context, id int64, status string, paidAt sql.NullTime) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, paid_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, status, paidAt, id)
	return err
}
