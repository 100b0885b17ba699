// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type Service struct {
	ID              int64
	Slug            string
	Name            string
	Description     string
	Icon            string
	BasePriceCents  int64
	DurationMinutes int64
	IsActive        bool
	DisplayOrder    int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const serviceCols = `id, slug, name, description, icon, base_price_cents,
	duration_minutes, is_active, display_order, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Description, &s.Icon,
		&s.BasePriceCents, &s.DurationMinutes, &s.IsActive, &s.DisplayOrder,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (q *Queries) GetService(ctx context.Context, id int64) (Service, error) {
	return scanService(q.db.QueryRowContext(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = ?`, id))
}

func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+serviceCols+` FROM services ORDER BY display_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

type ServiceParams struct {
	Slug            string
	Name            string
	Description     string
	Icon            string
	BasePriceCents  int64
	DurationMinutes int64
	IsActive        bool
	DisplayOrder    int64
}

func (q *Queries) CreateService(ctx context.Context, arg ServiceParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO services (slug, name, description, icon, base_price_cents,
		 duration_minutes, is_active, display_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Slug, arg.Name, arg.Description, arg.Icon, arg.BasePriceCents,
		arg.DurationMinutes, arg.IsActive, arg.DisplayOrder)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateService(ctx context.Context, id int64, arg ServiceParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE services SET slug = ?, name = ?, description = ?, icon = ?,
		 base_price_cents = ?, duration_minutes = ?, is_active = ?, display_order = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		arg.Slug, arg.Name, arg.Description, arg.Icon, arg.BasePriceCents,
		arg.DurationMinutes, arg.IsActive, arg.DisplayOrder, id)
	return err
}

func (q *Queries) DeleteService(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	return err
}

type ServiceOption struct {
	ID           int64
	ServiceID    int64
	Name         string
	Description  string
	PriceCents   int64
	IsDefault    bool
	DisplayOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const serviceOptionCols = `id, service_id, name, description, price_cents,
	is_default, display_order, created_at, updated_at`

func scanServiceOption(row interface{ Scan(...any) error }) (ServiceOption, error) {
	var o ServiceOption
	err := row.Scan(&o.ID, &o.ServiceID, &o.Name, &o.Description, &o.PriceCents,
		&o.IsDefault, &o.DisplayOrder, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (q *Queries) GetServiceOption(ctx context.Context, id int64) (ServiceOption, error) {
	return scanServiceOption(q.db.QueryRowContext(ctx,
		`SELECT `+serviceOptionCols+` FROM service_options WHERE id = ?`, id))
}

func (q *Queries) ListServiceOptions(ctx context.Context, serviceID int64) ([]ServiceOption, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+serviceOptionCols+` FROM service_options
		 WHERE service_id = ? ORDER BY display_order, name`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []ServiceOption
	for rows.Next() {
		o, err := scanServiceOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

type ServiceOptionParams struct {
	ServiceID    int64
	Name         string
	Description  string
	PriceCents   int64
	IsDefault    bool
	DisplayOrder int64
}

func (q *Queries) CreateServiceOption(ctx context.Context, arg ServiceOptionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO service_options (service_id, name, description, price_cents, is_default, display_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ServiceID, arg.Name, arg.Description, arg.PriceCents, arg.IsDefault, arg.DisplayOrder)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateServiceOption(ctx context.Context, id int64, arg ServiceOptionParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE service_options SET name = ?, description = ?, price_cents = ?,
		 is_default = ?, display_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		arg.Name, arg.Description, arg.PriceCents, arg.IsDefault, arg.DisplayOrder, id)
	return err
}

func (q *Queries) DeleteServiceOption(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM service_options WHERE id = ?`, id)
	return err
}
