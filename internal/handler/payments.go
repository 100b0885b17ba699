// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olegiv/notary-go/internal/model"
	"github.com/olegiv/notary-go/internal/store"
)

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID           int64      `json:"id"`
	SubmissionID *int64     `json:"submission_id,omitempty"`
	ClientID     int64      `json:"client_id"`
	Provider     string     `json:"provider"`
	ProviderRef  string     `json:"provider_ref,omitempty"`
	AmountCents  int64      `json:"amount_cents"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func storePaymentToResponse(p store.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		Provider:    p.Provider,
		ProviderRef: p.ProviderRef,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.SubmissionID.Valid {
		resp.SubmissionID = &p.SubmissionID.Int64
	}
	if p.PaidAt.Valid {
		resp.PaidAt = &p.PaidAt.Time
	}
	return resp
}

// PaymentRequest is the request body for recording a payment.
type PaymentRequest struct {
	SubmissionID *int64 `json:"submission_id"`
	ClientID     int64  `json:"client_id"`
	Provider     string `json:"provider"`
	ProviderRef  string `json:"provider_ref"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// ListPayments handles GET /api/v1/payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := r.URL.Query().Get("status")
	if status != "" && !model.IsValidPaymentStatus(status) {
		WriteBadRequest(w, "Invalid status filter", nil)
		return
	}
	clientID, _ := ParseURLQueryInt64(r, "client_id")

	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	params := store.ListPaymentsParams{
		Status:   status,
		ClientID: clientID,
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	payments, err := h.queries.ListPayments(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to list payments")
		return
	}
	total, err := h.queries.CountPayments(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to count payments")
		return
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, storePaymentToResponse(p))
	}
	WriteSuccess(w, responses, NewMeta(total, page, perPage))
}

// GetPayment handles GET /api/v1/payments/{id}.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, ok := h.requirePayment(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, storePaymentToResponse(payment), nil)
}

// CreatePayment handles POST /api/v1/payments.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.ClientID == 0 {
		fieldErrors["client_id"] = "Client is required"
	}
	if req.Provider == "" {
		fieldErrors["provider"] = "Provider is required"
	}
	if req.AmountCents <= 0 {
		fieldErrors["amount_cents"] = "Amount must be positive"
	}
	if req.Currency == "" {
		req.Currency = "EUR"
	}
	if req.Status == "" {
		req.Status = model.PaymentStatusPending
	}
	if !model.IsValidPaymentStatus(req.Status) {
		fieldErrors["status"] = "Status must be one of: pending, paid, refunded, failed"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	params := store.PaymentParams{
		ClientID:    req.ClientID,
		Provider:    req.Provider,
		ProviderRef: req.ProviderRef,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      req.Status,
	}
	if req.SubmissionID != nil {
		params.SubmissionID = sql.NullInt64{Int64: *req.SubmissionID, Valid: true}
	}
	if req.Status == model.PaymentStatusPaid {
		params.PaidAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	id, err := h.queries.CreatePayment(ctx, params)
	if err != nil {
		WriteInternalError(w, "Failed to create payment")
		return
	}

	created, err := h.queries.GetPayment(ctx, id)
	if err != nil {
		WriteInternalError(w, "Failed to reload payment")
		return
	}
	WriteCreated(w, storePaymentToResponse(created))
}

// UpdatePaymentStatusRequest is the body for the status transition endpoint.
type UpdatePaymentStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentStatus handles POST /api/v1/payments/{id}/status. Moving to
// "paid" stamps the payment time; any other status clears it.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payment, ok := h.requirePayment(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if !model.IsValidPaymentStatus(req.Status) {
		WriteValidationError(w, map[string]string{"status": "Status must be one of: pending, paid, refunded, failed"})
		return
	}

	var paidAt sql.NullTime
	if req.Status == model.PaymentStatusPaid {
		if payment.PaidAt.Valid {
			paidAt = payment.PaidAt
		} else {
			paidAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		}
	}

	if err := h.queries.UpdatePaymentStatus(ctx, payment.ID, req.Status, paidAt); err != nil {
		WriteInternalError(w, "Failed to update payment status")
		return
	}

	updated, err := h.queries.GetPayment(ctx, payment.ID)
	if err != nil {
		WriteInternalError(w, "Failed to reload payment")
		return
	}
	WriteSuccess(w, storePaymentToResponse(updated), nil)
}

func (h *Handler) requirePayment(w http.ResponseWriter, r *http.Request) (store.Payment, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid payment ID", nil)
		return store.Payment{}, false
	}
	payment, err := h.queries.GetPayment(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Payment not found")
		} else {
			WriteInternalError(w, "Failed to retrieve payment")
		}
		return store.Payment{}, false
	}
	return payment, true
}
