// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"time"
)

// NullStringFrom returns a valid NullString for s. An empty string is still
// stored as a valid empty value, not NULL.
func NullStringFrom(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// StringFromNull returns the string value or "" when NULL.
func StringFromNull(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// NullInt64FromPtr converts an optional int64 to sql.NullInt64.
func NullInt64FromPtr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// NullTimeFromPtr converts an optional time to sql.NullTime.
func NullTimeFromPtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtrFromNull returns a pointer to the time value, or nil when NULL.
func TimePtrFromNull(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
