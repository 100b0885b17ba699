// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Submission (appointment) statuses
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusConfirmed = "confirmed"
	SubmissionStatusCompleted = "completed"
	SubmissionStatusCancelled = "cancelled"
)

// ValidSubmissionStatuses contains all valid submission statuses.
var ValidSubmissionStatuses = []string{
	SubmissionStatusPending,
	SubmissionStatusConfirmed,
	SubmissionStatusCompleted,
	SubmissionStatusCancelled,
}

// IsValidSubmissionStatus reports whether status is a known submission status.
func IsValidSubmissionStatus(status string) bool {
	for _, s := range ValidSubmissionStatuses {
		if s == status {
			return true
		}
	}
	return false
}
