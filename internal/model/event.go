// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event log levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event log sources.
const (
	EventSourceAuth        = "auth"
	EventSourcePost        = "post"
	EventSourceTranslation = "translation"
	EventSourceMedia       = "media"
	EventSourceScheduler   = "scheduler"
	EventSourceSystem      = "system"
)
