// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"time"
)

// AppointmentTimeLayout is the display layout for appointment times.
const AppointmentTimeLayout = "Mon, 02 Jan 2006 15:04"

// ValidateTimezone checks that name is a loadable IANA zone name.
func ValidateTimezone(name string) error {
	if name == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return nil
}

// FormatInZone renders a stored UTC instant in the given IANA zone for
// display. Falls back to UTC when the zone cannot be loaded.
func FormatInZone(t time.Time, zone string) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(AppointmentTimeLayout)
}

// ToZone converts a stored UTC instant into the given zone, defaulting to
// UTC for unknown zones.
func ToZone(t time.Time, zone string) time.Time {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc)
}
