// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for
// client-provided scan parameters. Numeric limits are clamped rather
// than rejected so a sloppy client still gets a usable stream; dates
// are validated strictly because a malformed date has no sane default.
package validation

import (
	"fmt"
	"regexp"
	"time"
)

// datePattern matches the wire format for calendar dates (YYYY-MM-DD).
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ClampInt returns v clamped into [lo, hi], substituting def when v is
// zero (field absent on the wire). The second return reports whether
// the caller's value was out of range and had to be adjusted.
func ClampInt(v, lo, hi, def int) (int, bool) {
	if v == 0 {
		return def, false
	}
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

// ParseDay validates a YYYY-MM-DD date and returns the unix-second
// start of that day in UTC.
func ParseDay(date string) (int64, error) {
	if !datePattern.MatchString(date) {
		return 0, fmt.Errorf("invalid date format: %q (expected YYYY-MM-DD)", date)
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Unix(), nil
}
