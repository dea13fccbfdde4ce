package models

import (
	"strings"
	"time"
)

// Clock is the time source used for derived, non-persisted fields.
// Tests replace it to pin "now".
var Clock = func() time.Time { return time.Now().UTC() }

// DeadlineStatus classifies a task deadline relative to now.
type DeadlineStatus string

const (
	DeadlineNone      DeadlineStatus = "no_deadline"
	DeadlineCompleted DeadlineStatus = "completed"
	DeadlineOverdue   DeadlineStatus = "overdue"
	DeadlineUrgent    DeadlineStatus = "urgent"
	DeadlineSoon      DeadlineStatus = "soon"
	DeadlineNormal    DeadlineStatus = "normal"
)

const (
	urgentWithinDays = 3
	soonWithinDays   = 7
)

// DaysUntil returns the number of calendar days (UTC) from now until
// deadline. It is negative once the deadline's day has passed.
func DaysUntil(deadline, now time.Time) int {
	d := deadline.UTC()
	n := now.UTC()
	dd := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	nd := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return int(dd.Sub(nd).Hours() / 24)
}

var deadlineLayouts = []string{
	"2006-01-02",          // ISO date
	time.RFC3339,          // full RFC3339
	time.RFC3339Nano,      // with fractional seconds
	"2006-01-02 15:04:05", // SQL datetime
	"2006-01-02T15:04",    // HTML datetime-local
	"2 Jan 2006",          // e.g., 30 Oct 2025
	"02 Jan 2006",         // zero-padded day
}

// ParseDeadline accepts the date formats clients send and returns the
// instant in UTC. ok is false for empty or unrecognised input.
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseDate is ParseDeadline truncated to midnight UTC, for date-only columns.
func ParseDate(s string) (time.Time, bool) {
	t, ok := ParseDeadline(s)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
