// Package due derives due dates from triggering events and classifies them.
//
// Offsets are fixed durations, not calendar months: an ISP is due 180 days
// (6 x 30) after activation and a Fire-Evac plan 365 days after upload.
package due

import (
	"math"
	"time"
)

// Kind is the obligation a due date belongs to.
type Kind string

const (
	KindISP      Kind = "isp"
	KindFireEvac Kind = "fire_evac"
)

// Status is the classification of a due date relative to now.
type Status string

const (
	StatusOK      Status = "ok"
	StatusDueSoon Status = "due-soon"
	StatusOverdue Status = "overdue"
)

const (
	day = 24 * time.Hour

	ISPOffset      = 6 * 30 * day
	FireEvacOffset = 365 * day

	// DueSoonWindowDays is inclusive: exactly 30 days out is due-soon.
	DueSoonWindowDays = 30
)

// Offset returns the fixed renewal period for kind, or 0 for unknown kinds.
func Offset(kind Kind) time.Duration {
	switch kind {
	case KindISP:
		return ISPOffset
	case KindFireEvac:
		return FireEvacOffset
	default:
		return 0
	}
}

// ComputeDue returns trigger plus the renewal period for kind.
func ComputeDue(kind Kind, trigger time.Time) time.Time {
	return trigger.Add(Offset(kind))
}

// DaysUntilDue is ceil((dueAt - now) / 24h). A due date 1ms away counts as
// one day; one 1ms past counts as zero days.
func DaysUntilDue(dueAt, now time.Time) int {
	return int(math.Ceil(float64(dueAt.Sub(now)) / float64(day)))
}

// Classify maps a due date onto ok, due-soon or overdue.
func Classify(dueAt, now time.Time) Status {
	return ClassifyDays(DaysUntilDue(dueAt, now))
}

// ClassifyDays classifies a precomputed day count.
func ClassifyDays(days int) Status {
	switch {
	case days < 0:
		return StatusOverdue
	case days <= DueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusOK
	}
}

// InAlertWindow reports whether an alert should exist for the due date:
// anything due within the window or already overdue.
func InAlertWindow(dueAt, now time.Time) bool {
	return DaysUntilDue(dueAt, now) <= DueSoonWindowDays
}
