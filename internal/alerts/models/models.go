package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"carecompliance/internal/due"
	dErrors "carecompliance/pkg/domain-errors"
)

// AlertType reuses the due-date kinds: one alert type per obligation.
type AlertType = due.Kind

const (
	AlertTypeISP      = due.KindISP
	AlertTypeFireEvac = due.KindFireEvac
)

// ParseAlertType validates a type from external input.
func ParseAlertType(s string) (AlertType, error) {
	switch t := due.Kind(strings.TrimSpace(s)); t {
	case AlertTypeISP, AlertTypeFireEvac:
		return t, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unsupported alert type: "+s)
	}
}

// DedupKey identifies alerts that must not be active twice.
type DedupKey struct {
	Type     AlertType
	Location string
	DueAt    time.Time
}

// Alert is a compliance alert produced by the generation job.
//
// Invariants:
//   - at most one active alert per DedupKey
//   - Active only moves from true to false, through dismissal
//   - Details never carry identifying text
type Alert struct {
	ID          uuid.UUID         `json:"id"`
	Type        AlertType         `json:"type"`
	Location    string            `json:"location"`
	DueAt       time.Time         `json:"due_at"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	DismissedBy string            `json:"dismissed_by,omitempty"`
	DismissedAt *time.Time        `json:"dismissed_at,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// NewAlert builds an active alert.
func NewAlert(t AlertType, location string, dueAt, now time.Time, details map[string]string) *Alert {
	return &Alert{
		ID:        uuid.New(),
		Type:      t,
		Location:  location,
		DueAt:     dueAt,
		Active:    true,
		CreatedAt: now,
		Details:   details,
	}
}

func (a *Alert) Key() DedupKey {
	return DedupKey{Type: a.Type, Location: a.Location, DueAt: a.DueAt.UTC()}
}

func (a *Alert) CanDismiss() error {
	if !a.Active {
		return dErrors.New(dErrors.CodeInvalidState, "alert is already dismissed")
	}
	return nil
}

func (a *Alert) ApplyDismiss(actorID string, now time.Time) {
	a.Active = false
	a.DismissedBy = actorID
	a.DismissedAt = &now
}

func (a *Alert) Clone() *Alert {
	c := *a
	if a.DismissedAt != nil {
		t := *a.DismissedAt
		c.DismissedAt = &t
	}
	if a.Details != nil {
		c.Details = make(map[string]string, len(a.Details))
		for k, v := range a.Details {
			c.Details[k] = v
		}
	}
	return &c
}

// Settings is the singleton alert schedule configuration.
type Settings struct {
	Enabled   bool      `json:"enabled"`
	Schedule  string    `json:"schedule"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateSchedule accepts standard five-field cron specs and descriptors
// such as "@daily".
func ValidateSchedule(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return dErrors.New(dErrors.CodeValidation, "schedule is required")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return dErrors.New(dErrors.CodeValidation, "schedule is not a valid cron expression")
	}
	return nil
}

// RunSummary reports one generation run.
type RunSummary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Scanned   int           `json:"scanned"`
	Created   int           `json:"created"`
	Existing  int           `json:"existing"`
	Failed    int           `json:"failed"`
}
