package models

import (
	"time"

	"github.com/google/uuid"

	"carecompliance/internal/due"
	"carecompliance/pkg/domain"
)

// Item is one tracked obligation as shown to an actor.
type Item struct {
	Ref           domain.ItemRef `json:"ref"`
	Location      string         `json:"location"`
	Type          due.Kind       `json:"type"`
	DueDate       time.Time      `json:"due_date"`
	Status        due.Status     `json:"status"`
	DaysUntilDue  int            `json:"days_until_due"`
	LastAction    time.Time      `json:"last_action"`
	ActiveAlertID *uuid.UUID     `json:"active_alert_id,omitempty"`
}

// RecipientResult is the delivery outcome for one reminder email.
type RecipientResult struct {
	SubjectID string `json:"subject_id"`
	Delivered bool   `json:"delivered"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReminderSummary reports a reminder batch. NotFound lists refs that did not
// resolve to a visible item.
type ReminderSummary struct {
	Requested  int               `json:"requested"`
	Resolved   int               `json:"resolved"`
	NotFound   []domain.ItemRef  `json:"not_found"`
	Sent       int               `json:"sent"`
	Failed     int               `json:"failed"`
	Recipients []RecipientResult `json:"recipients"`
}
