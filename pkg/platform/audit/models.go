// Package audit records every state-changing compliance action.
//
// Records are append-only. Details are screened by the privacy policy before
// they reach a sink, so no sink ever sees identifying free text.
package audit

import (
	"context"
	"time"
)

// Event names a state-changing action.
type Event string

const (
	EventISPDraftUploaded   Event = "isp_draft_uploaded"
	EventISPActivated       Event = "isp_activated"
	EventISPArchived        Event = "isp_archived"
	EventFireEvacUploaded   Event = "fire_evac_uploaded"
	EventAlertCreated       Event = "alert_created"
	EventAlertDismissed     Event = "alert_dismissed"
	EventSettingsUpdated    Event = "alert_settings_updated"
	EventRemindersSent      Event = "reminders_sent"
	EventListExported       Event = "list_exported"
	EventChecklistSent      Event = "checklist_sent"
	EventChecklistResent    Event = "checklist_resent"
	EventChecklistSubmitted Event = "checklist_submitted"
)

// Record is a single audit entry. ActorID is empty for unauthenticated
// actions (guardian submissions) and scheduled runs.
type Record struct {
	ActorID   string
	Event     Event
	Timestamp time.Time
	DeviceID  string
	Location  string
	RequestID string
	Details   map[string]string
}

// Sink persists records. Implementations must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, record Record) error
}

// Emitter is what services depend on. Emit never blocks on the sink and
// never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, record Record)
}
