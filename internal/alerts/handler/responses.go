package handler

import (
	"time"

	"carecompliance/internal/alerts/models"
)

type AlertResponse struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Location    string            `json:"location"`
	DueAt       time.Time         `json:"due_at"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	DismissedBy string            `json:"dismissed_by,omitempty"`
	DismissedAt *time.Time        `json:"dismissed_at,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

type SettingsResponse struct {
	Enabled   bool       `json:"enabled"`
	Schedule  string     `json:"schedule"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type RunResponse struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Scanned    int       `json:"scanned"`
	Created    int       `json:"created"`
	Existing   int       `json:"existing"`
	Failed     int       `json:"failed"`
}

func toAlertResponse(a *models.Alert) AlertResponse {
	return AlertResponse{
		ID:          a.ID.String(),
		Type:        string(a.Type),
		Location:    a.Location,
		DueAt:       a.DueAt,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		DismissedBy: a.DismissedBy,
		DismissedAt: a.DismissedAt,
		Details:     a.Details,
	}
}

func toSettingsResponse(st *models.Settings) SettingsResponse {
	resp := SettingsResponse{Enabled: st.Enabled, Schedule: st.Schedule, UpdatedBy: st.UpdatedBy}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

func toRunResponse(s models.RunSummary) RunResponse {
	return RunResponse{
		StartedAt:  s.StartedAt,
		DurationMs: s.Duration.Milliseconds(),
		Scanned:    s.Scanned,
		Created:    s.Created,
		Existing:   s.Existing,
		Failed:     s.Failed,
	}
}
