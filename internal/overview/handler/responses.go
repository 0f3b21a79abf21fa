package handler

import (
	"time"

	checklistmodels "carecompliance/internal/checklist/models"
	"carecompliance/internal/overview/models"
	"carecompliance/pkg/domain"
)

// ItemResponse carries the ref in both forms so older clients can keep
// sending the string id back.
type ItemResponse struct {
	ID            string         `json:"id"`
	Ref           domain.ItemRef `json:"ref"`
	Location      string         `json:"location"`
	Type          string         `json:"type"`
	DueDate       time.Time      `json:"due_date"`
	Status        string         `json:"status"`
	DaysUntilDue  int            `json:"days_until_due"`
	LastAction    *time.Time     `json:"last_action,omitempty"`
	ActiveAlertID string         `json:"active_alert_id,omitempty"`
}

type OverviewResponse struct {
	Items []ItemResponse `json:"items"`
}

type ChecklistOverviewResponse struct {
	Links []checklistmodels.LinkSummary `json:"links"`
}

func toItemResponse(it models.Item) ItemResponse {
	resp := ItemResponse{
		ID:           it.Ref.String(),
		Ref:          it.Ref,
		Location:     it.Location,
		Type:         string(it.Type),
		DueDate:      it.DueDate,
		Status:       string(it.Status),
		DaysUntilDue: it.DaysUntilDue,
	}
	if !it.LastAction.IsZero() {
		t := it.LastAction
		resp.LastAction = &t
	}
	if it.ActiveAlertID != nil {
		resp.ActiveAlertID = it.ActiveAlertID.String()
	}
	return resp
}
