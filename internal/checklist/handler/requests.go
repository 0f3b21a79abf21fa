package handler

import (
	"strings"

	"carecompliance/internal/checklist/models"
	dErrors "carecompliance/pkg/domain-errors"
)

// SendChecklistRequest is the body of POST /residents/{residentID}/checklists.
type SendChecklistRequest struct {
	TemplateID    string `json:"template_id"`
	GuardianEmail string `json:"guardian_email"`
}

func (r *SendChecklistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	r.GuardianEmail = strings.TrimSpace(r.GuardianEmail)
	if r.TemplateID == "" {
		return dErrors.New(dErrors.CodeValidation, "template_id is required")
	}
	if r.GuardianEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "guardian_email is required")
	}
	return nil
}

type ResponseItem struct {
	ItemID       string `json:"item_id"`
	Acknowledged bool   `json:"acknowledged"`
	Comment      string `json:"comment,omitempty"`
}

// SubmitChecklistRequest is the guardian's submission.
type SubmitChecklistRequest struct {
	Token     string         `json:"token"`
	Responses []ResponseItem `json:"responses"`
}

func (r *SubmitChecklistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	if len(r.Responses) == 0 {
		return dErrors.New(dErrors.CodeValidation, "responses are required")
	}
	return nil
}

func (r *SubmitChecklistRequest) responses() []models.Response {
	out := make([]models.Response, 0, len(r.Responses))
	for _, item := range r.Responses {
		out = append(out, models.Response{ItemID: item.ItemID, Acknowledged: item.Acknowledged, Comment: item.Comment})
	}
	return out
}
