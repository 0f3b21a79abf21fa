package handler

import (
	"time"

	"carecompliance/internal/checklist/models"
	"carecompliance/internal/checklist/service"
)

type TemplateListResponse struct {
	Templates []*models.Template `json:"templates"`
}

type LinkResponse struct {
	ID            string     `json:"id"`
	ResidentID    string     `json:"resident_id"`
	TemplateID    string     `json:"template_id"`
	GuardianEmail string     `json:"guardian_email"`
	SentAt        time.Time  `json:"sent_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type DeliveryResponse struct {
	Delivered bool   `json:"delivered"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SendResponse struct {
	Link     LinkResponse     `json:"link"`
	Delivery DeliveryResponse `json:"delivery"`
}

type FormResponse struct {
	TemplateName string                `json:"template_name"`
	Items        []models.TemplateItem `json:"items"`
	Status       string                `json:"status"`
	ExpiresAt    time.Time             `json:"expires_at"`
}

type SubmitResponse struct {
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toSendResponse(res *service.SendResult, now time.Time) SendResponse {
	l := res.Link
	out := SendResponse{
		Link: LinkResponse{
			ID:            l.ID.String(),
			ResidentID:    l.ResidentID,
			TemplateID:    l.TemplateID,
			GuardianEmail: l.GuardianEmail,
			SentAt:        l.SentAt,
			ExpiresAt:     l.ExpiresAt,
			Status:        string(l.Status(now)),
			CompletedAt:   l.CompletedAt,
		},
		Delivery: DeliveryResponse{Delivered: res.Delivery.OK(), MessageID: res.Delivery.MessageID},
	}
	if res.Delivery.Err != nil {
		out.Delivery.Error = "delivery failed"
	}
	return out
}
