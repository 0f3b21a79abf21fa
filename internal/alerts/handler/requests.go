package handler

import (
	"strings"

	dErrors "carecompliance/pkg/domain-errors"
)

// UpdateSettingsRequest is the body of PUT /alerts/settings. Both fields are
// required; the schedule is a five-field cron expression.
type UpdateSettingsRequest struct {
	Enabled  *bool  `json:"enabled"`
	Schedule string `json:"schedule"`
}

func (r *UpdateSettingsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Enabled == nil {
		return dErrors.New(dErrors.CodeValidation, "enabled is required")
	}
	r.Schedule = strings.TrimSpace(r.Schedule)
	if r.Schedule == "" {
		return dErrors.New(dErrors.CodeValidation, "schedule is required")
	}
	return nil
}
