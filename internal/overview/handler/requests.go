package handler

import (
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
)

const maxItemsPerRequest = 500

// SendRemindersRequest selects overview items. Items accept either the
// structured {kind, entity_id} form or the "<kind>-<id>" string.
type SendRemindersRequest struct {
	Items []domain.ItemRef `json:"items"`
}

func (r *SendRemindersRequest) Validate() error {
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one item is required")
	}
	if len(r.Items) > maxItemsPerRequest {
		return dErrors.New(dErrors.CodeValidation, "too many items")
	}
	return nil
}

// ExportRequest selects items to export. An empty body exports everything.
type ExportRequest struct {
	Items []domain.ItemRef `json:"items"`
}

func (r *ExportRequest) Validate() error {
	if len(r.Items) > maxItemsPerRequest {
		return dErrors.New(dErrors.CodeValidation, "too many items")
	}
	return nil
}
