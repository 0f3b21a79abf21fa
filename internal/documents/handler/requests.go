package handler

import (
	"strings"
	"time"

	"carecompliance/internal/documents/models"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// FileRequest describes an already uploaded blob.
type FileRequest struct {
	StorageID   string `json:"storage_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (f FileRequest) ref() models.FileRef {
	return models.FileRef{
		StorageID:   strings.TrimSpace(f.StorageID),
		FileName:    strings.TrimSpace(f.FileName),
		ContentType: strings.TrimSpace(f.ContentType),
		Size:        f.Size,
	}
}

// UploadISPRequest is the body of POST /residents/{residentID}/isp-files.
type UploadISPRequest struct {
	VersionLabel  string      `json:"version_label"`
	EffectiveDate string      `json:"effective_date"`
	File          FileRequest `json:"file"`
	Notes         string      `json:"notes,omitempty"`

	effectiveDate time.Time
}

func (r *UploadISPRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.VersionLabel = strings.TrimSpace(r.VersionLabel)
	if r.VersionLabel == "" {
		return dErrors.New(dErrors.CodeValidation, "version_label is required")
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(r.EffectiveDate))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "effective_date must be YYYY-MM-DD")
	}
	r.effectiveDate = date
	return nil
}

func (r *UploadISPRequest) toModel(residentID string) models.UploadISPDraftRequest {
	return models.UploadISPDraftRequest{
		ResidentID:    residentID,
		VersionLabel:  r.VersionLabel,
		EffectiveDate: r.effectiveDate,
		File:          r.File.ref(),
		Notes:         r.Notes,
	}
}

// UploadFireEvacRequest is the body of POST /locations/{location}/fire-evac-plans.
type UploadFireEvacRequest struct {
	File FileRequest `json:"file"`
}

func (r *UploadFireEvacRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.File.StorageID) == "" {
		return dErrors.New(dErrors.CodeValidation, "file is required")
	}
	return nil
}

// RequestUploadRequest is the body of POST /uploads.
type RequestUploadRequest struct {
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (r *RequestUploadRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.ContentType = strings.TrimSpace(r.ContentType)
	if r.ContentType == "" {
		return dErrors.New(dErrors.CodeValidation, "content_type is required")
	}
	return nil
}

// DownloadRequest is the body of POST /downloads.
type DownloadRequest struct {
	Item domain.ItemRef `json:"item"`
}

func (r *DownloadRequest) Validate() error {
	if r == nil || r.Item.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "item is required")
	}
	return nil
}
