package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/privacy"
)

// ISPStatus is the lifecycle state of an ISP file.
type ISPStatus string

const (
	ISPStatusDraft    ISPStatus = "draft"
	ISPStatusActive   ISPStatus = "active"
	ISPStatusArchived ISPStatus = "archived"
)

// CanTransitionTo encodes the ISP state machine:
// draft -> active, draft -> archived, active -> archived. archived is terminal.
func (s ISPStatus) CanTransitionTo(next ISPStatus) bool {
	switch s {
	case ISPStatusDraft:
		return next == ISPStatusActive || next == ISPStatusArchived
	case ISPStatusActive:
		return next == ISPStatusArchived
	default:
		return false
	}
}

// Allowed upload content types.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedContentTypes = map[string]struct{}{
	ContentTypePDF:  {},
	ContentTypeDOCX: {},
}

const maxVersionLabelLength = 64

// FileRef points at an uploaded blob. The metadata is supplied by the client
// at upload time and validated here; file content is never inspected.
type FileRef struct {
	StorageID   string `json:"storage_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Validate checks the reference against the allowed content types and maxSize.
func (f FileRef) Validate(maxSize int64) error {
	if strings.TrimSpace(f.StorageID) == "" {
		return dErrors.New(dErrors.CodeValidation, "file storage id is required")
	}
	if strings.TrimSpace(f.FileName) == "" {
		return dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	return ValidateUpload(f.ContentType, f.Size, maxSize)
}

// ValidateUpload checks content type and size before an upload slot is issued.
func ValidateUpload(contentType string, size, maxSize int64) error {
	if _, ok := allowedContentTypes[normalizeContentType(contentType)]; !ok {
		return dErrors.New(dErrors.CodeValidation, "file must be a PDF or DOCX document")
	}
	if size <= 0 {
		return dErrors.New(dErrors.CodeValidation, "file size must be positive")
	}
	if size > maxSize {
		return dErrors.New(dErrors.CodeValidation, "file exceeds the maximum upload size")
	}
	return nil
}

func normalizeContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

// ValidateNotes rejects free text that looks like identifying information.
func ValidateNotes(notes string) error {
	if finding, found := privacy.Default().Check(notes); found {
		return dErrors.New(dErrors.CodeValidation, "notes must not contain identifying information ("+string(finding.Class)+")")
	}
	return nil
}

// ISPFile is one version of a resident's Individual Service Plan.
//
// Invariants:
//   - VersionLabel is unique per resident
//   - at most one file per resident is active
//   - DueAt and ActivatedAt are set exactly when the file has been active
type ISPFile struct {
	ID            uuid.UUID  `json:"id"`
	ResidentID    string     `json:"resident_id"`
	VersionLabel  string     `json:"version_label"`
	EffectiveDate time.Time  `json:"effective_date"`
	Status        ISPStatus  `json:"status"`
	File          FileRef    `json:"file"`
	Notes         string     `json:"notes,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	UploadedBy    string     `json:"uploaded_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewISPDraft validates client data and builds a draft.
func NewISPDraft(residentID, versionLabel string, effectiveDate time.Time, file FileRef, notes, uploadedBy string, maxSize int64, now time.Time) (*ISPFile, error) {
	residentID = strings.TrimSpace(residentID)
	versionLabel = strings.TrimSpace(versionLabel)
	notes = strings.TrimSpace(notes)

	if residentID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "resident id is required")
	}
	if versionLabel == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "version label is required")
	}
	if len(versionLabel) > maxVersionLabelLength {
		return nil, dErrors.New(dErrors.CodeValidation, "version label is too long")
	}
	if effectiveDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "effective date is required")
	}
	if err := file.Validate(maxSize); err != nil {
		return nil, err
	}
	if err := ValidateNotes(notes); err != nil {
		return nil, err
	}

	return &ISPFile{
		ID:            uuid.New(),
		ResidentID:    residentID,
		VersionLabel:  versionLabel,
		EffectiveDate: effectiveDate,
		Status:        ISPStatusDraft,
		File:          file,
		Notes:         notes,
		UploadedBy:    uploadedBy,
		CreatedAt:     now,
	}, nil
}

func (f *ISPFile) IsActive() bool {
	return f.Status == ISPStatusActive
}

// CanActivate allows activation of drafts only.
func (f *ISPFile) CanActivate() error {
	if f.Status != ISPStatusDraft {
		return dErrors.New(dErrors.CodeInvalidState, "only draft files can be activated")
	}
	return nil
}

// ApplyActivation marks the file active with its computed due date.
func (f *ISPFile) ApplyActivation(now, dueAt time.Time) {
	f.Status = ISPStatusActive
	f.ActivatedAt = &now
	f.DueAt = &dueAt
}

func (f *ISPFile) CanArchive() error {
	if !f.Status.CanTransitionTo(ISPStatusArchived) {
		return dErrors.New(dErrors.CodeInvalidState, "file is already archived")
	}
	return nil
}

func (f *ISPFile) ApplyArchive(now time.Time) {
	f.Status = ISPStatusArchived
	f.ArchivedAt = &now
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (f *ISPFile) Clone() *ISPFile {
	c := *f
	c.DueAt = cloneTime(f.DueAt)
	c.ActivatedAt = cloneTime(f.ActivatedAt)
	c.ArchivedAt = cloneTime(f.ArchivedAt)
	return &c
}

// FireEvacPlan is one immutable version of a location's evacuation plan.
// Versions per location start at 1 and increase by one per upload.
type FireEvacPlan struct {
	ID         uuid.UUID `json:"id"`
	Location   string    `json:"location"`
	Version    int       `json:"version"`
	File       FileRef   `json:"file"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
	DueAt      time.Time `json:"due_at"`
}

func (p *FireEvacPlan) Clone() *FireEvacPlan {
	c := *p
	return &c
}

// UploadHandle is issued before a client uploads a blob.
type UploadHandle struct {
	StorageID string    `json:"storage_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DownloadLink is a time-limited URL for a stored file.
type DownloadLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// UploadISPDraftRequest carries the client-supplied fields of a draft upload.
type UploadISPDraftRequest struct {
	ResidentID    string
	VersionLabel  string
	EffectiveDate time.Time
	File          FileRef
	Notes         string
}
