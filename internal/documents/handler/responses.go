package handler

import (
	"time"

	"carecompliance/internal/documents/models"
)

type ISPFileResponse struct {
	ID            string         `json:"id"`
	ResidentID    string         `json:"resident_id"`
	VersionLabel  string         `json:"version_label"`
	EffectiveDate string         `json:"effective_date"`
	Status        string         `json:"status"`
	File          models.FileRef `json:"file"`
	Notes         string         `json:"notes,omitempty"`
	DueAt         *time.Time     `json:"due_at,omitempty"`
	ActivatedAt   *time.Time     `json:"activated_at,omitempty"`
	ArchivedAt    *time.Time     `json:"archived_at,omitempty"`
	UploadedBy    string         `json:"uploaded_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toISPFileResponse(f *models.ISPFile) ISPFileResponse {
	return ISPFileResponse{
		ID:            f.ID.String(),
		ResidentID:    f.ResidentID,
		VersionLabel:  f.VersionLabel,
		EffectiveDate: f.EffectiveDate.Format(dateLayout),
		Status:        string(f.Status),
		File:          f.File,
		Notes:         f.Notes,
		DueAt:         f.DueAt,
		ActivatedAt:   f.ActivatedAt,
		ArchivedAt:    f.ArchivedAt,
		UploadedBy:    f.UploadedBy,
		CreatedAt:     f.CreatedAt,
	}
}

type ISPFileListResponse struct {
	Files []ISPFileResponse `json:"files"`
}

type FireEvacPlanResponse struct {
	ID         string         `json:"id"`
	Location   string         `json:"location"`
	Version    int            `json:"version"`
	File       models.FileRef `json:"file"`
	UploadedBy string         `json:"uploaded_by"`
	UploadedAt time.Time      `json:"uploaded_at"`
	DueAt      time.Time      `json:"due_at"`
}

func toFireEvacPlanResponse(p *models.FireEvacPlan) FireEvacPlanResponse {
	return FireEvacPlanResponse{
		ID:         p.ID.String(),
		Location:   p.Location,
		Version:    p.Version,
		File:       p.File,
		UploadedBy: p.UploadedBy,
		UploadedAt: p.UploadedAt,
		DueAt:      p.DueAt,
	}
}

type FireEvacPlanListResponse struct {
	Plans []FireEvacPlanResponse `json:"plans"`
}
