package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	"carecompliance/internal/documents/models"
	"carecompliance/internal/due"
	"carecompliance/internal/platform/memtx"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

// UploadISPDraft stores a new draft version for a resident. Any role with
// access to the resident's location may upload.
func (s *Service) UploadISPDraft(ctx context.Context, actorID string, req models.UploadISPDraftRequest) (*models.ISPFile, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	location, err := s.residentLocation(ctx, role, req.ResidentID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	file, err := models.NewISPDraft(req.ResidentID, req.VersionLabel, req.EffectiveDate, req.File, req.Notes, role.SubjectID, s.maxUpload, now)
	if err != nil {
		s.metrics.IncUploadRejected("isp")
		return nil, err
	}

	if err := s.isp.Create(ctx, file); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncUploadRejected("isp")
			return nil, dErrors.New(dErrors.CodeValidation, "version label already used for this resident")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store isp file")
	}

	s.logAudit(ctx, role.SubjectID, audit.EventISPDraftUploaded, location, map[string]string{
		"file_id":     file.ID.String(),
		"resident_id": file.ResidentID,
	})
	s.metrics.IncISPUploaded()
	return file, nil
}

// ActivateISPFile makes a draft the resident's active plan. Any other active
// file for the resident is archived in the same unit of work.
func (s *Service) ActivateISPFile(ctx context.Context, actorID string, fileID uuid.UUID) (*models.ISPFile, error) {
	start := time.Now()
	defer s.metrics.ObserveActivate(start)

	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin, access.RoleSupervisor); err != nil {
		return nil, err
	}
	current, location, err := s.visibleISPFile(ctx, role, fileID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	dueAt := due.ComputeDue(due.KindISP, now)

	var (
		activated  *models.ISPFile
		superseded int
	)
	txCtx := memtx.WithShardKey(ctx, "isp:"+current.ResidentID)
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		fresh, err := s.isp.FindByID(txCtx, current.ID)
		if err != nil {
			return err
		}
		if err := fresh.CanActivate(); err != nil {
			return err
		}
		n, err := s.isp.ArchiveActiveForResident(txCtx, current.ResidentID, current.ID, now)
		if err != nil {
			return err
		}
		superseded = n
		activated, err = s.isp.Execute(txCtx, current.ID,
			func(f *models.ISPFile) error { return f.CanActivate() },
			func(f *models.ISPFile) { f.ApplyActivation(now, dueAt) })
		return err
	})
	if err != nil {
		return nil, wrapStoreErr(err, "isp file not found", "activate isp file")
	}

	s.logAudit(ctx, role.SubjectID, audit.EventISPActivated, location, map[string]string{
		"file_id":     activated.ID.String(),
		"resident_id": activated.ResidentID,
		"superseded":  strconv.Itoa(superseded),
	})
	s.metrics.IncISPActivated()
	s.metrics.AddISPArchived(superseded)
	s.logger.InfoContext(ctx, "isp file activated",
		"request_id", requestcontext.RequestID(ctx),
		"file_id", activated.ID,
		"superseded", superseded,
	)
	return activated, nil
}

// ArchiveISPFile soft-deletes a file. Admin only.
func (s *Service) ArchiveISPFile(ctx context.Context, actorID string, fileID uuid.UUID) (*models.ISPFile, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin); err != nil {
		return nil, err
	}
	current, location, err := s.visibleISPFile(ctx, role, fileID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var archived *models.ISPFile
	txCtx := memtx.WithShardKey(ctx, "isp:"+current.ResidentID)
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		var err error
		archived, err = s.isp.Execute(txCtx, fileID,
			func(f *models.ISPFile) error { return f.CanArchive() },
			func(f *models.ISPFile) { f.ApplyArchive(now) })
		return err
	})
	if err != nil {
		return nil, wrapStoreErr(err, "isp file not found", "archive isp file")
	}

	s.logAudit(ctx, role.SubjectID, audit.EventISPArchived, location, map[string]string{
		"file_id":     archived.ID.String(),
		"resident_id": archived.ResidentID,
	})
	s.metrics.AddISPArchived(1)
	return archived, nil
}

// ListISPFiles returns every version for a resident, newest first.
func (s *Service) ListISPFiles(ctx context.Context, actorID, residentID string) ([]*models.ISPFile, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.residentLocation(ctx, role, residentID); err != nil {
		return nil, err
	}
	files, err := s.isp.ListByResident(ctx, residentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list isp files")
	}
	return files, nil
}

// GetISPFile returns one file the actor can see.
func (s *Service) GetISPFile(ctx context.Context, actorID string, fileID uuid.UUID) (*models.ISPFile, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	f, _, err := s.visibleISPFile(ctx, role, fileID)
	return f, err
}

// ISPFileDownloadURL returns a time-limited link to the file's blob.
func (s *Service) ISPFileDownloadURL(ctx context.Context, actorID string, fileID uuid.UUID) (*models.DownloadLink, error) {
	f, err := s.GetISPFile(ctx, actorID, fileID)
	if err != nil {
		return nil, err
	}
	return s.downloadLink(ctx, f.File)
}

// visibleISPFile loads a file and hides it when its resident is outside the
// actor's locations.
func (s *Service) visibleISPFile(ctx context.Context, role *access.Role, fileID uuid.UUID) (*models.ISPFile, string, error) {
	f, err := s.isp.FindByID(ctx, fileID)
	if err != nil {
		return nil, "", wrapStoreErr(err, "isp file not found", "load isp file")
	}
	location, err := s.residentLocation(ctx, role, f.ResidentID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "isp file not found")
		}
		return nil, "", err
	}
	return f, location, nil
}

func (s *Service) downloadLink(ctx context.Context, ref models.FileRef) (*models.DownloadLink, error) {
	link, err := s.blobs.DownloadURL(ctx, ref, requestcontext.Now(ctx))
	if err != nil {
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeExternalService, "failed to sign download url")
	}
	return link, nil
}
