package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	"carecompliance/internal/documents/models"
	"carecompliance/internal/due"
	"carecompliance/internal/platform/memtx"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

// UploadFireEvacPlan appends the next plan version for location. The version
// comes from the location's counter, advanced in the same unit of work as the
// insert.
func (s *Service) UploadFireEvacPlan(ctx context.Context, actorID, location string, file models.FileRef) (*models.FireEvacPlan, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin, access.RoleSupervisor); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "location is required")
	}
	if err := access.RequireLocationAccess(role, location); err != nil {
		return nil, err
	}
	if err := file.Validate(s.maxUpload); err != nil {
		s.metrics.IncUploadRejected("fire_evac")
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var plan *models.FireEvacPlan
	txCtx := memtx.WithShardKey(ctx, "fire-evac:"+location)
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		version, err := s.fireEvac.NextVersion(txCtx, location)
		if err != nil {
			return err
		}
		p := &models.FireEvacPlan{
			ID:         uuid.New(),
			Location:   location,
			Version:    version,
			File:       file,
			UploadedBy: role.SubjectID,
			UploadedAt: now,
			DueAt:      due.ComputeDue(due.KindFireEvac, now),
		}
		if err := s.fireEvac.Create(txCtx, p); err != nil {
			return err
		}
		plan = p
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "location not found", "store fire evac plan")
	}

	s.logAudit(ctx, role.SubjectID, audit.EventFireEvacUploaded, location, map[string]string{
		"plan_id": plan.ID.String(),
		"version": strconv.Itoa(plan.Version),
	})
	s.metrics.IncFireEvacUploaded()
	return plan, nil
}

// LatestFireEvacPlan returns the highest version for location, or nil when
// the location has none. Locations outside the actor's scope are NotFound.
func (s *Service) LatestFireEvacPlan(ctx context.Context, actorID, location string) (*models.FireEvacPlan, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireLocation(role, location); err != nil {
		return nil, err
	}
	plan, err := s.fireEvac.Latest(ctx, location)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fire evac plan")
	}
	return plan, nil
}

// ListFireEvacPlans returns the version history for location, newest first.
func (s *Service) ListFireEvacPlans(ctx context.Context, actorID, location string) ([]*models.FireEvacPlan, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireLocation(role, location); err != nil {
		return nil, err
	}
	plans, err := s.fireEvac.ListByLocation(ctx, location)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fire evac plans")
	}
	return plans, nil
}

// DownloadURL resolves an overview item to its current file. ISP items point
// at the resident's active file; Fire-Evac items at a specific plan.
func (s *Service) DownloadURL(ctx context.Context, actorID string, ref domain.ItemRef) (*models.DownloadLink, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case domain.ItemKindISP:
		if _, err := s.residentLocation(ctx, role, ref.EntityID); err != nil {
			return nil, err
		}
		f, err := s.isp.FindActiveByResident(ctx, ref.EntityID)
		if err != nil {
			return nil, wrapStoreErr(err, "isp file not found", "load isp file")
		}
		return s.downloadLink(ctx, f.File)
	case domain.ItemKindFireEvac:
		id, err := uuid.Parse(ref.EntityID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeNotFound, "fire evac plan not found")
		}
		p, err := s.fireEvac.FindByID(ctx, id)
		if err != nil {
			return nil, wrapStoreErr(err, "fire evac plan not found", "load fire evac plan")
		}
		if err := access.RequireLocation(role, p.Location); err != nil {
			return nil, dErrors.New(dErrors.CodeNotFound, "fire evac plan not found")
		}
		return s.downloadLink(ctx, p.File)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unsupported item kind")
	}
}
