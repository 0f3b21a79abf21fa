package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"carecompliance/internal/access"
	"carecompliance/internal/alerts/models"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

// GetSettings returns the alert schedule settings to any resolved role.
func (s *Service) GetSettings(ctx context.Context, actorID string) (*models.Settings, error) {
	if _, err := s.policy.Resolve(ctx, actorID); err != nil {
		return nil, err
	}
	return s.CurrentSettings(ctx)
}

// CurrentSettings reads settings without an actor, for the scheduler. Until
// settings are first saved the job is enabled on the default schedule.
func (s *Service) CurrentSettings(ctx context.Context) (*models.Settings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.Settings{Enabled: true, Schedule: s.defaultSchedule}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load alert settings")
	}
	return st, nil
}

// UpdateSettings replaces the singleton settings. Admin only.
func (s *Service) UpdateSettings(ctx context.Context, actorID string, enabled bool, schedule string) (*models.Settings, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin); err != nil {
		return nil, err
	}
	schedule = strings.TrimSpace(schedule)
	if err := models.ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	st := &models.Settings{
		Enabled:   enabled,
		Schedule:  schedule,
		UpdatedBy: role.SubjectID,
		UpdatedAt: requestcontext.Now(ctx),
	}
	if err := s.settings.Save(ctx, st); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save alert settings")
	}

	s.logAudit(ctx, role.SubjectID, audit.EventSettingsUpdated, "", map[string]string{
		"enabled":  strconv.FormatBool(enabled),
		"schedule": schedule,
	})
	for _, fn := range s.listeners {
		fn(*st)
	}
	return st, nil
}
