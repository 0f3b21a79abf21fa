package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	"carecompliance/internal/alerts/models"
	"carecompliance/internal/platform/memtx"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

// DismissAlert deactivates an alert. It stays dismissed; a later run may
// create a new alert for the same key.
func (s *Service) DismissAlert(ctx context.Context, actorID string, alertID uuid.UUID) (*models.Alert, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireRole(role, access.RoleAdmin, access.RoleSupervisor); err != nil {
		return nil, err
	}
	current, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := access.RequireLocation(role, current.Location); err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
	}

	now := requestcontext.Now(ctx)
	var dismissed *models.Alert
	txCtx := memtx.WithShardKey(ctx, "alert:"+alertID.String())
	err = s.tx.RunInTx(txCtx, func(txCtx context.Context) error {
		var err error
		dismissed, err = s.alerts.Execute(txCtx, alertID,
			func(a *models.Alert) error { return a.CanDismiss() },
			func(a *models.Alert) { a.ApplyDismiss(role.SubjectID, now) })
		return err
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logAudit(ctx, role.SubjectID, audit.EventAlertDismissed, dismissed.Location, map[string]string{
		"alert_id": dismissed.ID.String(),
		"type":     string(dismissed.Type),
	})
	s.metrics.IncDismissed()
	return dismissed, nil
}

// ListActiveAlerts returns the actor's visible active alerts. A non-empty
// location narrows the list; a location outside scope is NotFound.
func (s *Service) ListActiveAlerts(ctx context.Context, actorID, location string) ([]*models.Alert, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	all, locations := access.ScopeLocations(role)
	if location = strings.TrimSpace(location); location != "" {
		if err := access.RequireLocation(role, location); err != nil {
			return nil, err
		}
		all, locations = false, []string{location}
	}
	alerts, err := s.alerts.ListActive(ctx, all, locations)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	return alerts, nil
}

func wrapStoreErr(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update alert")
}
