package service

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"carecompliance/internal/access"
	"carecompliance/internal/alerts/models"
	"carecompliance/internal/due"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/requestcontext"
)

var tracer = otel.Tracer("carecompliance/internal/alerts")

// candidate is one due item the job considers.
type candidate struct {
	alertType models.AlertType
	location  string
	dueAt     time.Time
	details   map[string]string
}

// GenerateAlerts scans every active ISP and every location's latest
// Fire-Evac plan and inserts an alert for each item inside the alert window
// unless an active alert with the same (type, location, dueAt) exists.
//
// Steps are independent: a failing step is counted and logged and the run
// continues. Only failing to list sources fails the run.
func (s *Service) GenerateAlerts(ctx context.Context) (models.RunSummary, error) {
	ctx, span := tracer.Start(ctx, "alerts.GenerateAlerts", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	now := requestcontext.Now(ctx)
	ctx = requestcontext.WithTime(ctx, now)
	summary := models.RunSummary{StartedAt: now}
	start := time.Now()
	defer func() { s.metrics.ObserveRun(time.Since(start)) }()

	candidates, failed, err := s.collect(ctx, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect failed")
		return summary, err
	}
	summary.Failed = failed
	summary.Scanned = len(candidates)

	for _, c := range candidates {
		alert := models.NewAlert(c.alertType, c.location, c.dueAt, now, c.details)
		created, _, err := s.alerts.InsertIfNoActive(ctx, alert)
		if err != nil {
			summary.Failed++
			s.metrics.IncStepFailure()
			s.logger.ErrorContext(ctx, "alert insert failed",
				"type", c.alertType,
				"location", c.location,
				"error", err,
			)
			continue
		}
		if !created {
			summary.Existing++
			continue
		}
		summary.Created++
		s.metrics.IncCreated(string(c.alertType))
		s.logAudit(ctx, "", audit.EventAlertCreated, c.location, map[string]string{
			"alert_id": alert.ID.String(),
			"type":     string(c.alertType),
		})
	}

	summary.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("alerts.scanned", summary.Scanned),
		attribute.Int("alerts.created", summary.Created),
		attribute.Int("alerts.existing", summary.Existing),
		attribute.Int("alerts.failed", summary.Failed),
	)
	s.logger.InfoContext(ctx, "alert generation finished",
		"scanned", summary.Scanned,
		"created", summary.Created,
		"existing", summary.Existing,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary, nil
}

// collect returns the items inside the alert window. Residents that cannot be
// resolved to a location are counted as failed steps.
func (s *Service) collect(ctx context.Context, now time.Time) ([]candidate, int, error) {
	files, err := s.isp.ListActive(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active isp files")
	}
	plans, err := s.fireEvac.ListLatest(ctx, true, nil)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fire evac plans")
	}

	var (
		out    []candidate
		failed int
	)
	for _, f := range files {
		if f.DueAt == nil || !due.InAlertWindow(*f.DueAt, now) {
			continue
		}
		subj, err := s.subjects.Get(ctx, f.ResidentID)
		if err != nil {
			failed++
			s.metrics.IncStepFailure()
			s.logger.WarnContext(ctx, "skipping isp file without resident",
				"file_id", f.ID,
				"error", err,
			)
			continue
		}
		out = append(out, candidate{
			alertType: models.AlertTypeISP,
			location:  subj.Location,
			dueAt:     *f.DueAt,
			details: map[string]string{
				"file_id":        f.ID.String(),
				"days_until_due": strconv.Itoa(due.DaysUntilDue(*f.DueAt, now)),
			},
		})
	}
	for _, p := range plans {
		if !due.InAlertWindow(p.DueAt, now) {
			continue
		}
		out = append(out, candidate{
			alertType: models.AlertTypeFireEvac,
			location:  p.Location,
			dueAt:     p.DueAt,
			details: map[string]string{
				"plan_id":        p.ID.String(),
				"version":        strconv.Itoa(p.Version),
				"days_until_due": strconv.Itoa(due.DaysUntilDue(p.DueAt, now)),
			},
		})
	}
	return out, failed, nil
}

// RunNow triggers a generation run on behalf of an admin.
func (s *Service) RunNow(ctx context.Context, actorID string) (models.RunSummary, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return models.RunSummary{}, err
	}
	if err := access.RequireRole(role, access.RoleAdmin); err != nil {
		return models.RunSummary{}, err
	}
	s.logger.InfoContext(ctx, "manual alert run requested",
		"request_id", requestcontext.RequestID(ctx),
		"actor_id", role.SubjectID,
	)
	return s.GenerateAlerts(ctx)
}
