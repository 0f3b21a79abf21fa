// Package service builds the per-actor compliance overview and the reminder
// and export operations on top of it.
package service

import (
	"context"
	"log/slog"

	alertmodels "carecompliance/internal/alerts/models"
	"carecompliance/internal/access"
	checklistmodels "carecompliance/internal/checklist/models"
	docmodels "carecompliance/internal/documents/models"
	"carecompliance/internal/notify"
	"carecompliance/internal/subjects"
	"carecompliance/pkg/platform/audit"
)

type ISPSource interface {
	ListActive(ctx context.Context) ([]*docmodels.ISPFile, error)
}

type FireEvacSource interface {
	ListLatest(ctx context.Context, all bool, locations []string) ([]*docmodels.FireEvacPlan, error)
}

type AlertSource interface {
	ListActive(ctx context.Context, all bool, locations []string) ([]*alertmodels.Alert, error)
}

type LinkSource interface {
	ListByResidents(ctx context.Context, residentIDs []string) ([]*checklistmodels.Link, error)
}

type TemplateSource interface {
	Get(ctx context.Context, id string) (*checklistmodels.Template, error)
}

// Policy resolves actors and reminder recipients.
type Policy interface {
	Resolve(ctx context.Context, actorID string) (*access.Role, error)
	Recipients(ctx context.Context, location string) ([]*access.Role, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msgs []notify.Message) []notify.Result
}

type Service struct {
	subjects   subjects.Store
	isp        ISPSource
	fireEvac   FireEvacSource
	alerts     AlertSource
	links      LinkSource
	templates  TemplateSource
	policy     Policy
	dispatcher Dispatcher
	audit      audit.Emitter
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.audit = emitter
	}
}

// Sources groups the read-side stores the overview joins.
type Sources struct {
	Subjects  subjects.Store
	ISP       ISPSource
	FireEvac  FireEvacSource
	Alerts    AlertSource
	Links     LinkSource
	Templates TemplateSource
}

func New(src Sources, policy Policy, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		subjects:   src.Subjects,
		isp:        src.ISP,
		fireEvac:   src.FireEvac,
		alerts:     src.Alerts,
		links:      src.Links,
		templates:  src.Templates,
		policy:     policy,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) logAudit(ctx context.Context, actorID string, event audit.Event, details map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Record{
		ActorID: actorID,
		Event:   event,
		Details: details,
	})
}
