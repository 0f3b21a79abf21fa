// Package service runs alert generation and alert lifecycle operations.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	alertmetrics "carecompliance/internal/alerts/metrics"
	"carecompliance/internal/alerts/models"
	docmodels "carecompliance/internal/documents/models"
	"carecompliance/internal/platform/memtx"
	"carecompliance/internal/subjects"
	"carecompliance/pkg/platform/audit"
)

const defaultSchedule = "0 6 * * *"

type AlertStore interface {
	InsertIfNoActive(ctx context.Context, a *models.Alert) (bool, uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Alert) error, mutate func(*models.Alert)) (*models.Alert, error)
	ListActive(ctx context.Context, all bool, locations []string) ([]*models.Alert, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, s *models.Settings) error
}

// ISPSource lists the active ISP file of every resident.
type ISPSource interface {
	ListActive(ctx context.Context) ([]*docmodels.ISPFile, error)
}

// FireEvacSource lists the latest plan per location.
type FireEvacSource interface {
	ListLatest(ctx context.Context, all bool, locations []string) ([]*docmodels.FireEvacPlan, error)
}

type ActorResolver interface {
	Resolve(ctx context.Context, actorID string) (*access.Role, error)
}

type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SettingsListener is notified after settings change.
type SettingsListener func(models.Settings)

type Service struct {
	alerts          AlertStore
	settings        SettingsStore
	isp             ISPSource
	fireEvac        FireEvacSource
	subjects        subjects.Store
	policy          ActorResolver
	tx              StoreTx
	audit           audit.Emitter
	logger          *slog.Logger
	metrics         *alertmetrics.Metrics
	defaultSchedule string
	listeners       []SettingsListener
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

func WithMetrics(m *alertmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithDefaultSchedule sets the schedule reported before settings are saved.
func WithDefaultSchedule(spec string) Option {
	return func(s *Service) {
		if spec != "" {
			s.defaultSchedule = spec
		}
	}
}

func New(alerts AlertStore, settings SettingsStore, isp ISPSource, fireEvac FireEvacSource, subjectStore subjects.Store, policy ActorResolver, opts ...Option) *Service {
	s := &Service{
		alerts:          alerts,
		settings:        settings,
		isp:             isp,
		fireEvac:        fireEvac,
		subjects:        subjectStore,
		policy:          policy,
		defaultSchedule: defaultSchedule,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = memtx.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// OnSettingsChange registers fn to run after every successful update.
func (s *Service) OnSettingsChange(fn SettingsListener) {
	s.listeners = append(s.listeners, fn)
}

func (s *Service) logAudit(ctx context.Context, actorID string, event audit.Event, location string, details map[string]string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Record{
		ActorID:  actorID,
		Event:    event,
		Location: location,
		Details:  details,
	})
}
