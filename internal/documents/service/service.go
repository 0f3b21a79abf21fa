// Package service owns the ISP and Fire-Evac document lifecycles.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	docmetrics "carecompliance/internal/documents/metrics"
	"carecompliance/internal/documents/models"
	"carecompliance/internal/platform/memtx"
	"carecompliance/internal/subjects"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

const defaultMaxUploadBytes = 10 << 20

type ISPStore interface {
	Create(ctx context.Context, f *models.ISPFile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ISPFile, error)
	ListByResident(ctx context.Context, residentID string) ([]*models.ISPFile, error)
	FindActiveByResident(ctx context.Context, residentID string) (*models.ISPFile, error)
	ArchiveActiveForResident(ctx context.Context, residentID string, exceptID uuid.UUID, now time.Time) (int, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.ISPFile) error, mutate func(*models.ISPFile)) (*models.ISPFile, error)
}

type FireEvacStore interface {
	NextVersion(ctx context.Context, location string) (int, error)
	Create(ctx context.Context, p *models.FireEvacPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FireEvacPlan, error)
	Latest(ctx context.Context, location string) (*models.FireEvacPlan, error)
	ListByLocation(ctx context.Context, location string) ([]*models.FireEvacPlan, error)
}

type BlobStore interface {
	PutUpload(ctx context.Context, contentType string, maxSize int64, now time.Time) (*models.UploadHandle, error)
	DownloadURL(ctx context.Context, ref models.FileRef, now time.Time) (*models.DownloadLink, error)
}

type ActorResolver interface {
	Resolve(ctx context.Context, actorID string) (*access.Role, error)
}

// StoreTx runs fn as one atomic unit of the backing store.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestrates document uploads, activation and archival.
type Service struct {
	isp       ISPStore
	fireEvac  FireEvacStore
	subjects  subjects.Store
	blobs     BlobStore
	policy    ActorResolver
	tx        StoreTx
	audit     audit.Emitter
	logger    *slog.Logger
	metrics   *docmetrics.Metrics
	maxUpload int64
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

func WithMetrics(m *docmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx replaces the in-memory lock with a database transaction manager.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

func New(isp ISPStore, fireEvac FireEvacStore, subjectStore subjects.Store, blobs BlobStore, policy ActorResolver, opts ...Option) *Service {
	s := &Service{
		isp:       isp,
		fireEvac:  fireEvac,
		subjects:  subjectStore,
		blobs:     blobs,
		policy:    policy,
		maxUpload: defaultMaxUploadBytes,
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

// MaxUploadBytes reports the configured size limit.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUpload
}

// RequestUpload validates the declared file and reserves an upload slot.
func (s *Service) RequestUpload(ctx context.Context, actorID, contentType string, size int64) (*models.UploadHandle, error) {
	if _, err := s.policy.Resolve(ctx, actorID); err != nil {
		return nil, err
	}
	if err := models.ValidateUpload(contentType, size, s.maxUpload); err != nil {
		s.metrics.IncUploadRejected("upload")
		return nil, err
	}
	handle, err := s.blobs.PutUpload(ctx, contentType, size, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeExternalService, "failed to reserve upload")
	}
	return handle, nil
}

// residentLocation resolves a resident and checks the actor can see it.
func (s *Service) residentLocation(ctx context.Context, role *access.Role, residentID string) (string, error) {
	subj, err := s.subjects.Get(ctx, residentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "resident not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resident")
	}
	if err := access.RequireLocation(role, subj.Location); err != nil {
		return "", dErrors.New(dErrors.CodeNotFound, "resident not found")
	}
	return subj.Location, nil
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

// wrapStoreErr translates store sentinels. Coded errors pass through.
func wrapStoreErr(err error, notFound, action string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent update, retry the request")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}
