// Package service runs the guardian checklist lifecycle: send, submit, resend.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"carecompliance/internal/access"
	"carecompliance/internal/checklist/models"
	"carecompliance/internal/notify"
	"carecompliance/internal/platform/memtx"
	"carecompliance/internal/subjects"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/sentinel"
)

type LinkStore interface {
	Create(ctx context.Context, l *models.Link) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Link, error)
	FindByToken(ctx context.Context, token string) (*models.Link, error)
	ListByResidents(ctx context.Context, residentIDs []string) ([]*models.Link, error)
	Execute(ctx context.Context, id uuid.UUID, validate func(*models.Link) error, mutate func(*models.Link)) (*models.Link, error)
}

type TemplateStore interface {
	Get(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context) ([]*models.Template, error)
}

// Notifier delivers one invitation.
type Notifier interface {
	DispatchOne(ctx context.Context, msg notify.Message) notify.Result
}

type ActorResolver interface {
	Resolve(ctx context.Context, actorID string) (*access.Role, error)
}

type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	links     LinkStore
	templates TemplateStore
	subjects  subjects.Store
	policy    ActorResolver
	notifier  Notifier
	tx        StoreTx
	audit     audit.Emitter
	logger    *slog.Logger
	linkTTL   time.Duration
	publicURL string
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

func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithLinkTTL sets how long sent and resent links stay open.
func WithLinkTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.linkTTL = ttl
		}
	}
}

// WithPublicURL sets the base of the guardian-facing link in invitations.
func WithPublicURL(url string) Option {
	return func(s *Service) {
		s.publicURL = strings.TrimRight(url, "/")
	}
}

func New(links LinkStore, templates TemplateStore, subjectStore subjects.Store, policy ActorResolver, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		links:     links,
		templates: templates,
		subjects:  subjectStore,
		policy:    policy,
		notifier:  notifier,
		linkTTL:   models.DefaultLinkTTL,
		publicURL: "http://localhost:8080",
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

func (s *Service) residentLocation(ctx context.Context, residentID string) (string, error) {
	subj, err := s.subjects.Get(ctx, residentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "resident not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resident")
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

func wrapStoreErr(err error, action string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "checklist not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}
