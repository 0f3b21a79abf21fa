// Package scheduler triggers alert generation on the cron schedule stored in
// alert settings. A distributed lock keeps concurrent instances from running
// the same tick twice.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	alertmetrics "carecompliance/internal/alerts/metrics"
	"carecompliance/internal/alerts/models"
	"carecompliance/pkg/requestcontext"
)

const lockKey = "carecompliance:alerts:generate"

// Runner is the alert service as seen by the scheduler.
type Runner interface {
	GenerateAlerts(ctx context.Context) (models.RunSummary, error)
	CurrentSettings(ctx context.Context) (*models.Settings, error)
}

// Locker takes a short-lived exclusive lock.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context), ok bool, err error)
}

// NoopLocker always grants the lock. Used when a single instance runs.
type NoopLocker struct{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (func(context.Context), bool, error) {
	return func(context.Context) {}, true, nil
}

type Scheduler struct {
	runner     Runner
	locker     Locker
	logger     *slog.Logger
	metrics    *alertmetrics.Metrics
	lockTTL    time.Duration
	runTimeout time.Duration
	now        func() time.Time

	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	schedule string
	baseCtx  context.Context
}

type Option func(*Scheduler)

func WithLocker(l Locker) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithMetrics(m *alertmetrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func WithLockTTL(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.lockTTL = d
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

func New(runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:     runner,
		locker:     NoopLocker{},
		lockTTL:    10 * time.Minute,
		runTimeout: 5 * time.Minute,
		now:        time.Now,
		cron:       cron.New(),
		baseCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start schedules the job from the stored settings and starts the cron loop.
// ctx bounds every run; cancel it together with Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	settings, err := s.runner.CurrentSettings(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	if err := s.reschedule(settings.Schedule); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.InfoContext(ctx, "alert scheduler started",
		"schedule", settings.Schedule,
		"enabled", settings.Enabled,
	)
	return nil
}

// Reload replaces the cron entry after a settings change. The enabled flag is
// read on every tick, so only schedule changes need a new entry.
func (s *Scheduler) Reload(settings models.Settings) {
	if err := s.reschedule(settings.Schedule); err != nil {
		s.logger.Error("alert schedule reload failed",
			"schedule", settings.Schedule,
			"error", err,
		)
		return
	}
	s.logger.Info("alert schedule reloaded", "schedule", settings.Schedule)
}

// Stop halts the cron loop and waits for a running job or ctx, whichever
// comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spec == s.schedule && s.entry != 0 {
		return nil
	}
	id, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return err
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.entry = id
	s.schedule = spec
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	_, _ = s.RunOnce(ctx)
}

// RunOnce performs one scheduled run. ran is false when the run was skipped
// because the job is disabled or another instance holds the lock.
func (s *Scheduler) RunOnce(ctx context.Context) (ran bool, err error) {
	settings, err := s.runner.CurrentSettings(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "alert settings unavailable", "error", err)
		return false, err
	}
	if !settings.Enabled {
		s.metrics.IncSkipped("disabled")
		return false, nil
	}

	release, ok, err := s.locker.TryLock(ctx, lockKey, s.lockTTL)
	if err != nil {
		s.metrics.IncSkipped("lock_error")
		s.logger.ErrorContext(ctx, "alert run lock failed", "error", err)
		return false, err
	}
	if !ok {
		s.metrics.IncSkipped("locked")
		s.logger.InfoContext(ctx, "alert run skipped, lock held elsewhere")
		return false, nil
	}
	defer release(context.WithoutCancel(ctx))

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	runCtx = requestcontext.WithTime(runCtx, s.now())

	if _, err := s.runner.GenerateAlerts(runCtx); err != nil {
		s.logger.ErrorContext(ctx, "alert run failed", "error", err)
		return true, err
	}
	return true, nil
}
