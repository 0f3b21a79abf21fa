package ratelimit

import (
	"context"
	"log/slog"

	"carecompliance/pkg/platform/circuit"
)

// Store records one hit and reports whether it fits the limit.
type Store interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limiter checks the primary store and switches to an in-memory fallback
// while the primary keeps failing.
type Limiter struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	limit    Limit
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithBreaker replaces the default primary-store breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(l *Limiter) {
		l.breaker = b
	}
}

func WithFallback(s Store) Option {
	return func(l *Limiter) {
		l.fallback = s
	}
}

func NewLimiter(primary Store, limit Limit, opts ...Option) *Limiter {
	l := &Limiter{
		primary: primary,
		limit:   limit,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.fallback == nil {
		l.fallback = NewInMemoryStore()
	}
	if l.breaker == nil {
		l.breaker = circuit.New("ratelimit")
	}
	return l
}

// Check counts one request for key.
func (l *Limiter) Check(ctx context.Context, key string) (*Result, error) {
	if !l.breaker.Allow() {
		l.metrics.incFallback()
		return l.fallback.Allow(ctx, key, l.limit)
	}

	res, err := l.primary.Allow(ctx, key, l.limit)
	if err != nil {
		_, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit store unavailable, using in-memory fallback",
				"breaker", l.breaker.Name(),
				"error", err,
			)
		}
		l.metrics.incFallback()
		return l.fallback.Allow(ctx, key, l.limit)
	}
	if _, change := l.breaker.RecordSuccess(); change.Closed {
		l.logger.InfoContext(ctx, "rate limit store recovered", "breaker", l.breaker.Name())
	}
	return res, nil
}
