// Package publisher provides the non-blocking audit emitter services depend on.
//
// Emit screens details, stamps request metadata from the context and hands the
// record to a bounded ring buffer drained by a background goroutine. A slow or
// failing sink never delays or fails the compliance action that emitted it.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "carecompliance/pkg/platform/audit"
	"carecompliance/pkg/platform/privacy"
	"carecompliance/pkg/requestcontext"
)

const (
	defaultBufferSize   = 1024
	defaultBatchSize    = 64
	defaultWriteTimeout = 5 * time.Second
)

// Publisher implements audit.Emitter on top of an audit.Sink.
type Publisher struct {
	sink    audit.Sink
	logger  *slog.Logger
	metrics *Metrics
	policy  *privacy.Policy

	async      bool
	bufferSize int
	buffer     *ringBuffer
	signal     chan struct{}
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used to report sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithAsyncBuffer enables background delivery with a ring buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.async = true
		p.bufferSize = n
	}
}

// WithPrivacyPolicy overrides the policy used to screen details.
func WithPrivacyPolicy(policy *privacy.Policy) Option {
	return func(p *Publisher) {
		p.policy = policy
	}
}

// NewPublisher creates a publisher. Without WithAsyncBuffer, records are
// written inline; failures are still logged and swallowed.
func NewPublisher(sink audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
		policy: privacy.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.buffer = newRingBuffer(p.bufferSize)
		p.signal = make(chan struct{}, 1)
		p.done = make(chan struct{})
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Emit records an action. It never blocks on the sink and never fails.
func (p *Publisher) Emit(ctx context.Context, record audit.Record) {
	record = p.prepare(ctx, record)

	if !p.async {
		p.write(ctx, record)
		return
	}

	if p.buffer.enqueue(record) {
		p.metrics.incDropped()
		p.logger.WarnContext(ctx, "audit buffer full, dropped oldest record",
			"request_id", record.RequestID,
			"event", record.Event,
		)
	}
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Dropped returns how many records were discarded because the buffer was full.
func (p *Publisher) Dropped() int64 {
	if p.buffer == nil {
		return 0
	}
	return p.buffer.droppedTotal()
}

// Close stops the background worker after draining buffered records.
func (p *Publisher) Close() error {
	if !p.async {
		return nil
	}
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
	return nil
}

func (p *Publisher) prepare(ctx context.Context, record audit.Record) audit.Record {
	if record.Timestamp.IsZero() {
		record.Timestamp = requestcontext.Now(ctx)
	}
	if record.ActorID == "" {
		record.ActorID = requestcontext.ActorID(ctx)
	}
	if record.RequestID == "" {
		record.RequestID = requestcontext.RequestID(ctx)
	}
	if record.DeviceID == "" {
		record.DeviceID = requestcontext.DeviceID(ctx)
	}
	record.Details = p.policy.SanitizeMap(record.Details)
	return record
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.signal:
			p.drain()
		case <-p.done:
			p.drain()
			return
		}
	}
}

func (p *Publisher) drain() {
	for {
		batch := p.buffer.dequeueBatch(defaultBatchSize)
		if len(batch) == 0 {
			return
		}
		for _, record := range batch {
			ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
			p.write(ctx, record)
			cancel()
		}
	}
}

func (p *Publisher) write(ctx context.Context, record audit.Record) {
	if err := p.sink.Append(context.WithoutCancel(ctx), record); err != nil {
		p.metrics.incPersistFailures()
		p.logger.ErrorContext(ctx, "failed to persist audit record",
			"request_id", record.RequestID,
			"event", record.Event,
			"error", err,
		)
		return
	}
	p.metrics.incEmitted()
}
