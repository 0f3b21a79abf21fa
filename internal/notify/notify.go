// Package notify renders and delivers outbound email.
//
// Delivery is sequential and never fails the caller: every recipient gets a
// Result, and failures are carried in it as external service errors.
package notify

import (
	"context"
	"log/slog"
	"strings"

	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/email"
	"carecompliance/pkg/requestcontext"
)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Result is the outcome for one message. Err is nil on success.
type Result struct {
	To        string
	MessageID string
	Err       error
}

func (r Result) OK() bool { return r.Err == nil }

// Sender delivers a single message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{sender: sender}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Dispatch sends messages one after another. A cancelled context fails the
// remaining messages without attempting them.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []Message) []Result {
	results := make([]Result, 0, len(msgs))
	for _, msg := range msgs {
		results = append(results, d.send(ctx, msg))
	}
	return results
}

// DispatchOne sends a single message.
func (d *Dispatcher) DispatchOne(ctx context.Context, msg Message) Result {
	return d.send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, msg Message) Result {
	res := Result{To: msg.To}
	if err := ctx.Err(); err != nil {
		res.Err = dErrors.Wrap(err, dErrors.CodeExternalService, "email not attempted")
		d.metrics.IncFailed()
		return res
	}
	if strings.TrimSpace(msg.To) == "" {
		res.Err = dErrors.New(dErrors.CodeExternalService, "recipient address is empty")
		d.metrics.IncFailed()
		return res
	}

	id, err := d.sender.Send(ctx, msg)
	if err != nil {
		if _, ok := dErrors.As(err); !ok {
			err = dErrors.Wrap(err, dErrors.CodeExternalService, "email delivery failed")
		}
		res.Err = err
		d.metrics.IncFailed()
		d.logger.WarnContext(ctx, "email delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"to", email.Mask(msg.To),
			"error", err,
		)
		return res
	}
	res.MessageID = id
	d.metrics.IncSent()
	return res
}
