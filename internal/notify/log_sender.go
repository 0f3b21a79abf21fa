package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"carecompliance/pkg/email"
)

// LogSender logs messages instead of sending them. Used when no email API is
// configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (string, error) {
	id := "log-" + uuid.NewString()
	s.logger.InfoContext(ctx, "email not sent, no provider configured",
		"message_id", id,
		"to", email.Mask(msg.To),
		"subject", msg.Subject,
	)
	return id, nil
}
