// Package notify is the boundary to the portal's email/notification dispatch.
// The core hands over a rendered message and delivery metadata; actual
// delivery is someone else's job and must never block or fail a domain
// operation.
package notify

import (
	"context"
	"log/slog"
)

// Message is a rendered notification ready for dispatch.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier dispatches a message. Implementations should be cheap to call;
// callers fire-and-forget.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier is the development dispatcher: it logs instead of sending.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "notification dispatched",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
