package audit

import (
	"log/slog"
	"time"
)

// Publisher hands events to the background worker without blocking the request
// path. Finalize/reopen must never stall on the audit sink, so a full inbox
// drops the event and logs instead of applying backpressure.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit publishes an event, stamping the time when unset. Fire-and-forget.
func (p *Publisher) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"record_id", event.RecordID,
		)
	}
}
