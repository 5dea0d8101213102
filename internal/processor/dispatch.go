package processor

import (
	"context"
	"fmt"

	"github.com/steveyegge/ccsync/internal/logging"
	"github.com/steveyegge/ccsync/internal/queue"
	"github.com/steveyegge/ccsync/internal/session"
)

// Dispatcher routes a queue record to exactly one handler by its Kind, per
// distilled spec §4.3's "dispatch by kind" — unlike eventbus.Bus, which
// fans an event out to every handler that declares interest, a queue
// record has exactly one correct handler.
type Dispatcher struct {
	Session *session.Processor
}

// NewDispatcher builds a Dispatcher over a Session Processor.
func NewDispatcher(s *session.Processor) *Dispatcher {
	return &Dispatcher{Session: s}
}

// Dispatch runs the handler for rec.Kind. An unknown kind is a hard,
// non-retryable-in-spirit failure (distilled spec §4.3: "Unknown kinds are
// a hard failure with a descriptive error"); the drain loop still counts
// it against retry_count like any other failure, since the queue format
// itself has no separate "poison" status.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *queue.Record) error {
	switch rec.Kind {
	case queue.KindSessionStop:
		diagnostic, err := d.Session.HandleSessionStop(ctx, rec)
		if diagnostic != "" {
			logging.Info("session_stop processed", "id", rec.ID, "diagnostic", diagnostic)
		}
		return err
	case queue.KindPRCreated:
		return d.Session.HandlePRCreated(ctx, rec)
	default:
		return fmt.Errorf("processor: unknown record kind %q", rec.Kind)
	}
}
