package processor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/steveyegge/ccsync/internal/logging"
	"github.com/steveyegge/ccsync/internal/queue"
)

// Drainer runs drain passes over a Queue, never more than one concurrently
// (distilled spec §4.3: "if a drain is already in flight, skip
// (non-reentrant)").
type Drainer struct {
	Queue      *queue.Queue
	Dispatcher *Dispatcher
	MaxRetries int

	inFlight atomic.Bool
}

// NewDrainer builds a Drainer over q and d. maxRetries <= 0 selects
// queue.DefaultMaxRetries.
func NewDrainer(q *queue.Queue, d *Dispatcher, maxRetries int) *Drainer {
	return &Drainer{Queue: q, Dispatcher: d, MaxRetries: maxRetries}
}

// Drain performs one pass: pending records in file order, then retryable
// records, each processed in turn. Skips entirely (returning false) if a
// drain is already running.
func (d *Drainer) Drain(ctx context.Context) (ran bool) {
	if !d.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer d.inFlight.Store(false)

	pending, err := d.Queue.ReadPending()
	if err != nil {
		logging.Error("processor: read pending", "error", err)
	}
	for _, rec := range pending {
		d.processOne(ctx, rec)
	}

	retryable, err := d.Queue.ReadRetryable(d.MaxRetries)
	if err != nil {
		logging.Error("processor: read retryable", "error", err)
	}
	for _, rec := range retryable {
		d.processOne(ctx, rec)
	}

	return true
}

// processOne implements distilled spec §4.3's per-record handling: mark
// processing, dispatch by kind, then mark processed or failed. Every
// error or panic escaping the dispatcher is converted to a failed status
// per §7's propagation policy — no partial record state survives.
func (d *Drainer) processOne(ctx context.Context, rec *queue.Record) {
	if err := d.Queue.UpdateStatus(rec.ID, queue.StatusProcessing, ""); err != nil {
		logging.Error("processor: mark processing", "id", rec.ID, "error", err)
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("processor: handler panicked: %v", r)
			}
		}()
		return d.Dispatcher.Dispatch(ctx, rec)
	}()
	if err != nil {
		logging.Error("processor: handler failed", "id", rec.ID, "kind", rec.Kind, "error", err)
		if uerr := d.Queue.UpdateStatus(rec.ID, queue.StatusFailed, err.Error()); uerr != nil {
			logging.Error("processor: mark failed", "id", rec.ID, "error", uerr)
		}
		return
	}

	if err := d.Queue.UpdateStatus(rec.ID, queue.StatusProcessed, ""); err != nil {
		logging.Error("processor: mark processed", "id", rec.ID, "error", err)
	}
}
