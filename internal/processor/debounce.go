package processor

import (
	"sync"
	"time"
)

// debouncer batches rapid file-write events into a single trigger after a
// quiet period, so a burst of fsnotify events (e.g. several hooks writing
// in quick succession) produces one drain pass, not one per write.
type debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	action   func()
	seq      uint64
	wg       sync.WaitGroup
}

func newDebouncer(duration time.Duration, action func()) *debouncer {
	return &debouncer{duration: duration, action: action}
}

// trigger (re)schedules the action to run after the debounce duration,
// resetting the timer on every call so the action only fires once after
// the last trigger.
func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}

	d.seq++
	currentSeq := d.seq

	d.wg.Add(1)
	d.timer = time.AfterFunc(d.duration, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.seq != currentSeq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.action()
	})
}

// cancelAndWait stops any pending trigger and blocks until an in-flight
// action completes. Used during graceful shutdown.
func (d *debouncer) cancelAndWait() {
	d.mu.Lock()
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()
	d.wg.Wait()
}
