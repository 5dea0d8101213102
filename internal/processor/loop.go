// Package processor implements the Queue Processor: the long-running
// daemon loop that watches the durable queue file for new records and
// drains them through the Session Processor and PR-Created Handler.
package processor

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/steveyegge/ccsync/internal/logging"
	"github.com/steveyegge/ccsync/internal/queue"
)

// LoopConfig configures Loop's tickers. Zero values select the defaults
// below.
type LoopConfig struct {
	DebounceInterval     time.Duration
	HealthInterval       time.Duration
	CleanupInterval      time.Duration
	CleanupAge           time.Duration
	FallbackPollInterval time.Duration
}

const (
	defaultDebounceInterval     = 300 * time.Millisecond
	defaultHealthInterval       = 30 * time.Second
	defaultCleanupInterval      = 1 * time.Hour
	defaultCleanupAge           = 24 * time.Hour
	defaultFallbackPollInterval = 5 * time.Second
)

func (c LoopConfig) withDefaults() LoopConfig {
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = defaultDebounceInterval
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = defaultHealthInterval
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	if c.CleanupAge <= 0 {
		c.CleanupAge = defaultCleanupAge
	}
	if c.FallbackPollInterval <= 0 {
		c.FallbackPollInterval = defaultFallbackPollInterval
	}
	return c
}

// Loop is the Queue Processor's main event-driven select loop (distilled
// spec §4.3). It subscribes to change notifications on the queue file via
// fsnotify, debouncing rapid writes into a single drain pass, and falls
// back to polling when a watcher cannot be established.
type Loop struct {
	Queue      *queue.Queue
	QueuePath  string
	Drainer    *Drainer
	Config     LoopConfig
}

// NewLoop builds a Loop. queuePath is the file watched for changes; it
// need not exist yet (the Durable Queue creates it lazily on first
// append).
func NewLoop(q *queue.Queue, queuePath string, drainer *Drainer, cfg LoopConfig) *Loop {
	return &Loop{Queue: q, QueuePath: queuePath, Drainer: drainer, Config: cfg.withDefaults()}
}

// Run blocks until ctx is canceled or a termination signal arrives,
// performing an initial drain, then draining on every debounced
// file-change notification and fallback poll tick. Health ticks only run
// checkHealth, and cleanup ticks run CleanupOld. Shutdown
// stops accepting new notifications and returns once any in-flight drain
// (there is at most one, by Drainer's own non-reentrancy) has had a chance
// to finish via the deferred cleanup below.
func (l *Loop) Run(ctx context.Context) error {
	logging.Info("queue processor starting", "queue", l.QueuePath)

	l.Drainer.Drain(ctx)

	debounce := newDebouncer(l.Config.DebounceInterval, func() {
		l.Drainer.Drain(ctx)
	})
	defer debounce.cancelAndWait()

	watcher, watcherEvents, watcherErrors := l.startWatcher()
	if watcher != nil {
		defer watcher.Close()
	}

	var fallbackChan <-chan time.Time
	if watcher == nil {
		fallback := time.NewTicker(l.Config.FallbackPollInterval)
		defer fallback.Stop()
		fallbackChan = fallback.C
	}

	healthTicker := time.NewTicker(l.Config.HealthInterval)
	defer healthTicker.Stop()
	cleanupTicker := time.NewTicker(l.Config.CleanupInterval)
	defer cleanupTicker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, daemonSignals...)
	defer signal.Stop(sigChan)

	watchBase := filepath.Base(l.QueuePath)

	for {
		select {
		case <-ctx.Done():
			logging.Info("queue processor stopping: context canceled")
			return nil

		case sig := <-sigChan:
			logging.Info("queue processor stopping: received signal", "signal", sig)
			return nil

		case event, ok := <-watcherEvents:
			if !ok {
				watcherEvents = nil
				continue
			}
			if filepath.Base(event.Name) != watchBase {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.trigger()
			}

		case err, ok := <-watcherErrors:
			if !ok {
				watcherErrors = nil
				continue
			}
			logging.Error("queue processor: file watcher error", "error", err)

		case <-fallbackChan:
			l.Drainer.Drain(ctx)

		case <-healthTicker.C:
			l.checkHealth()

		case <-cleanupTicker.C:
			if err := l.Queue.CleanupOld(l.Config.CleanupAge); err != nil {
				logging.Error("queue processor: cleanup_old failed", "error", err)
			}
		}
	}
}

// startWatcher attempts to watch the queue file's directory, matching the
// teacher's own directory-watch idiom (cmd/bd/show_display.go watches a
// directory and filters by basename, since fsnotify on some platforms
// loses watches on file replacement). Returns nil channels, degrading to
// the caller's fallback poll ticker, if a watcher cannot be established.
func (l *Loop) startWatcher() (*fsnotify.Watcher, chan fsnotify.Event, chan error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("File watcher unavailable, using polling fallback", "error", err)
		return nil, nil, nil
	}

	dir := filepath.Dir(l.QueuePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Warn("File watcher unavailable, using polling fallback", "error", err)
		watcher.Close()
		return nil, nil, nil
	}
	if err := watcher.Add(dir); err != nil {
		logging.Warn("File watcher unavailable, using polling fallback", "error", err)
		watcher.Close()
		return nil, nil, nil
	}
	return watcher, watcher.Events, watcher.Errors
}

// checkHealth logs a heartbeat and verifies the queue file is reachable.
// A stat failure other than "not yet created" is surfaced as a warning,
// mirroring the teacher's daemon health check without the SQL-specific
// integrity checks that have no analogue here.
func (l *Loop) checkHealth() {
	if _, err := os.Stat(l.QueuePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("queue processor: health check: queue file unreachable", "error", err)
		return
	}
	logging.Debug("queue processor: health check ok")
}
