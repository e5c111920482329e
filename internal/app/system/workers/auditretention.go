// internal/app/system/workers/auditretention.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// sweepTimeout bounds one retention pass.
const sweepTimeout = 30 * time.Second

// AuditRetention is a background worker that deletes audit events older
// than the retention period.
type AuditRetention struct {
	events    *audit.Store
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time

	stopCh    chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewAuditRetention creates the worker. It does nothing until Start.
//
// Parameters:
//   - events: the audit store
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 hour)
//   - retention: how long events are kept (e.g., 90 days)
func NewAuditRetention(events *audit.Store, logger *zap.Logger, interval, retention time.Duration) *AuditRetention {
	return &AuditRetention{
		events:    events,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background sweep loop. Calls after the first are ignored.
func (w *AuditRetention) Start() {
	w.startOnce.Do(func() {
		w.wg.Add(1)
		go w.run()
		w.log.Info("audit retention worker started",
			zap.Duration("interval", w.interval),
			zap.Duration("retention", w.retention))
	})
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call without Start and more than once.
func (w *AuditRetention) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("audit retention worker stopped")
	})
}

func (w *AuditRetention) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one retention pass and returns how many events were removed.
func (w *AuditRetention) Sweep() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cutoff := w.now().Add(-w.retention)
	count, err := w.events.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to delete expired audit events", zap.Error(err))
		return 0
	}
	if count > 0 {
		w.log.Info("deleted expired audit events",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff))
	}
	return count
}
