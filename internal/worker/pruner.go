package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/metrics"
)

// Pruner periodically deletes processed-event rows older than the retention
type Pruner struct {
	events    event.Repository
	schedule  string
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time

	mu        sync.Mutex
	scheduler *cron.Cron
	entryID   cron.EntryID
}

// NewPruner creates a new pruner worker. schedule is a standard cron
// expression or descriptor such as "@daily".
func NewPruner(events event.Repository, schedule string, retention time.Duration, log *logger.Logger) *Pruner {
	return &Pruner{
		events:    events,
		schedule:  schedule,
		retention: retention,
		logger:    log,
		now:       time.Now,
	}
}

// Start schedules the pruner. It is a no-op when the schedule is empty.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler != nil {
		return fmt.Errorf("pruner is already running")
	}
	if p.schedule == "" {
		p.logger.Info("Event pruner disabled")
		return nil
	}

	scheduler := cron.New()
	entryID, err := scheduler.AddFunc(p.schedule, func() {
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.ErrorWithErr(err, "Failed to prune processed events")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.schedule, err)
	}

	scheduler.Start()
	p.scheduler = scheduler
	p.entryID = entryID

	p.logger.WithFields(map[string]interface{}{
		"schedule":  p.schedule,
		"retention": p.retention.String(),
	}).Info("Event pruner started")

	return nil
}

// Stop stops the scheduler and waits for a running prune to finish
func (p *Pruner) Stop() {
	p.mu.Lock()
	scheduler := p.scheduler
	p.scheduler = nil
	p.mu.Unlock()

	if scheduler == nil {
		return
	}
	<-scheduler.Stop().Done()
	p.logger.Info("Event pruner stopped")
}

// NextRun returns the next scheduled prune, or the zero time when not running
func (p *Pruner) NextRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler == nil {
		return time.Time{}
	}
	return p.scheduler.Entry(p.entryID).Next
}

// RunOnce deletes every event processed before now minus the retention
func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)

	n, err := p.events.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	metrics.RecordPruned(n)

	p.logger.WithFields(map[string]interface{}{
		"deleted": n,
		"cutoff":  cutoff.UTC().Format(time.RFC3339),
	}).Info("Pruned processed events")

	return n, nil
}
