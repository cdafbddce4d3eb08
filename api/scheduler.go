/*
scheduler.go - Calculation history retention

PURPOSE:
  Periodically deletes stored calculations older than the retention window
  so the history table does not grow without bound.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Records each run (cutoff, rows deleted, error) when the store supports it

CONFIGURATION:
  - CheckInterval: How often to prune (PRUNE_INTERVAL, default 1 hour)
  - Retention: Age after which calculations are deleted (HISTORY_RETENTION)

USAGE:
  pruner := NewHistoryPruner(store, 30*24*time.Hour)
  pruner.Start()
  // ... later
  pruner.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/store/sqlite"
)

// PruneRunRecorder is implemented by stores that audit the pruner.
type PruneRunRecorder interface {
	SavePruneRun(ctx context.Context, r sqlite.PruneRun) error
}

// HistoryPruner deletes expired calculations on a ticker.
type HistoryPruner struct {
	Store         generic.Store
	Retention     time.Duration
	CheckInterval time.Duration

	now    func() time.Time
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewHistoryPruner creates a new pruner.
func NewHistoryPruner(store generic.Store, retention time.Duration) *HistoryPruner {
	return &HistoryPruner{
		Store:         store,
		Retention:     retention,
		CheckInterval: 1 * time.Hour,
		now:           time.Now,
	}
}

// Start begins pruning. A zero retention or a non-positive interval leaves
// the pruner disabled.
func (p *HistoryPruner) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Retention <= 0 {
		log.Info("[Pruner] Retention disabled, not starting")
		return
	}
	if p.CheckInterval <= 0 {
		log.Warnf("[Pruner] Invalid check interval %v, not starting", p.CheckInterval)
		return
	}
	if p.ticker != nil {
		return
	}

	p.ticker = time.NewTicker(p.CheckInterval)
	p.stop = make(chan struct{})
	p.wg.Add(1)

	go p.run()

	log.Infof("[Pruner] Started: retention %v, interval %v", p.Retention, p.CheckInterval)
}

// Stop stops the pruner and waits for an in-flight run.
func (p *HistoryPruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		p.ticker.Stop()
		close(p.stop)
		p.wg.Wait()
		p.ticker = nil
		log.Info("[Pruner] Stopped")
	}
}

func (p *HistoryPruner) run() {
	defer p.wg.Done()

	p.RunOnce(context.Background())

	for {
		select {
		case <-p.ticker.C:
			p.RunOnce(context.Background())
		case <-p.stop:
			return
		}
	}
}

// RunOnce deletes calculations older than the retention window and returns
// how many were removed.
func (p *HistoryPruner) RunOnce(ctx context.Context) (int64, error) {
	now := p.now()
	cutoff := now.Add(-p.Retention)

	deleted, err := p.Store.DeleteBefore(ctx, cutoff)
	run := sqlite.PruneRun{RunAt: now, Cutoff: cutoff, Deleted: deleted}
	if err != nil {
		run.Error = err.Error()
		log.WithError(err).Error("[Pruner] Failed to delete expired calculations")
	} else if deleted > 0 {
		log.Infof("[Pruner] Deleted %d calculations created before %s", deleted, cutoff.Format(time.RFC3339))
	}

	if rec, ok := p.Store.(PruneRunRecorder); ok {
		if serr := rec.SavePruneRun(ctx, run); serr != nil {
			log.WithError(serr).Warn("[Pruner] Failed to record run")
		}
	}
	return deleted, err
}
