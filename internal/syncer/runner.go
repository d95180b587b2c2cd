package syncer

import (
	"context"
	"log/slog"
	"time"

	"profilegen/internal/core/ports"
)

// Runner triggers sync runs on a fixed interval. Overlap between runs is
// harmless: cache writes are idempotent path-keyed upserts, so the quota is
// the only scoping mechanism a run needs.
type Runner struct {
	service  ports.SyncService
	interval time.Duration
}

func NewRunner(service ports.SyncService, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Runner{service: service, interval: interval}
}

// Start runs immediately, then on every tick until the context is cancelled.
// A failed run is reported and left for the next tick; there is no in-process
// retry.
func (r *Runner) Start(ctx context.Context) {
	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync runner stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := r.service.Run(ctx); err != nil {
		slog.Error("sync run failed", "error", err)
	}
}
