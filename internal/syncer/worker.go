// Package syncer keeps the template cache populated from the remote corpus.
// Runs converge monotonically toward full corpus coverage: each run fetches a
// bounded backlog slice, never deletes, and tolerates per-item failures.
package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"profilegen/internal/core/errors"
	"profilegen/internal/core/ports"
	"profilegen/internal/shared/observability"
)

const defaultQuota = 20

type Worker struct {
	source ports.CorpusSource
	cache  ports.TemplateCache
	prefix string
	suffix string
	quota  int
	now    func() time.Time
}

func NewWorker(source ports.CorpusSource, cache ports.TemplateCache, prefix, suffix string, quota int) *Worker {
	if quota <= 0 {
		quota = defaultQuota
	}
	return &Worker{
		source: source,
		cache:  cache,
		prefix: prefix,
		suffix: suffix,
		quota:  quota,
		now:    time.Now,
	}
}

var _ ports.SyncService = (*Worker)(nil)

// Run executes one sync pass: authoritative listing, presence-only diff
// against the cached key set, then sequential fetch+upsert of at most quota
// backlog entries. A listing failure aborts the run; item failures are
// skipped. Content changes to already-cached paths are not detected.
func (w *Worker) Run(ctx context.Context) (ports.SyncReport, error) {
	start := w.now()
	ctx, span := observability.Tracer.Start(ctx, "syncer.Run")
	defer span.End()

	report := ports.SyncReport{RunID: uuid.NewString()}
	span.SetAttributes(attribute.String("sync.run_id", report.RunID))

	authoritative, err := w.source.ListPaths(ctx, w.prefix, w.suffix)
	if err != nil {
		observability.SyncRunsTotal.WithLabelValues("failed").Inc()
		slog.Error("corpus listing failed, aborting sync run", "run_id", report.RunID, "error", err)
		return report, errors.Wrap(err, errors.CodeSyncListingFailure, "fetch authoritative path list")
	}

	cached := make(map[string]struct{})
	for _, p := range w.cache.ListPaths(ctx) {
		cached[p] = struct{}{}
	}

	backlog := make([]string, 0)
	for _, p := range authoritative {
		if _, ok := cached[p]; !ok {
			backlog = append(backlog, p)
		}
	}

	report.Complete = len(backlog) <= w.quota

	selected := backlog
	if len(selected) > w.quota {
		selected = selected[:w.quota]
	}

	for _, path := range selected {
		content, err := w.source.FetchContent(ctx, path)
		if err != nil {
			report.Failed++
			observability.SyncItemFailuresTotal.Inc()
			slog.Warn("skipping template after fetch failure", "run_id", report.RunID, "path", path, "error", err)
			continue
		}
		if err := w.cache.Put(ctx, path, content, w.now().UTC()); err != nil {
			report.Failed++
			observability.SyncItemFailuresTotal.Inc()
			slog.Warn("skipping template after cache write failure", "run_id", report.RunID, "path", path, "error", err)
			continue
		}
		report.Synced++
		observability.SyncItemsSyncedTotal.Inc()
	}

	report.Remaining = len(backlog) - report.Synced
	observability.SyncBacklog.Set(float64(report.Remaining))
	observability.SyncRunDuration.Observe(w.now().Sub(start).Seconds())

	status := "partial"
	if report.Complete {
		status = "complete"
	}
	observability.SyncRunsTotal.WithLabelValues(status).Inc()
	span.SetAttributes(
		attribute.Int("sync.synced", report.Synced),
		attribute.Int("sync.failed", report.Failed),
		attribute.Bool("sync.complete", report.Complete),
	)
	if report.Failed > 0 {
		span.SetStatus(codes.Error, "run completed with skipped items")
	}

	slog.Info("sync run finished",
		"run_id", report.RunID,
		"synced", report.Synced,
		"failed", report.Failed,
		"remaining", report.Remaining,
		"status", status,
	)

	return report, nil
}
