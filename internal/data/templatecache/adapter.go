package templatecache

import (
	"context"
	"log/slog"
	"time"

	"profilegen/internal/shared/observability"
)

// Adapter bridges Store to the core TemplateCache port. The cache is a soft
// dependency for readers: any read error degrades to absent/empty and is
// absorbed here, so selection and assembly fall back to defaults instead of
// failing. Write errors propagate; the sync worker treats them per item.
type Adapter struct {
	store *Store
}

func NewAdapter(store *Store) *Adapter {
	return &Adapter{store: store}
}

func (a *Adapter) Put(ctx context.Context, path, content string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.store.Put(path, content, updatedAt); err != nil {
		return err
	}
	if n, err := a.store.Count(); err == nil {
		observability.CacheTemplates.Set(float64(n))
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, path string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	record, ok, err := a.store.Get(path)
	if err != nil {
		observability.CacheReadFailuresTotal.Inc()
		slog.Warn("template cache read degraded to absent", "path", path, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	return record.Content, true
}

func (a *Adapter) ListPaths(ctx context.Context) []string {
	if ctx.Err() != nil {
		return nil
	}
	paths, err := a.store.ListPaths()
	if err != nil {
		observability.CacheReadFailuresTotal.Inc()
		slog.Warn("template cache listing degraded to empty", "error", err)
		return nil
	}
	return paths
}
