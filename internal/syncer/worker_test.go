package syncer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"profilegen/internal/core/errors"
)

type fakeSource struct {
	paths     []string
	contents  map[string]string
	failPaths map[string]bool
	listErr   error
	listCalls int
}

func (f *fakeSource) ListPaths(ctx context.Context, prefix, suffix string) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.paths, nil
}

func (f *fakeSource) FetchContent(ctx context.Context, path string) (string, error) {
	if f.failPaths[path] {
		return "", errors.New(errors.CodeSyncItemFailure, "stub fetch failure")
	}
	if content, ok := f.contents[path]; ok {
		return content, nil
	}
	return "content of " + path, nil
}

type memCache struct {
	mu      sync.Mutex
	records map[string]string
}

func newMemCache() *memCache {
	return &memCache{records: make(map[string]string)}
}

func (m *memCache) Put(ctx context.Context, path, content string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[path] = content
	return nil
}

func (m *memCache) Get(ctx context.Context, path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.records[path]
	return content, ok
}

func (m *memCache) ListPaths(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.records))
	for p := range m.records {
		paths = append(paths, p)
	}
	return paths
}

func corpusPaths(n int) []string {
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		paths = append(paths, fmt.Sprintf("profiles/kentik_snmp/device-%02d.yml", i))
	}
	return paths
}

func TestRunBoundedByQuota(t *testing.T) {
	source := &fakeSource{paths: corpusPaths(25)}
	cache := newMemCache()
	worker := NewWorker(source, cache, "profiles/kentik_snmp/", ".yml", 20)
	ctx := context.Background()

	report, err := worker.Run(ctx)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if report.Synced != 20 {
		t.Errorf("first run: expected 20 synced, got %d", report.Synced)
	}
	if report.Complete {
		t.Error("first run: expected partial status")
	}
	if report.Remaining != 5 {
		t.Errorf("first run: expected 5 remaining, got %d", report.Remaining)
	}

	report, err = worker.Run(ctx)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.Synced != 5 {
		t.Errorf("second run: expected 5 synced, got %d", report.Synced)
	}
	if !report.Complete {
		t.Error("second run: expected complete status")
	}
	if len(cache.ListPaths(ctx)) != 25 {
		t.Errorf("expected full coverage after two runs, got %d", len(cache.ListPaths(ctx)))
	}
}

func TestRunIdempotent(t *testing.T) {
	source := &fakeSource{paths: corpusPaths(12)}
	cache := newMemCache()
	worker := NewWorker(source, cache, "profiles/kentik_snmp/", ".yml", 1000)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		report, err := worker.Run(ctx)
		if err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
		if !report.Complete {
			t.Errorf("run %d: expected complete", i+1)
		}
	}

	got := cache.ListPaths(ctx)
	if len(got) != 12 {
		t.Fatalf("expected cache key set to equal authoritative set, got %d keys", len(got))
	}

	report, err := worker.Run(ctx)
	if err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if report.Synced != 0 {
		t.Errorf("third run over unchanged corpus must sync zero items, got %d", report.Synced)
	}
	if !report.Complete {
		t.Error("third run: expected complete")
	}
}

func TestRunListingFailureAborts(t *testing.T) {
	source := &fakeSource{listErr: fmt.Errorf("upstream down")}
	cache := newMemCache()
	worker := NewWorker(source, cache, "profiles/", ".yml", 20)

	report, err := worker.Run(context.Background())
	if !errors.IsCode(err, errors.CodeSyncListingFailure) {
		t.Fatalf("expected listing failure, got %v", err)
	}
	if report.Synced != 0 {
		t.Errorf("aborted run must sync nothing, got %d", report.Synced)
	}
	if len(cache.ListPaths(context.Background())) != 0 {
		t.Error("aborted run must not touch the cache")
	}
}

func TestRunSkipsFailedItems(t *testing.T) {
	paths := corpusPaths(5)
	source := &fakeSource{
		paths:     paths,
		failPaths: map[string]bool{paths[2]: true},
	}
	cache := newMemCache()
	worker := NewWorker(source, cache, "profiles/", ".yml", 20)
	ctx := context.Background()

	report, err := worker.Run(ctx)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.Synced != 4 {
		t.Errorf("expected 4 synced, got %d", report.Synced)
	}
	if report.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", report.Failed)
	}
	if _, ok := cache.Get(ctx, paths[2]); ok {
		t.Error("failed item must not be cached")
	}

	// The failed item stays in the backlog and is retried next run.
	source.failPaths = nil
	report, err = worker.Run(ctx)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.Synced != 1 {
		t.Errorf("expected failed item to be retried, synced %d", report.Synced)
	}
	if _, ok := cache.Get(ctx, paths[2]); !ok {
		t.Error("retried item missing from cache")
	}
}

func TestRunNeverDeletes(t *testing.T) {
	cache := newMemCache()
	ctx := context.Background()
	// A path no longer present in the authoritative listing.
	_ = cache.Put(ctx, "profiles/kentik_snmp/retired.yml", "old content", time.Now())

	source := &fakeSource{paths: corpusPaths(3)}
	worker := NewWorker(source, cache, "profiles/", ".yml", 20)

	if _, err := worker.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, ok := cache.Get(ctx, "profiles/kentik_snmp/retired.yml"); !ok {
		t.Error("sync must never delete cached templates")
	}
}

func TestRunReportHasRunID(t *testing.T) {
	source := &fakeSource{paths: corpusPaths(1)}
	worker := NewWorker(source, newMemCache(), "profiles/", ".yml", 20)

	report, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
}
