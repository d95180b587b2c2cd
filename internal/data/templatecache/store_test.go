package templatecache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "templates.db"), 2*time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutAndGet(t *testing.T) {
	store := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	if err := store.Put("profiles/kentik_snmp/cisco/cisco-asa.yml", "metrics: []\n", now); err != nil {
		t.Fatalf("put: %v", err)
	}

	record, ok, err := store.Get("profiles/kentik_snmp/cisco/cisco-asa.yml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if record.Content != "metrics: []\n" {
		t.Errorf("unexpected content %q", record.Content)
	}
	if !record.LastUpdated.Equal(now) {
		t.Errorf("expected timestamp %s, got %s", now, record.LastUpdated)
	}
}

func TestStore_GetAbsent(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Get("profiles/missing.yml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected absent record")
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("profiles/a.yml", "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("first put: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	if err := store.Put("profiles/a.yml", "new", now); err != nil {
		t.Fatalf("second put: %v", err)
	}

	record, ok, err := store.Get("profiles/a.yml")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if record.Content != "new" {
		t.Errorf("upsert did not overwrite: %q", record.Content)
	}
	if !record.LastUpdated.Equal(now) {
		t.Errorf("timestamp not refreshed: %s", record.LastUpdated)
	}

	paths, err := store.ListPaths()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("upsert must keep map semantics, got %v", paths)
	}
}

func TestStore_ListPaths(t *testing.T) {
	store := openTestStore(t)

	for _, p := range []string{"profiles/b.yml", "profiles/a.yml", "profiles/c.yml"} {
		if err := store.Put(p, "content of "+p, time.Now()); err != nil {
			t.Fatalf("put %s: %v", p, err)
		}
	}

	paths, err := store.ListPaths()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"profiles/a.yml", "profiles/b.yml", "profiles/c.yml"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("position %d: expected %s, got %s", i, p, paths[i])
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected count 3, got %d", n)
	}
}

func TestStore_RejectsEmptyPath(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("  ", "content", time.Now()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestOpen_RejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir(), time.Second); err == nil {
		t.Error("expected error when cache path is a directory")
	}
}
