package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"profilegen/internal/core/config"
	"profilegen/internal/core/errors"
	"profilegen/internal/core/ports"
	"profilegen/internal/data/templatecache"
	"profilegen/internal/engine/selector"
)

const symbolTable = `{
	"ifInOctets": {"oid": "1.3.6.1.2.1.2.2.1.10", "nodetype": "column"},
	"ifTable": {"oid": "1.3.6.1.2.1.2.2", "nodetype": "table"},
	"linkDown": {"oid": "1.3.6.1.6.3.1.1.5.3", "nodetype": "notification", "description": "A link went down."}
}`

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.Default()
	store, err := templatecache.Open(filepath.Join(t.TempDir(), "templates.db"), time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	seed := map[string]string{
		"profiles/kentik_snmp/generic/if-mib-generic.yml": "metrics: []\n",
		"profiles/kentik_snmp/cisco/cisco-asa.yml":        "metrics: []\n",
	}
	for path, content := range seed {
		if err := store.Put(path, content, time.Now()); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}

	a, err := New(cfg, templatecache.NewAdapter(store), selector.NewTokenMatch(cfg.Selector.FallbackPath))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	a.Store = store
	return a
}

func writeSymbols(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "IF-MIB.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateProfile(t *testing.T) {
	a := newTestApp(t)
	service := a.ProfileService()

	result, err := service.GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
		MIBName:     "IF-MIB",
	})
	if err != nil {
		t.Fatalf("GenerateProfile failed: %v", err)
	}

	if result.ReferencePath != "profiles/kentik_snmp/generic/if-mib-generic.yml" {
		t.Errorf("unexpected reference %s", result.ReferencePath)
	}
	if result.MetricCount != 1 || result.TrapCount != 1 {
		t.Errorf("unexpected counts: %d metrics, %d traps", result.MetricCount, result.TrapCount)
	}
	if !bytes.Contains(result.Document, []byte("ifInOctets")) {
		t.Errorf("document missing metric:\n%s", result.Document)
	}
	if !bytes.Contains(result.Document, []byte("1.3.6.1.4.1.CHANGE_THIS")) {
		t.Errorf("document missing operator placeholder:\n%s", result.Document)
	}
}

func TestGenerateProfileDerivesMIBName(t *testing.T) {
	a := newTestApp(t)

	result, err := a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
	})
	if err != nil {
		t.Fatalf("GenerateProfile failed: %v", err)
	}
	if result.MIBName != "IF-MIB" {
		t.Errorf("expected MIB name derived from file, got %q", result.MIBName)
	}
}

func TestGenerateProfileWritesOutput(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "out", "IF-MIB_profile.yaml")

	result, err := a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
		MIBName:     "IF-MIB",
		OutputPath:  out,
	})
	if err != nil {
		t.Fatalf("GenerateProfile failed: %v", err)
	}
	if result.WrittenPath != out {
		t.Errorf("expected written path %s, got %s", out, result.WrittenPath)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(written, result.Document) {
		t.Error("written file differs from returned document")
	}
}

func TestGenerateProfileExtractionFailure(t *testing.T) {
	a := newTestApp(t)

	_, err := a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, `["not", "an", "object"]`),
		MIBName:     "IF-MIB",
	})
	if !errors.IsCode(err, errors.CodeExtractionFailure) {
		t.Errorf("expected extraction failure, got %v", err)
	}

	_, err = a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: filepath.Join(t.TempDir(), "missing.json"),
	})
	if !errors.IsCode(err, errors.CodeExtractionFailure) {
		t.Errorf("expected extraction failure for missing file, got %v", err)
	}
}

func TestGenerateProfileColdCacheUsesFallback(t *testing.T) {
	cfg := config.Default()
	store, err := templatecache.Open(filepath.Join(t.TempDir(), "empty.db"), time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	a, err := New(cfg, templatecache.NewAdapter(store), selector.NewTokenMatch(cfg.Selector.FallbackPath))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	result, err := a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
		MIBName:     "IF-MIB",
	})
	if err != nil {
		t.Fatalf("GenerateProfile must degrade, not fail: %v", err)
	}
	if result.ReferencePath != cfg.Selector.FallbackPath {
		t.Errorf("expected fallback reference, got %s", result.ReferencePath)
	}
}

type stubGenerator struct {
	output string
	err    error
}

func (g *stubGenerator) Generate(ctx context.Context, input ports.GenerationInput) (string, error) {
	return g.output, g.err
}

func TestGenerateProfileAugmentedMode(t *testing.T) {
	a := newTestApp(t)
	a.Generator = &stubGenerator{output: "# grouped by interface\n"}

	result, err := a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
		MIBName:     "IF-MIB",
	})
	if err != nil {
		t.Fatalf("GenerateProfile failed: %v", err)
	}
	if !bytes.Contains(result.Document, []byte("# grouped by interface")) {
		t.Errorf("generated content not passed through:\n%s", result.Document)
	}
}

func TestGenerateProfileGeneratorFailureDegrades(t *testing.T) {
	a := newTestApp(t)
	a.Generator = &stubGenerator{err: context.DeadlineExceeded}

	plain := newTestApp(t)

	augmented, err := a.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
		MIBName:     "IF-MIB",
	})
	if err != nil {
		t.Fatalf("GenerateProfile must absorb generator failure: %v", err)
	}

	deterministic, err := plain.ProfileService().GenerateProfile(context.Background(), ports.GenerateRequest{
		SymbolsPath: writeSymbols(t, symbolTable),
		MIBName:     "IF-MIB",
	})
	if err != nil {
		t.Fatalf("GenerateProfile failed: %v", err)
	}

	if !bytes.Equal(augmented.Document, deterministic.Document) {
		t.Error("failed generator must leave the deterministic document untouched")
	}
}

func TestHealthCheck(t *testing.T) {
	a := newTestApp(t)
	health := NewHealthService(a)

	status := health.Check(context.Background())
	if status.Status != "up" {
		t.Errorf("expected up, got %s (%v)", status.Status, status.Components)
	}
	if status.Components["selector"] != "ok (token-match)" {
		t.Errorf("unexpected selector component: %q", status.Components["selector"])
	}

	_ = a.Store.Close()
	status = health.Check(context.Background())
	if status.Status != "degraded" {
		t.Errorf("expected degraded after store close, got %s", status.Status)
	}
}
