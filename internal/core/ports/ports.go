package ports

import (
	"context"
	"time"

	"profilegen/internal/engine/classifier"
)

// TemplateCache abstracts the durable path→content template store.
//
// Reads are soft by contract: an unreachable store degrades to absent/empty
// instead of returning an error, so callers fall back to defaults. Writes
// surface errors because the sync worker decides how to treat them.
type TemplateCache interface {
	Put(ctx context.Context, path, content string, updatedAt time.Time) error
	Get(ctx context.Context, path string) (content string, ok bool)
	ListPaths(ctx context.Context) []string
}

// CorpusSource abstracts the remote source-of-truth for reference templates.
// ListPaths returns the authoritative, ordered, prefix/suffix-filtered path
// list; its failure is fatal to a sync run. FetchContent failures are
// per-item and skippable.
type CorpusSource interface {
	ListPaths(ctx context.Context, prefix, suffix string) ([]string, error)
	FetchContent(ctx context.Context, path string) (string, error)
}

// SelectionStrategy picks the best-fit reference path for a target name.
// Implementations are total: they never fail and never return an empty
// string — at worst they return their fixed fallback path.
type SelectionStrategy interface {
	Select(targetName string, candidates []string) string
	Name() string
}

// GenerationInput is the payload handed to an external generation collaborator.
type GenerationInput struct {
	TargetName       string
	ReferenceContent string
	Metrics          []classifier.Symbol
	Traps            []classifier.Symbol
}

// Generator enriches an assembled profile with externally generated text.
// Output is opaque pass-through; the core never parses or validates it.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) (string, error)
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	RunID     string
	Synced    int
	Failed    int
	Remaining int
	Complete  bool
}

// SyncService exposes the template synchronization use case to driving adapters.
type SyncService interface {
	Run(ctx context.Context) (SyncReport, error)
}

// GenerateRequest defines a profile generation request for driving adapters.
type GenerateRequest struct {
	SymbolsPath          string
	MIBName              string
	DescriptionOverrides map[string]string
	OutputPath           string
}

// GenerateResult contains the assembled profile document.
type GenerateResult struct {
	MIBName       string
	ReferencePath string
	Document      []byte
	MetricCount   int
	TrapCount     int
	WrittenPath   string
}

// ProfileService exposes the symbol-table→profile use case to driving adapters.
type ProfileService interface {
	GenerateProfile(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
