package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"profilegen/internal/core/errors"
	"profilegen/internal/core/ports"
	"profilegen/internal/engine/assembler"
	"profilegen/internal/engine/classifier"
	"profilegen/internal/shared/observability"
)

type profileService struct {
	app *App
}

var _ ports.ProfileService = (*profileService)(nil)

func NewProfileService(app *App) ports.ProfileService {
	return &profileService{app: app}
}

func (a *App) ProfileService() ports.ProfileService {
	return NewProfileService(a)
}

// GenerateProfile runs the full pipeline: read compiler output, classify,
// select a reference from the cached corpus, assemble, optionally enrich.
// Only extraction failures abort; a cold or unreachable cache degrades to the
// fallback reference.
func (s *profileService) GenerateProfile(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "profileService.GenerateProfile")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.GenerateResult{}, err
	}
	if s.app == nil {
		return ports.GenerateResult{}, fmt.Errorf("app is required")
	}

	data, err := os.ReadFile(req.SymbolsPath)
	if err != nil {
		return ports.GenerateResult{}, errors.Wrap(err, errors.CodeExtractionFailure, "read symbol table")
	}

	mibName := strings.TrimSpace(req.MIBName)
	if mibName == "" {
		mibName = mibNameFromPath(req.SymbolsPath)
	}
	span.SetAttributes(attribute.String("profile.mib", mibName))

	set, err := classifier.Extract(data)
	if err != nil {
		return ports.GenerateResult{}, errors.AddContext(err, errors.CtxMIB, mibName)
	}

	candidates := s.app.Cache.ListPaths(ctx)
	referencePath := s.app.Strategy.Select(mibName, candidates)
	referenceContent, cached := s.app.Cache.Get(ctx, referencePath)
	if !cached {
		slog.Debug("selected reference not cached, assembling without exemplar",
			"mib", mibName, "reference", referencePath)
	}

	profile := assembler.Assemble(assembler.Request{
		MIBName:              mibName,
		Set:                  set,
		ReferencePath:        referencePath,
		ReferenceContent:     referenceContent,
		DescriptionOverrides: req.DescriptionOverrides,
	})

	if s.app.Generator != nil {
		generated, err := s.app.Generator.Generate(ctx, ports.GenerationInput{
			TargetName:       mibName,
			ReferenceContent: referenceContent,
			Metrics:          set.Metrics,
			Traps:            set.Traps,
		})
		if err != nil {
			slog.Warn("generation collaborator failed, keeping deterministic output",
				"mib", mibName, "error", err)
		} else {
			profile.GeneratedContent = generated
		}
	}

	document, err := profile.Encode()
	if err != nil {
		return ports.GenerateResult{}, err
	}

	result := ports.GenerateResult{
		MIBName:       mibName,
		ReferencePath: referencePath,
		Document:      document,
		MetricCount:   len(profile.Document.Metrics),
		TrapCount:     len(profile.Document.Traps),
	}

	if req.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
			return ports.GenerateResult{}, fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(req.OutputPath, document, 0o644); err != nil {
			return ports.GenerateResult{}, fmt.Errorf("write profile %q: %w", req.OutputPath, err)
		}
		result.WrittenPath = req.OutputPath
	}

	slog.Info("profile generated",
		"mib", mibName,
		"reference", referencePath,
		"metrics", result.MetricCount,
		"traps", result.TrapCount,
	)

	return result, nil
}

func mibNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
