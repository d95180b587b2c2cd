// Package app wires the profile-generation components behind explicit,
// injected dependencies. No package-level client handles: every collaborator
// arrives through the constructor so tests can substitute stand-ins.
package app

import (
	"fmt"

	"profilegen/internal/core/config"
	"profilegen/internal/core/ports"
	"profilegen/internal/data/templatecache"
)

type App struct {
	Config   *config.Config
	Cache    ports.TemplateCache
	Strategy ports.SelectionStrategy

	// Generator is the optional external generation collaborator for the
	// augmented assembly mode. Nil means deterministic mode only.
	Generator ports.Generator

	// Store is the concrete cache store when one is attached; used only for
	// health reporting. The domain flow goes through the Cache port.
	Store *templatecache.Store
}

func New(cfg *config.Config, cache ports.TemplateCache, strategy ports.SelectionStrategy) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("template cache is required")
	}
	if strategy == nil {
		return nil, fmt.Errorf("selection strategy is required")
	}
	return &App{Config: cfg, Cache: cache, Strategy: strategy}, nil
}
