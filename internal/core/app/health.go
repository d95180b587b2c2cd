package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// Check template cache
	if s.app.Store != nil {
		if n, err := s.app.Store.Count(); err != nil {
			status.Status = "degraded"
			status.Components["template_cache"] = fmt.Sprintf("unreachable: %v", err)
		} else {
			status.Components["template_cache"] = fmt.Sprintf("ok (%d templates)", n)
		}
	} else {
		status.Components["template_cache"] = "detached"
	}

	// Check selection strategy
	if s.app.Strategy != nil {
		status.Components["selector"] = fmt.Sprintf("ok (%s)", s.app.Strategy.Name())
	} else {
		status.Status = "degraded"
		status.Components["selector"] = "missing"
	}

	if s.app.Config != nil {
		status.Components["corpus"] = s.app.Config.Corpus.Repo
	}

	return status
}
