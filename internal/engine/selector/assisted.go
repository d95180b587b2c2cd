package selector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"profilegen/internal/core/ports"
	"profilegen/internal/shared/observability"
)

const assistedTimeout = 15 * time.Second

// Assisted asks a generative model to pick a candidate. It is a drop-in
// replacement for TokenMatch behind the same interface: any internal failure,
// including an answer outside the candidate list, delegates to the wrapped
// deterministic strategy.
type Assisted struct {
	client   *genai.Client
	model    string
	fallback ports.SelectionStrategy
}

func NewAssisted(ctx context.Context, apiKey, model string, fallback ports.SelectionStrategy) (*Assisted, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assisted selection requires an API key")
	}
	if fallback == nil {
		return nil, fmt.Errorf("assisted selection requires a fallback strategy")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Assisted{client: client, model: model, fallback: fallback}, nil
}

func (s *Assisted) Name() string { return "assisted" }

func (s *Assisted) Select(targetName string, candidates []string) string {
	if len(candidates) == 0 {
		return s.fallback.Select(targetName, candidates)
	}

	start := time.Now()
	defer func() {
		observability.SelectionDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), assistedTimeout)
	defer cancel()

	prompt := buildPrompt(targetName, candidates)
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		slog.Warn("assisted selection failed, using deterministic strategy", "target", targetName, "error", err)
		return s.fallback.Select(targetName, candidates)
	}

	answer := strings.TrimSpace(resp.Text())
	for _, candidate := range candidates {
		if candidate == answer {
			return candidate
		}
	}

	slog.Warn("assisted selection returned unknown path, using deterministic strategy",
		"target", targetName, "answer", answer)
	return s.fallback.Select(targetName, candidates)
}

func buildPrompt(targetName string, candidates []string) string {
	var b strings.Builder
	b.WriteString("You are selecting a reference SNMP monitoring profile.\n")
	b.WriteString("Target MIB: ")
	b.WriteString(targetName)
	b.WriteString("\nCandidate profile paths:\n")
	for _, c := range candidates {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("Reply with exactly one candidate path from the list above and nothing else.\n")
	return b.String()
}
