// Package selector picks the best-fit reference template path for a target
// MIB name. Strategies are total functions: they always return a member of
// the candidate list or their fixed fallback path.
package selector

import (
	"strings"
	"time"

	"profilegen/internal/shared/observability"
)

// defaultStopwords are schema-suffix and version tokens that carry no signal
// when matched against corpus paths.
var defaultStopwords = []string{
	"mib", "smi", "snmp", "tc", "conf",
	"v1", "v2", "v2c", "v3",
}

// TokenMatch scores candidates by how many normalized target tokens occur as
// substrings of the lowercased candidate path.
type TokenMatch struct {
	fallback  string
	stopwords map[string]struct{}
}

func NewTokenMatch(fallback string, extraStopwords ...string) *TokenMatch {
	stop := make(map[string]struct{}, len(defaultStopwords)+len(extraStopwords))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range extraStopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &TokenMatch{fallback: fallback, stopwords: stop}
}

func (s *TokenMatch) Name() string { return "token-match" }

// Select returns the highest-scoring candidate. Ties break to the shortest
// path string, then to the earliest occurrence in the input list. An empty
// candidate list or an all-zero score resolves to the fallback path.
func (s *TokenMatch) Select(targetName string, candidates []string) string {
	start := time.Now()
	defer func() {
		observability.SelectionDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
	}()

	if len(candidates) == 0 {
		observability.SelectionFallbacksTotal.Inc()
		return s.fallback
	}

	tokens := s.tokenize(targetName)

	best := ""
	bestScore := 0
	for _, candidate := range candidates {
		lowered := strings.ToLower(candidate)
		score := 0
		for _, token := range tokens {
			if strings.Contains(lowered, token) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && len(candidate) < len(best)) {
			best = candidate
			bestScore = score
		}
	}

	if bestScore == 0 {
		observability.SelectionFallbacksTotal.Inc()
		return s.fallback
	}
	return best
}

func (s *TokenMatch) tokenize(targetName string) []string {
	normalized := strings.ToLower(targetName)
	normalized = strings.ReplaceAll(normalized, "-", " ")
	normalized = strings.ReplaceAll(normalized, "_", " ")

	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := s.stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
