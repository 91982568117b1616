package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/observability"
)

// TextGenerator is a single-prompt generative language model.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// QueryOptimizer rewrites interests or raw user queries into provider
// search queries with one generative call. It never falls back to the raw
// input.
type QueryOptimizer struct {
	gen     TextGenerator
	metrics *observability.Metrics
	logger  zerolog.Logger
}

func NewQueryOptimizer(gen TextGenerator, metrics *observability.Metrics, logger zerolog.Logger) *QueryOptimizer {
	return &QueryOptimizer{gen: gen, metrics: metrics, logger: logger}
}

func (o *QueryOptimizer) OptimizeInterests(ctx context.Context, interests []string) (string, error) {
	prompt := fmt.Sprintf(
		"Convert these research interests to academic paper search query: %s. Respond ONLY with the query.",
		strings.Join(interests, ", "),
	)
	return o.run(ctx, "optimize_interests", prompt)
}

func (o *QueryOptimizer) OptimizeQuery(ctx context.Context, raw string) (string, error) {
	prompt := fmt.Sprintf(
		"Act as a research assistant. Optimize this raw user query for academic paper search: %q. "+
			"Respond ONLY with the improved search phrase, no explanations.",
		raw,
	)
	return o.run(ctx, "optimize_query", prompt)
}

func (o *QueryOptimizer) run(ctx context.Context, op, prompt string) (string, error) {
	start := time.Now()
	text, err := o.gen.GenerateText(ctx, prompt)
	o.metrics.ObserveUpstream("gemini", op, start, err)
	if err != nil {
		return "", domain.NewOptimizationError("query optimization failed", err)
	}

	query := cleanQuery(text)
	if query == "" {
		return "", domain.NewOptimizationError("query optimization returned no text", nil)
	}

	o.logger.Debug().Str("operation", op).Str("query", query).Msg("optimized search query")
	return query, nil
}

// cleanQuery strips markdown fences and wrapping quotes models sometimes add
// despite the prompt.
func cleanQuery(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop a language tag such as ```text
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}
