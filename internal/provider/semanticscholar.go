package provider

import (
	"context"
	"time"

	"github.com/scholar-feed/backend/internal/observability"
	"github.com/scholar-feed/backend/pkg/semanticscholar"
)

type scholarSearcher struct {
	client  *semanticscholar.Client
	metrics *observability.Metrics
}

// NewSemanticScholar wraps a Semantic Scholar client as a Searcher.
func NewSemanticScholar(client *semanticscholar.Client, metrics *observability.Metrics) Searcher {
	return &scholarSearcher{client: client, metrics: metrics}
}

func (s *scholarSearcher) Name() Name { return SemanticScholar }

func (s *scholarSearcher) SearchPapers(ctx context.Context, query string, opts Options) ([]PaperRecord, error) {
	start := time.Now()
	papers, err := s.client.SearchPapers(ctx, query, opts.Limit)
	s.metrics.ObserveUpstream(string(SemanticScholar), "search_papers", start, err)
	if err != nil {
		return nil, err
	}

	records := make([]PaperRecord, 0, len(papers))
	for i := range papers {
		records = append(records, PaperRecord{Provider: SemanticScholar, Scholar: &papers[i]})
	}
	return records, nil
}

func (s *scholarSearcher) SearchAuthors(ctx context.Context, query string, opts Options) ([]AuthorRecord, error) {
	start := time.Now()
	authors, err := s.client.SearchAuthors(ctx, query, opts.Limit)
	s.metrics.ObserveUpstream(string(SemanticScholar), "search_authors", start, err)
	if err != nil {
		return nil, err
	}

	records := make([]AuthorRecord, 0, len(authors))
	for i := range authors {
		records = append(records, AuthorRecord{Provider: SemanticScholar, Scholar: &authors[i]})
	}
	return records, nil
}
