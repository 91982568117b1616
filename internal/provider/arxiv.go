package provider

import (
	"context"
	"time"

	"github.com/scholar-feed/backend/internal/observability"
	"github.com/scholar-feed/backend/pkg/arxiv"
)

type arxivSearcher struct {
	client  *arxiv.Client
	metrics *observability.Metrics
}

// NewArxiv wraps an arXiv client as a Searcher.
func NewArxiv(client *arxiv.Client, metrics *observability.Metrics) Searcher {
	return &arxivSearcher{client: client, metrics: metrics}
}

func (s *arxivSearcher) Name() Name { return Arxiv }

func (s *arxivSearcher) SearchPapers(ctx context.Context, query string, opts Options) ([]PaperRecord, error) {
	entries, err := s.search(ctx, "search_papers", arxiv.FieldAll, query, opts)
	if err != nil {
		return nil, err
	}

	records := make([]PaperRecord, 0, len(entries))
	for i := range entries {
		records = append(records, PaperRecord{Provider: Arxiv, Arxiv: &entries[i]})
	}
	return records, nil
}

func (s *arxivSearcher) SearchAuthors(ctx context.Context, query string, opts Options) ([]AuthorRecord, error) {
	entries, err := s.search(ctx, "search_authors", arxiv.FieldAuthor, query, opts)
	if err != nil {
		return nil, err
	}

	records := make([]AuthorRecord, 0, len(entries))
	for i := range entries {
		records = append(records, AuthorRecord{Provider: Arxiv, Arxiv: &entries[i]})
	}
	return records, nil
}

func (s *arxivSearcher) search(ctx context.Context, op, field, query string, opts Options) ([]arxiv.Entry, error) {
	start := time.Now()
	entries, err := s.client.Search(ctx, arxiv.SearchParams{
		Query:      query,
		Field:      field,
		MaxResults: opts.Limit,
		SortBy:     opts.SortBy,
		SortOrder:  opts.SortOrder,
	})
	s.metrics.ObserveUpstream(string(Arxiv), op, start, err)
	return entries, err
}
