// Package provider issues paper and author searches against one of the
// supported paper-search APIs and returns raw, provider-tagged records.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholar-feed/backend/pkg/arxiv"
	"github.com/scholar-feed/backend/pkg/semanticscholar"
)

type Name string

const (
	SemanticScholar Name = semanticscholar.ProviderName
	Arxiv           Name = "arxiv"
)

// ParseName maps a configuration value onto a provider name.
func ParseName(s string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "semanticscholar", "semantic_scholar", "s2":
		return SemanticScholar, nil
	case "arxiv":
		return Arxiv, nil
	default:
		return "", fmt.Errorf("unsupported search provider %q", s)
	}
}

type Options struct {
	Limit     int
	SortBy    string
	SortOrder string
}

// PaperRecord is a tagged variant: exactly one of Scholar or Arxiv is set,
// matching Provider.
type PaperRecord struct {
	Provider Name
	Scholar  *semanticscholar.Paper
	Arxiv    *arxiv.Entry
}

// AuthorRecord is the raw result of an author search. arXiv has no author
// endpoint, so its author search yields paper entries matched on au:.
type AuthorRecord struct {
	Provider Name
	Scholar  *semanticscholar.Author
	Arxiv    *arxiv.Entry
}

// Searcher is the provider search client. Errors are *domain.UpstreamError.
type Searcher interface {
	Name() Name
	SearchPapers(ctx context.Context, query string, opts Options) ([]PaperRecord, error)
	SearchAuthors(ctx context.Context, query string, opts Options) ([]AuthorRecord, error)
}
