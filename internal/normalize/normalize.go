// Package normalize maps provider-specific records onto domain.Paper and
// domain.Researcher. It never fails: absent optional fields get defaults.
package normalize

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/provider"
	"github.com/scholar-feed/backend/pkg/arxiv"
	"github.com/scholar-feed/backend/pkg/semanticscholar"
)

// Paper normalizes a tagged paper record.
func Paper(r provider.PaperRecord) domain.Paper {
	switch {
	case r.Scholar != nil:
		return FromScholar(r.Scholar)
	case r.Arxiv != nil:
		return FromArxiv(r.Arxiv)
	default:
		return domain.Paper{Abstract: domain.AbstractNotAvailable, Authors: []string{}, URL: domain.URLNotAvailable}
	}
}

// Papers normalizes records in order.
func Papers(records []provider.PaperRecord) []domain.Paper {
	papers := make([]domain.Paper, 0, len(records))
	for _, r := range records {
		papers = append(papers, Paper(r))
	}
	return papers
}

func FromScholar(p *semanticscholar.Paper) domain.Paper {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		authors = append(authors, a.Name)
	}

	citations := 0
	if p.CitationCount != nil {
		citations = *p.CitationCount
	}

	return domain.Paper{
		Title:         deref(p.Title),
		Abstract:      orDefault(p.Abstract, domain.AbstractNotAvailable),
		Authors:       authors,
		Year:          p.Year,
		CitationCount: &citations,
		URL:           orDefault(p.URL, domain.URLNotAvailable),
		Venue:         deref(p.Venue),
	}
}

func FromArxiv(e *arxiv.Entry) domain.Paper {
	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := collapse(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	abstract := collapse(e.Summary)
	if abstract == "" {
		abstract = domain.AbstractNotAvailable
	}
	url := strings.TrimSpace(e.ID)
	if url == "" {
		url = domain.URLNotAvailable
	}

	return domain.Paper{
		Title:    collapse(e.Title),
		Abstract: abstract,
		Authors:  authors,
		Year:     PublishedYear(e.Published),
		URL:      url,
		Venue:    arxiv.ProviderName,
	}
}

// PublishedYear returns the calendar year of an arXiv published timestamp,
// or nil when it cannot be read.
func PublishedYear(published string) *int {
	published = strings.TrimSpace(published)
	if published == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, published); err == nil {
		y := t.Year()
		return &y
	}
	if len(published) >= 4 {
		if y, err := strconv.Atoi(published[:4]); err == nil {
			return &y
		}
	}
	return nil
}

// Researcher normalizes a Semantic Scholar author record. arXiv author
// records need aggregation across entries and are handled by the caller.
func Researcher(a *semanticscholar.Author) domain.Researcher {
	affiliations := a.Affiliations
	if affiliations == nil {
		affiliations = []string{}
	}

	paperCount := 0
	if a.PaperCount != nil {
		paperCount = *a.PaperCount
	}
	citations := 0
	if a.CitationCount != nil {
		citations = *a.CitationCount
	}

	recent := make([]domain.RecentPaper, 0, len(a.Papers))
	for _, p := range a.Papers {
		recent = append(recent, domain.RecentPaper{Title: deref(p.Title), Year: p.Year})
	}

	return domain.Researcher{
		Name:          a.Name,
		Affiliations:  affiliations,
		Homepage:      deref(a.Homepage),
		PaperCount:    paperCount,
		CitationCount: &citations,
		RecentPapers:  RecentPapers(recent),
	}
}

// RecentPapers sorts by year descending, keeping provider order for equal
// years, and caps the result at domain.MaxRecentPapers. A missing year sorts
// as year 0.
func RecentPapers(papers []domain.RecentPaper) []domain.RecentPaper {
	sorted := make([]domain.RecentPaper, len(papers))
	copy(sorted, papers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return yearOf(sorted[i].Year) > yearOf(sorted[j].Year)
	})
	if len(sorted) > domain.MaxRecentPapers {
		sorted = sorted[:domain.MaxRecentPapers]
	}
	return sorted
}

func yearOf(y *int) int {
	if y == nil {
		return 0
	}
	return *y
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// collapse trims and folds the line breaks arXiv puts inside titles and
// summaries.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
