package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/provider"
	"github.com/scholar-feed/backend/pkg/arxiv"
	"github.com/scholar-feed/backend/pkg/semanticscholar"
)

func ptr[T any](v T) *T { return &v }

func TestFromScholarMapsFields(t *testing.T) {
	p := FromScholar(&semanticscholar.Paper{
		Title:         ptr("BERT"),
		Abstract:      ptr("We introduce BERT."),
		Authors:       []semanticscholar.Person{{Name: "Jacob Devlin"}, {Name: "Ming-Wei Chang"}},
		Year:          ptr(2019),
		CitationCount: ptr(80000),
		URL:           ptr("https://www.semanticscholar.org/paper/bert"),
		Venue:         ptr("NAACL"),
	})

	assert.Equal(t, "BERT", p.Title)
	assert.Equal(t, "We introduce BERT.", p.Abstract)
	assert.Equal(t, []string{"Jacob Devlin", "Ming-Wei Chang"}, p.Authors)
	assert.Equal(t, 2019, *p.Year)
	assert.Equal(t, 80000, *p.CitationCount)
	assert.Equal(t, "https://www.semanticscholar.org/paper/bert", p.URL)
	assert.Equal(t, "NAACL", p.Venue)
}

func TestFromScholarDefaults(t *testing.T) {
	p := FromScholar(&semanticscholar.Paper{Title: ptr("Sparse record")})

	assert.Equal(t, domain.AbstractNotAvailable, p.Abstract)
	assert.Equal(t, domain.URLNotAvailable, p.URL)
	require.NotNil(t, p.CitationCount)
	assert.Equal(t, 0, *p.CitationCount)
	assert.Nil(t, p.Year)
	assert.Empty(t, p.Authors)
	assert.NotNil(t, p.Authors)
}

func TestFromScholarEmptyStringsUseDefaults(t *testing.T) {
	p := FromScholar(&semanticscholar.Paper{Title: ptr("x"), Abstract: ptr(""), URL: ptr("")})
	assert.Equal(t, domain.AbstractNotAvailable, p.Abstract)
	assert.Equal(t, domain.URLNotAvailable, p.URL)
}

func TestMissingTitleIsPassedThrough(t *testing.T) {
	p := FromScholar(&semanticscholar.Paper{})
	assert.Empty(t, p.Title)
}

func TestFromArxivMapsEntry(t *testing.T) {
	p := FromArxiv(&arxiv.Entry{
		ID:        "http://arxiv.org/abs/2301.00001v2",
		Title:     "Sparse\n   Mixture of Experts",
		Summary:   "  We study\n routing. ",
		Published: "2023-01-02T10:00:00Z",
		Authors:   []arxiv.Author{{Name: "Ada Lovelace"}, {Name: " Alan Turing "}},
	})

	assert.Equal(t, "Sparse Mixture of Experts", p.Title)
	assert.Equal(t, "We study routing.", p.Abstract)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	require.NotNil(t, p.Year)
	assert.Equal(t, 2023, *p.Year)
	assert.Equal(t, "http://arxiv.org/abs/2301.00001v2", p.URL)
	assert.Equal(t, "arXiv", p.Venue)
	assert.Nil(t, p.CitationCount)
}

func TestFromArxivDefaults(t *testing.T) {
	p := FromArxiv(&arxiv.Entry{Title: "Only a title"})
	assert.Equal(t, domain.AbstractNotAvailable, p.Abstract)
	assert.Equal(t, domain.URLNotAvailable, p.URL)
	assert.Nil(t, p.Year)
}

func TestPublishedYear(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"2021-12-31T23:59:59Z", ptr(2021)},
		{"1999-01-01T00:00:00-05:00", ptr(1999)},
		{"2020-06-01", ptr(2020)},
		{"", nil},
		{"soon", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PublishedYear(tt.in))
		})
	}
}

func TestPaperDispatchesOnTag(t *testing.T) {
	records := []provider.PaperRecord{
		{Provider: provider.SemanticScholar, Scholar: &semanticscholar.Paper{Title: ptr("s2")}},
		{Provider: provider.Arxiv, Arxiv: &arxiv.Entry{Title: "ax"}},
	}
	papers := Papers(records)
	require.Len(t, papers, 2)
	assert.Equal(t, "s2", papers[0].Title)
	assert.Equal(t, "ax", papers[1].Title)
	assert.Equal(t, "arXiv", papers[1].Venue)
}

func TestResearcherFromScholar(t *testing.T) {
	r := Researcher(&semanticscholar.Author{
		Name:          "Geoffrey Hinton",
		PaperCount:    ptr(400),
		CitationCount: ptr(700000),
		Papers: []semanticscholar.AuthorPaper{
			{Title: ptr("A"), Year: ptr(2006)},
			{Title: ptr("B"), Year: ptr(2012)},
			{Title: ptr("C")},
			{Title: ptr("D"), Year: ptr(2012)},
			{Title: ptr("E"), Year: ptr(1986)},
			{Title: ptr("F"), Year: ptr(2018)},
			{Title: ptr("G"), Year: ptr(2015)},
		},
	})

	assert.Equal(t, "Geoffrey Hinton", r.Name)
	assert.Equal(t, []string{}, r.Affiliations)
	assert.Equal(t, 400, r.PaperCount)
	assert.Equal(t, 700000, *r.CitationCount)
	require.Len(t, r.RecentPapers, domain.MaxRecentPapers)

	var titles []string
	for _, p := range r.RecentPapers {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"F", "G", "B", "D", "A"}, titles)
}

func TestRecentPapersDoesNotMutateInput(t *testing.T) {
	in := []domain.RecentPaper{{Title: "old", Year: ptr(1990)}, {Title: "new", Year: ptr(2020)}}
	out := RecentPapers(in)
	assert.Equal(t, "new", out[0].Title)
	assert.Equal(t, "old", in[0].Title)
}
