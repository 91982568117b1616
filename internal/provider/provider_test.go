package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/observability"
	"github.com/scholar-feed/backend/pkg/arxiv"
	"github.com/scholar-feed/backend/pkg/httpclient"
	"github.com/scholar-feed/backend/pkg/semanticscholar"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		in      string
		want    Name
		wantErr bool
	}{
		{"", SemanticScholar, false},
		{"SemanticScholar", SemanticScholar, false},
		{"s2", SemanticScholar, false},
		{" arxiv ", Arxiv, false},
		{"pubmed", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSemanticScholarSearcherTagsRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/paper/search":
			fmt.Fprint(w, `{"data":[{"title":"A"},{"title":"B"}]}`)
		case "/author/search":
			fmt.Fprint(w, `{"data":[{"name":"Grace Hopper"}]}`)
		}
	}))
	defer ts.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	s := NewSemanticScholar(semanticscholar.NewClient(httpclient.NewRestyClient(5*time.Second), ts.URL, ""), metrics)
	assert.Equal(t, SemanticScholar, s.Name())

	papers, err := s.SearchPapers(context.Background(), "compilers", Options{Limit: 2})
	require.NoError(t, err)
	require.Len(t, papers, 2)
	for _, p := range papers {
		assert.Equal(t, SemanticScholar, p.Provider)
		assert.NotNil(t, p.Scholar)
		assert.Nil(t, p.Arxiv)
	}
	assert.Equal(t, "B", *papers[1].Scholar.Title)

	authors, err := s.SearchAuthors(context.Background(), "hopper", Options{Limit: 10})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Grace Hopper", authors[0].Scholar.Name)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("semanticscholar", "search_papers", "success")))
}

func TestArxivSearcherUsesAuthorPrefix(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("search_query"))
		fmt.Fprint(w, `<feed xmlns="http://www.w3.org/2005/Atom"><entry><id>http://arxiv.org/abs/1</id><title>T</title></entry></feed>`)
	}))
	defer ts.Close()

	s := NewArxiv(arxiv.NewClient(httpclient.NewRestyClient(5*time.Second), ts.URL), nil)

	papers, err := s.SearchPapers(context.Background(), "diffusion", Options{Limit: 5})
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, Arxiv, papers[0].Provider)
	assert.Equal(t, "T", papers[0].Arxiv.Title)

	authors, err := s.SearchAuthors(context.Background(), "hinton", Options{Limit: 10})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.NotNil(t, authors[0].Arxiv)

	assert.Equal(t, []string{"all:diffusion", "au:hinton"}, queries)
}

func TestSearcherPropagatesProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	s := NewArxiv(arxiv.NewClient(httpclient.NewRestyClient(5*time.Second), ts.URL), metrics)

	_, err := s.SearchPapers(context.Background(), "x", Options{Limit: 1})
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("arxiv", "search_papers", "error")))
}
