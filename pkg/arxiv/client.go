package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/pkg/httpclient"
)

const (
	DefaultBaseURL = "http://export.arxiv.org/api/query"

	// ProviderName tags records and errors coming from this API. It is also
	// the venue reported for arXiv papers.
	ProviderName = "arXiv"

	FieldAll    = "all"
	FieldAuthor = "au"

	SortByLastUpdated = "lastUpdatedDate"
	SortDescending    = "descending"
)

type Client struct {
	httpClient httpclient.Client
	baseURL    string
}

func NewClient(httpClient httpclient.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Feed represents the arXiv Atom feed response
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []Entry  `xml:"entry"`
}

// Entry keeps only the Atom fields the normalizer reads.
type Entry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []Author `xml:"author"`
}

type Author struct {
	Name string `xml:"name"`
}

type SearchParams struct {
	Query string
	// Field is the search_query prefix: FieldAll or FieldAuthor.
	Field      string
	MaxResults int
	SortBy     string
	SortOrder  string
}

// Search runs one /api/query request and returns the parsed entries.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Entry, error) {
	field := p.Field
	if field == "" {
		field = FieldAll
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = SortByLastUpdated
	}
	sortOrder := p.SortOrder
	if sortOrder == "" {
		sortOrder = SortDescending
	}

	params := url.Values{}
	params.Set("search_query", fmt.Sprintf("%s:%s", field, p.Query))
	params.Set("sortBy", sortBy)
	params.Set("sortOrder", sortOrder)
	params.Set("max_results", fmt.Sprintf("%d", p.MaxResults))

	resp, err := c.httpClient.Get(ctx, c.baseURL, params, nil)
	if err != nil {
		return nil, domain.NewProviderError(ProviderName, 0, fmt.Sprintf("request failed: %v", err), err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, domain.NewProviderError(ProviderName, resp.StatusCode(), strings.TrimSpace(string(resp.Body())), nil)
	}

	var feed Feed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, domain.NewProviderError(ProviderName, resp.StatusCode(), fmt.Sprintf("failed to parse response: %v", err), err)
	}

	return feed.Entries, nil
}
