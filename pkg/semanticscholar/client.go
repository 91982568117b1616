package semanticscholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/pkg/httpclient"
)

const (
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// ProviderName tags records and errors coming from this API.
	ProviderName = "semanticscholar"

	// placeholderAPIKey is the sample value shipped in example env files;
	// it is treated as no key at all.
	placeholderAPIKey = "optional_key"

	paperFields  = "title,abstract,authors,year,citationCount,url,venue"
	authorFields = "name,affiliations,paperCount,citationCount,homepage,papers.year,papers.title"
)

type Client struct {
	httpClient httpclient.Client
	baseURL    string
	apiKey     string
}

func NewClient(httpClient httpclient.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Paper is a raw /paper/search record. Pointer fields distinguish "absent"
// from zero values so the normalizer can apply defaults.
type Paper struct {
	PaperID       string   `json:"paperId"`
	Title         *string  `json:"title"`
	Abstract      *string  `json:"abstract"`
	Authors       []Person `json:"authors"`
	Year          *int     `json:"year"`
	CitationCount *int     `json:"citationCount"`
	URL           *string  `json:"url"`
	Venue         *string  `json:"venue"`
}

type Person struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// Author is a raw /author/search record.
type Author struct {
	AuthorID      string        `json:"authorId"`
	Name          string        `json:"name"`
	Affiliations  []string      `json:"affiliations"`
	PaperCount    *int          `json:"paperCount"`
	CitationCount *int          `json:"citationCount"`
	Homepage      *string       `json:"homepage"`
	Papers        []AuthorPaper `json:"papers"`
}

type AuthorPaper struct {
	PaperID string  `json:"paperId"`
	Title   *string `json:"title"`
	Year    *int    `json:"year"`
}

type searchResponse[T any] struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Data   []T `json:"data"`
}

// SearchPapers queries /paper/search.
func (c *Client) SearchPapers(ctx context.Context, query string, limit int) ([]Paper, error) {
	var resp searchResponse[Paper]
	if err := c.get(ctx, "/paper/search", query, limit, paperFields, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SearchAuthors queries /author/search.
func (c *Client) SearchAuthors(ctx context.Context, query string, limit int) ([]Author, error) {
	var resp searchResponse[Author]
	if err := c.get(ctx, "/author/search", query, limit, authorFields, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path, query string, limit int, fields string, out any) error {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("fields", fields)

	resp, err := c.httpClient.Get(ctx, c.baseURL+path, params, c.headers())
	if err != nil {
		return domain.NewProviderError(ProviderName, 0, fmt.Sprintf("request failed: %v", err), err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return domain.NewProviderError(ProviderName, resp.StatusCode(), strings.TrimSpace(string(resp.Body())), nil)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.NewProviderError(ProviderName, resp.StatusCode(), fmt.Sprintf("failed to parse response: %v", err), err)
	}
	return nil
}

// headers attaches the API key only when a real key is configured.
func (c *Client) headers() map[string]string {
	if c.apiKey == "" || c.apiKey == placeholderAPIKey {
		return nil
	}
	return map[string]string{"x-api-key": c.apiKey}
}
