package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scholar-feed/backend/pkg/httpclient"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultModel   = "gemini-2.0-flash"
)

// Client calls the generateContent REST endpoint of the Gemini API.
type Client struct {
	httpClient httpclient.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewClient(httpClient httpclient.Client, baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText sends a single-turn prompt and returns the concatenated text
// parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	reqURL := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	resp, err := c.httpClient.Post(ctx, reqURL, headers, reqBody)
	if err != nil {
		return "", fmt.Errorf("calling gemini api: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", fmt.Errorf("gemini api returned status %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}

	var genResp generateResponse
	if err := json.Unmarshal(resp.Body(), &genResp); err != nil {
		return "", fmt.Errorf("parsing gemini response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini api")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
