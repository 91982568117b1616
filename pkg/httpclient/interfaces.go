package httpclient

import (
	"context"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts the upstream HTTP calls so API clients can be pointed at
// test servers or fakes.
type Client interface {
	Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (Response, error)
	Post(ctx context.Context, rawURL string, headers map[string]string, body any) (Response, error)
}
