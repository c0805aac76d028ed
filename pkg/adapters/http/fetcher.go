package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/asyncfetch/pkg/ports"
)

// Fetcher implements ports.Fetcher on top of net/http.
// Non-2xx statuses are not errors: the body is still decoded, like any other response.
type Fetcher struct {
	client  ports.HTTPClient
	baseURL string
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client (defaults to http.DefaultClient).
func WithClient(client ports.HTTPClient) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithBaseURL sets the origin that relative endpoint URLs (e.g. "/todos") resolve against.
func WithBaseURL(base string) Option {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(base, "/")
	}
}

// NewFetcher creates a new HTTP fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues the request and buffers the response body.
func (f *Fetcher) Fetch(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, f.resolve(url), body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (f *Fetcher) resolve(url string) string {
	if f.baseURL != "" && strings.HasPrefix(url, "/") {
		return f.baseURL + url
	}
	return url
}

// Response is a buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the buffered body. An empty body is a decode error.
func (r *Response) JSON() (any, error) {
	var payload any
	if err := json.Unmarshal(r.Body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
