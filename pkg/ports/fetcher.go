package ports

import (
	"context"
	"net/http"
)

// FetchRequest carries everything the network call needs besides the URL.
type FetchRequest struct {
	Method  string
	Headers map[string]string
	// Body is the serialized request body. Nil means no body is sent at all.
	Body []byte
}

// Response is the result of a network call whose payload is decoded on demand.
type Response interface {
	// JSON decodes the response payload.
	JSON() (any, error)
}

// Fetcher performs a network call.
// Any returned error, or an error from Response.JSON, is reported downstream as a failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string, req FetchRequest) (Response, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, req FetchRequest) (Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string, req FetchRequest) (Response, error) {
	return f(ctx, url, req)
}

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
