package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/asyncfetch/pkg/ports"
)

// Handler produces the payload of a routed call.
type Handler func(ctx context.Context, url string, req ports.FetchRequest) (any, error)

// Call is one recorded invocation of the Fetcher.
type Call struct {
	URL     string
	Request ports.FetchRequest
}

// Fetcher implements ports.Fetcher without any network, routing on "METHOD URL".
// Safe for concurrent use.
type Fetcher struct {
	mu     sync.RWMutex
	routes map[string]Handler
	calls  []Call
}

// NewFetcher creates a new in-memory fetcher with no routes.
func NewFetcher() *Fetcher {
	return &Fetcher{
		routes: make(map[string]Handler),
	}
}

// Handle registers a handler for an exact method and URL.
func (f *Fetcher) Handle(method, url string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+url] = h
}

// Respond registers a fixed payload for an exact method and URL.
func (f *Fetcher) Respond(method, url string, payload any) {
	f.Handle(method, url, func(context.Context, string, ports.FetchRequest) (any, error) {
		return payload, nil
	})
}

// Fail registers a fixed error for an exact method and URL.
func (f *Fetcher) Fail(method, url string, err error) {
	f.Handle(method, url, func(context.Context, string, ports.FetchRequest) (any, error) {
		return nil, err
	})
}

// Fetch records the call and runs the matching handler.
// Unrouted calls fail like a refused connection would.
func (f *Fetcher) Fetch(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{URL: url, Request: req})
	h, ok := f.routes[req.Method+" "+url]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no route for %s %s", req.Method, url)
	}
	payload, err := h(ctx, url, req)
	if err != nil {
		return nil, err
	}
	return Response{Payload: payload}, nil
}

// Calls returns a copy of the recorded calls in order.
func (f *Fetcher) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Call(nil), f.calls...)
}

// Response is an already decoded payload.
type Response struct {
	Payload any
}

// JSON returns the payload as is.
func (r Response) JSON() (any, error) {
	return r.Payload, nil
}
