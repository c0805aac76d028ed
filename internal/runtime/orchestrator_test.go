package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/asyncfetch/internal/logging"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFetcher simulates the network collaborator.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
	args := m.Called(ctx, url, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Response), args.Error(1)
}

type stubResponse struct {
	payload any
	err     error
}

func (r stubResponse) JSON() (any, error) {
	return r.payload, r.err
}

// recorder is a downstream stage that remembers what it received.
type recorder struct {
	mu      sync.Mutex
	actions []domain.Action
}

func (r *recorder) next(ctx context.Context, action domain.Action) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return action
}

func (r *recorder) received() []domain.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Action(nil), r.actions...)
}

func jsonHeaders(extra map[string]string) map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

func newTestOrchestrator(fetcher ports.Fetcher, opts ...Option) *Orchestrator {
	opts = append([]Option{WithFetcher(fetcher)}, opts...)
	return NewOrchestrator(testEndpoints, domain.DefaultVerbs(), opts...)
}

func TestOrchestrator_Success(t *testing.T) {
	tests := []struct {
		name   string
		action domain.Action
		url    string
	}{
		{
			name:   "plain call",
			action: domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"}},
			url:    "/svc",
		},
		{
			name:   "path params",
			action: domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"}, "params": "/1"},
			url:    "/svc/1",
		},
		{
			name:   "query params",
			action: domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"}, "params": map[string]any{"id": 10}},
			url:    "/svc?id=10",
		},
		{
			name:   "object params onto existing query",
			action: domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_FOO_REQUEST"}, "params": map[string]any{"bar": 10}},
			url:    "/foo?id=1&bar=10",
		},
		{
			name:   "string params onto existing query",
			action: domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_FOO_REQUEST"}, "params": "&bar=10"},
			url:    "/foo?id=1&bar=10",
		},
		{
			name:   "invalid params ignored",
			action: domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_FOO_REQUEST"}, "params": 1},
			url:    "/foo?id=1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &MockFetcher{}
			fetcher.On("Fetch", mock.Anything, tt.url, ports.FetchRequest{
				Method:  "GET",
				Headers: jsonHeaders(nil),
			}).Return(stubResponse{payload: nil}, nil).Once()

			rec := &recorder{}
			sut := newTestOrchestrator(fetcher)
			sut.Handle(context.Background(), tt.action, rec.next)

			inner := tt.action[domain.CallAPI].(domain.Action)
			typ, _ := inner.Type()
			tok, err := domain.ParseToken(typ)
			require.NoError(t, err)

			got := rec.received()
			require.Len(t, got, 2)
			assert.Equal(t, domain.Action{"type": typ}, got[0])
			assert.Equal(t, domain.Action{"type": tok.WithStep(domain.StepSuccess), "payload": nil}, got[1])
			fetcher.AssertExpectations(t)
		})
	}
}

func TestOrchestrator_Failure(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc", mock.Anything).Return(nil, errors.New("ko"))

	rec := &recorder{}
	sut := newTestOrchestrator(fetcher)
	result := sut.Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
	}, rec.next)

	got := rec.received()
	require.Len(t, got, 2)
	assert.Equal(t, domain.Action{"type": "LOAD_ACTION_REQUEST"}, got[0])
	assert.Equal(t, domain.Action{"type": "LOAD_ACTION_FAILURE", "error": "ko"}, got[1])
	assert.Equal(t, got[1], result, "the terminal forward's result is returned")
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestOrchestrator_DecodeFailure(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc", mock.Anything).
		Return(stubResponse{err: errors.New("invalid character '<' looking for beginning of value")}, nil)

	rec := &recorder{}
	newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
	}, rec.next)

	got := rec.received()
	require.Len(t, got, 2)
	assert.Equal(t, "LOAD_ACTION_FAILURE", got[1]["type"])
	assert.Equal(t, "invalid character '<' looking for beginning of value", got[1]["error"])
	assert.NotContains(t, got[1], "payload")
}

func TestOrchestrator_PanicBecomesFailure(t *testing.T) {
	fetcher := ports.FetcherFunc(func(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
		panic("connection reset")
	})

	rec := &recorder{}
	assert.NotPanics(t, func() {
		newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
			domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
		}, rec.next)
	})

	got := rec.received()
	require.Len(t, got, 2)
	assert.Equal(t, domain.Action{"type": "LOAD_ACTION_FAILURE", "error": "connection reset"}, got[1])
}

func TestOrchestrator_NilResponseBecomesFailure(t *testing.T) {
	fetcher := ports.FetcherFunc(func(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
		return nil, nil
	})

	rec := &recorder{}
	newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
	}, rec.next)

	got := rec.received()
	require.Len(t, got, 2)
	assert.Equal(t, "LOAD_ACTION_FAILURE", got[1]["type"])
	assert.Equal(t, errNoResponse.Error(), got[1]["error"])
}

func TestOrchestrator_NoEndpoints(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLeveled(logging.NewWithWriter(&buf, slog.LevelWarn))
	fetcher := &MockFetcher{}

	sut := NewOrchestrator(nil, domain.DefaultVerbs(), WithFetcher(fetcher), WithLogger(logger))
	assert.True(t, sut.Passthrough())
	assert.Equal(t, 1, strings.Count(buf.String(), "no endpoints found"))

	action := domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"}}
	rec := &recorder{}
	for range 3 {
		sut.Handle(context.Background(), action, rec.next)
	}

	got := rec.received()
	require.Len(t, got, 3)
	for _, a := range got {
		assert.Equal(t, action, a)
	}
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1, strings.Count(buf.String(), "no endpoints found"), "the warning is logged at setup only")
}

func TestOrchestrator_NotACall(t *testing.T) {
	fetcher := &MockFetcher{}
	rec := &recorder{}

	action := domain.Action{"type": "LOAD_ACTION_REQUEST"}
	result := newTestOrchestrator(fetcher).Handle(context.Background(), action, rec.next)

	assert.Equal(t, []domain.Action{action}, rec.received())
	assert.Equal(t, action, result)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_InvalidEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		action domain.Action
	}{
		{"unknown verb", domain.Action{domain.CallAPI: domain.Action{"type": "BAD_ACTION_REQUEST"}}},
		{"unknown endpoint", domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_NOPE_REQUEST"}}},
		{"unknown step", domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_ACTION_DONE"}}},
		{"malformed", domain.Action{domain.CallAPI: domain.Action{"type": "LOAD"}}},
		{"missing type", domain.Action{domain.CallAPI: domain.Action{"id": 1}}},
		{"inner action not an object", domain.Action{domain.CallAPI: "LOAD_ACTION_REQUEST"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewLeveled(logging.NewWithWriter(&buf, slog.LevelWarn))
			fetcher := &MockFetcher{}

			var passthroughs int
			hooks := domain.Hooks{
				OnPassthrough: func(ctx context.Context, e *domain.CallEvent) { passthroughs++ },
			}

			rec := &recorder{}
			newTestOrchestrator(fetcher, WithLogger(logger), WithHooks(hooks)).
				Handle(context.Background(), tt.action, rec.next)

			assert.Equal(t, []domain.Action{tt.action}, rec.received())
			fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
			assert.Contains(t, buf.String(), "level=WARN")
			assert.Equal(t, 1, passthroughs)
		})
	}
}

func TestOrchestrator_VerbMapping(t *testing.T) {
	tests := []struct {
		verb   string
		method string
	}{
		{"LOAD", "GET"},
		{"CREATE", "POST"},
		{"DELETE", "DELETE"},
		{"UPDATE", "PATCH"},
		{"MODIFY", "PUT"},
	}
	for _, tt := range tests {
		t.Run(tt.verb, func(t *testing.T) {
			fetcher := &MockFetcher{}
			fetcher.On("Fetch", mock.Anything, "/svc?id=1", ports.FetchRequest{
				Method:  tt.method,
				Headers: jsonHeaders(map[string]string{"foo": "bar"}),
				Body:    []byte(`{"name":"foo"}`),
			}).Return(stubResponse{payload: map[string]any{"ok": true}}, nil).Once()

			rec := &recorder{}
			newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
				domain.CallAPI: domain.Action{"type": tt.verb + "_ACTION_REQUEST"},
				"body":         map[string]any{"name": "foo"},
				"headers":      map[string]any{"foo": "bar"},
				"params":       map[string]any{"id": 1},
			}, rec.next)

			got := rec.received()
			require.Len(t, got, 2)
			assert.Equal(t, domain.Action{"type": tt.verb + "_ACTION_REQUEST"}, got[0])
			assert.Equal(t, domain.Action{
				"type":    tt.verb + "_ACTION_SUCCESS",
				"payload": map[string]any{"ok": true},
			}, got[1])
			fetcher.AssertExpectations(t)
		})
	}
}

func TestOrchestrator_MethodOverride(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc", mock.MatchedBy(func(req ports.FetchRequest) bool {
		return req.Method == "POST"
	})).Return(stubResponse{}, nil).Once()

	sut := NewOrchestrator(testEndpoints, domain.DefaultVerbs().Merge(map[string]string{"UPDATE": "POST"}), WithFetcher(fetcher))
	sut.Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "UPDATE_ACTION_REQUEST"},
	}, (&recorder{}).next)

	fetcher.AssertExpectations(t)
}

func TestOrchestrator_HeadersOverrideDefaults(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc", ports.FetchRequest{
		Method:  "GET",
		Headers: map[string]string{"content-type": "text/plain"},
	}).Return(stubResponse{}, nil).Once()

	newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
		"headers":      map[string]string{"content-type": "text/plain"},
	}, (&recorder{}).next)

	fetcher.AssertExpectations(t)
}

func TestOrchestrator_AbsentBodyIsNotSent(t *testing.T) {
	for _, body := range []any{nil, "", false, 0} {
		t.Run(fmt.Sprintf("%#v", body), func(t *testing.T) {
			fetcher := &MockFetcher{}
			fetcher.On("Fetch", mock.Anything, "/svc", mock.MatchedBy(func(req ports.FetchRequest) bool {
				return req.Body == nil
			})).Return(stubResponse{}, nil).Once()

			action := domain.Action{domain.CallAPI: domain.Action{"type": "CREATE_ACTION_REQUEST"}}
			if body != nil {
				action["body"] = body
			}
			newTestOrchestrator(fetcher).Handle(context.Background(), action, (&recorder{}).next)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestOrchestrator_UnserializableBodyFails(t *testing.T) {
	fetcher := &MockFetcher{}
	rec := &recorder{}

	newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "CREATE_ACTION_REQUEST"},
		"body":         map[string]any{"ch": make(chan int)},
	}, rec.next)

	got := rec.received()
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE_ACTION_FAILURE", got[1]["type"])
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_SpreadsInnerFields(t *testing.T) {
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc/42", mock.Anything).
		Return(stubResponse{payload: map[string]any{"id": "42"}}, nil)

	inner := domain.Action{"type": "LOAD_ACTION_REQUEST", "id": "42"}
	rec := &recorder{}
	newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
		domain.CallAPI: inner,
		"params":       "/42",
	}, rec.next)

	got := rec.received()
	require.Len(t, got, 2)
	assert.Equal(t, domain.Action{"type": "LOAD_ACTION_REQUEST", "id": "42"}, got[0])
	assert.Equal(t, domain.Action{
		"type":    "LOAD_ACTION_SUCCESS",
		"id":      "42",
		"payload": map[string]any{"id": "42"},
	}, got[1])
	assert.Equal(t, "LOAD_ACTION_REQUEST", inner["type"], "the caller's inner action is not mutated")
}

func TestOrchestrator_RequestForwardedBeforeFetch(t *testing.T) {
	rec := &recorder{}
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc", mock.Anything).
		Run(func(args mock.Arguments) {
			got := rec.received()
			require.Len(t, got, 1, "the request notification must precede the network call")
			assert.Equal(t, "LOAD_ACTION_REQUEST", got[0]["type"])
		}).
		Return(stubResponse{}, nil)

	newTestOrchestrator(fetcher).Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
	}, rec.next)
	fetcher.AssertExpectations(t)
}

func TestOrchestrator_Hooks(t *testing.T) {
	var events []domain.CallEvent
	hooks := domain.Hooks{
		OnRequest: func(ctx context.Context, e *domain.CallEvent) { events = append(events, *e) },
		OnSuccess: func(ctx context.Context, e *domain.CallEvent) { events = append(events, *e) },
	}
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "/svc", mock.Anything).Return(stubResponse{}, nil)

	sut := newTestOrchestrator(fetcher, WithHooks(hooks), WithIDGenerator(func() string { return "call-1" }))
	sut.Handle(context.Background(), domain.Action{
		domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
	}, (&recorder{}).next)

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventRequest, events[0].Type)
	assert.Equal(t, domain.EventSuccess, events[1].Type)
	for _, e := range events {
		assert.Equal(t, "call-1", e.ID)
		assert.Equal(t, "GET", e.Method)
		assert.Equal(t, "/svc", e.URL)
		assert.Equal(t, domain.Token{Verb: "LOAD", Endpoint: "ACTION", Step: "REQUEST"}, e.Token)
	}
}

func TestOrchestrator_PanickingHooks(t *testing.T) {
	boom := func(ctx context.Context, e *domain.CallEvent) { panic("hook exploded") }
	tests := []struct {
		name  string
		hooks domain.Hooks
		fail  bool
		want  string
	}{
		{"OnRequest", domain.Hooks{OnRequest: boom}, false, "LOAD_ACTION_SUCCESS"},
		{"OnSuccess", domain.Hooks{OnSuccess: boom}, false, "LOAD_ACTION_SUCCESS"},
		{"OnFailure", domain.Hooks{OnFailure: boom}, true, "LOAD_ACTION_FAILURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := ports.FetcherFunc(func(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
				if tt.fail {
					return nil, errors.New("refused")
				}
				return stubResponse{payload: "ok"}, nil
			})
			var logs bytes.Buffer
			logger := logging.NewLeveled(logging.NewWithWriter(&logs, slog.LevelWarn))

			rec := &recorder{}
			assert.NotPanics(t, func() {
				newTestOrchestrator(fetcher, WithHooks(tt.hooks), WithLogger(logger)).Handle(context.Background(), domain.Action{
					domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
				}, rec.next)
			})

			got := rec.received()
			require.Len(t, got, 2)
			assert.Equal(t, tt.want, got[1]["type"])
			assert.Contains(t, logs.String(), "hook panicked")
		})
	}
}

func TestOrchestrator_PanickingPassthroughHook(t *testing.T) {
	hooks := domain.Hooks{OnPassthrough: func(ctx context.Context, e *domain.CallEvent) { panic("hook exploded") }}
	action := domain.Action{domain.CallAPI: domain.Action{"type": "LOAD_NOWHERE_REQUEST"}}

	rec := &recorder{}
	assert.NotPanics(t, func() {
		newTestOrchestrator(&MockFetcher{}, WithHooks(hooks), WithLogger(logging.NewLeveled(nil))).
			Handle(context.Background(), action, rec.next)
	})
	assert.Equal(t, []domain.Action{action}, rec.received())
}

func TestOrchestrator_ConcurrentCalls(t *testing.T) {
	fetcher := ports.FetcherFunc(func(ctx context.Context, url string, req ports.FetchRequest) (ports.Response, error) {
		return stubResponse{payload: url}, nil
	})
	sut := newTestOrchestrator(fetcher)

	const calls = 20
	recs := make([]*recorder, calls)
	var wg sync.WaitGroup
	for i := range calls {
		recs[i] = &recorder{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sut.Handle(context.Background(), domain.Action{
				domain.CallAPI: domain.Action{"type": "LOAD_ACTION_REQUEST"},
				"params":       fmt.Sprintf("/%d", i),
			}, recs[i].next)
		}(i)
	}
	wg.Wait()

	for i, rec := range recs {
		got := rec.received()
		require.Len(t, got, 2)
		assert.Equal(t, "LOAD_ACTION_REQUEST", got[0]["type"])
		assert.Equal(t, "LOAD_ACTION_SUCCESS", got[1]["type"])
		assert.Equal(t, fmt.Sprintf("/svc/%d", i), got[1]["payload"])
	}
}
