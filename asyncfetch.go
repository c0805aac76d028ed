package asyncfetch

import (
	"context"
	"log/slog"
	"maps"

	"github.com/aretw0/asyncfetch/internal/logging"
	"github.com/aretw0/asyncfetch/internal/runtime"
	httpAdapter "github.com/aretw0/asyncfetch/pkg/adapters/http"
	"github.com/aretw0/asyncfetch/pkg/config"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
)

// CallAPI is the key tagging an action as a call to translate.
const CallAPI = domain.CallAPI

// Middleware is the high-level entry point of the library.
// It is safe for concurrent use once built.
type Middleware struct {
	orchestrator *runtime.Orchestrator

	endpoints domain.EndpointTable
	methods   map[string]string
	level     string
	baseURL   string
	logger    *slog.Logger
	fetcher   ports.Fetcher
	hooks     []domain.Hooks
}

// Option defines a functional option for configuring the Middleware.
type Option func(*Middleware)

// WithLogLevel sets the minimum level of the built-in logger:
// off, fatal, error, warn, info or debug. Unknown names mute the logger.
func WithLogLevel(level string) Option {
	return func(m *Middleware) {
		m.level = level
	}
}

// WithMethods overrides or extends the default verb to HTTP method table.
func WithMethods(methods map[string]string) Option {
	return func(m *Middleware) {
		if m.methods == nil {
			m.methods = map[string]string{}
		}
		maps.Copy(m.methods, methods)
	}
}

// WithLogger replaces the built-in logger. The handler's own level applies
// and WithLogLevel is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// WithFetcher sets the network collaborator. Defaults to an HTTP fetcher.
func WithFetcher(f ports.Fetcher) Option {
	return func(m *Middleware) {
		m.fetcher = f
	}
}

// WithHooks registers observability hooks. It can be given several times.
func WithHooks(hooks domain.Hooks) Option {
	return func(m *Middleware) {
		m.hooks = append(m.hooks, hooks)
	}
}

// WithConfig applies loaded settings. Endpoints passed to New take precedence
// over configured ones with the same identifier.
func WithConfig(cfg config.Options) Option {
	return func(m *Middleware) {
		for name, u := range cfg.Endpoints {
			if _, ok := m.endpoints[name]; !ok {
				m.endpoints[name] = u
			}
		}
		WithMethods(cfg.Methods)(m)
		if cfg.LogLevel != "" {
			m.level = cfg.LogLevel
		}
		m.baseURL = cfg.BaseURL
	}
}

// New builds the middleware for the given endpoints.
// An empty table yields a middleware that forwards everything unchanged.
func New(endpoints domain.EndpointTable, opts ...Option) *Middleware {
	m := &Middleware{
		endpoints: endpoints.Clone(),
		level:     logging.LevelNameOff,
	}
	if m.endpoints == nil {
		m.endpoints = domain.EndpointTable{}
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		// Unknown names come back as LevelOff.
		level, _ := logging.ParseLevel(m.level)
		m.logger = logging.New(level)
	}
	if m.fetcher == nil {
		m.fetcher = httpAdapter.NewFetcher(httpAdapter.WithBaseURL(m.baseURL))
	}

	var hooks domain.Hooks
	switch len(m.hooks) {
	case 0:
	case 1:
		hooks = m.hooks[0]
	default:
		hooks = domain.MultiHooks(m.hooks...)
	}

	m.orchestrator = runtime.NewOrchestrator(
		m.endpoints,
		domain.DefaultVerbs().Merge(m.methods),
		runtime.WithFetcher(m.fetcher),
		runtime.WithLogger(logging.NewLeveled(m.logger)),
		runtime.WithHooks(hooks),
	)
	return m
}

// Handle processes one action and forwards the resulting notifications to next.
// It returns what the last call to next returned.
func (m *Middleware) Handle(ctx context.Context, action domain.Action, next ports.Dispatch) any {
	return m.orchestrator.Handle(ctx, action, next)
}

// Wrap plugs the middleware in front of next.
func (m *Middleware) Wrap(next ports.Dispatch) ports.Dispatch {
	return m.orchestrator.Middleware()(next)
}

// Passthrough reports whether the middleware was built without endpoints.
func (m *Middleware) Passthrough() bool {
	return m.orchestrator.Passthrough()
}

// Endpoints returns a copy of the endpoint table in use.
func (m *Middleware) Endpoints() domain.EndpointTable {
	return m.endpoints.Clone()
}

// Verbs returns the verb table in use.
func (m *Middleware) Verbs() domain.VerbTable {
	return domain.DefaultVerbs().Merge(m.methods)
}

// Validate reports the problems that would make the middleware forward a call
// envelope unchanged. A nil result means the inner action is valid.
func (m *Middleware) Validate(inner domain.Action) []string {
	return runtime.Validate(inner, m.Verbs(), m.endpoints)
}
