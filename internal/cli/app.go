package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/asyncfetch"
	httpAdapter "github.com/aretw0/asyncfetch/internal/adapters/http"
	"github.com/aretw0/asyncfetch/internal/logging"
	"github.com/aretw0/asyncfetch/internal/presentation/tui"
	"github.com/aretw0/asyncfetch/pkg/adapters/memory"
	"github.com/aretw0/asyncfetch/pkg/adapters/redis"
	"github.com/aretw0/asyncfetch/pkg/config"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/observability"
	"github.com/aretw0/asyncfetch/pkg/persistence/middleware"
	"github.com/aretw0/asyncfetch/pkg/pipeline"
	"github.com/aretw0/asyncfetch/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultStream is the journal stream used when none is given.
const DefaultStream = "default"

// configNames are probed, in order, when no config file is given explicitly.
var configNames = []string{"asyncfetch.yaml", "asyncfetch.yml", "asyncfetch.json"}

// Options contains the settings shared by every command.
type Options struct {
	// ConfigPath is an explicit config file. When empty, Dir is searched.
	ConfigPath string
	Dir        string
	// LogLevel overrides the configured level when set.
	LogLevel string
	Debug    bool
	Stream   string
	// Output receives one line per notification reaching the store. Nil disables it.
	Output io.Writer
	// Fetcher replaces the HTTP fetcher.
	Fetcher ports.Fetcher
}

// App is a fully wired pipeline: middleware, store, journal and observability.
type App struct {
	Config     config.Options
	Logger     *slog.Logger
	Middleware *asyncfetch.Middleware
	Store      *pipeline.Store
	Journal    ports.Journal
	Stream     string
	Registry   *prometheus.Registry
	Events     *httpAdapter.EventStream

	closers []func() error
}

// NewApp loads the configuration and wires the pipeline with standard CLI conventions.
func NewApp(opts Options) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Debug {
		cfg.LogLevel = logging.LevelNameDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	app := &App{
		Config:   cfg,
		Logger:   logging.New(level),
		Stream:   opts.Stream,
		Registry: prometheus.NewRegistry(),
		Events:   httpAdapter.NewEventStream(),
	}
	if app.Stream == "" {
		app.Stream = DefaultStream
	}
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 1. Journal
	// Decorators are built first so a bad key never leaves a connection behind.
	decorators, err := cfg.Journal.Middlewares()
	if err != nil {
		return nil, err
	}
	var journal ports.Journal = memory.NewJournal()
	if cfg.Redis.Addr != "" {
		rj := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		journal = rj
		app.closers = append(app.closers, rj.Close)
	}
	app.Journal = middleware.Chain(journal, decorators...)

	// 2. Middleware & Hooks
	metrics := observability.NewMetrics(app.Registry)
	mwOpts := []asyncfetch.Option{
		asyncfetch.WithConfig(cfg),
		asyncfetch.WithLogger(app.Logger),
		asyncfetch.WithHooks(metrics.Hooks()),
		asyncfetch.WithHooks(app.Events.Hooks()),
	}
	if opts.Debug {
		mwOpts = append(mwOpts, asyncfetch.WithHooks(observability.LogHooks(app.Logger)))
	}
	if opts.Fetcher != nil {
		mwOpts = append(mwOpts, asyncfetch.WithFetcher(opts.Fetcher))
	}
	app.Middleware = asyncfetch.New(nil, mwOpts...)

	// 3. Store
	factories := []pipeline.Factory{pipeline.Plain(app.Middleware.Wrap)}
	if opts.Output != nil {
		factories = append(factories, printMiddleware(tui.NewPrinter(opts.Output)))
	}
	factories = append(factories, pipeline.JournalMiddleware(app.Journal, app.Stream, app.Logger))
	if opts.Debug {
		factories = append(factories, pipeline.LoggerMiddleware(app.Logger))
	}
	app.Store = pipeline.NewStore(pipeline.StatusReducer, nil, factories...)

	return app, nil
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func loadConfig(opts Options) (config.Options, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	if path := findConfig(opts.Dir); path != "" {
		return config.Load(path)
	}
	return config.Load("")
}

// findConfig returns the first conventional config file present in dir.
func findConfig(dir string) string {
	if dir == "" {
		dir = "."
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// printMiddleware prints every action reaching the reducers.
func printMiddleware(p *tui.Printer) pipeline.Factory {
	return pipeline.Plain(func(next ports.Dispatch) ports.Dispatch {
		return func(ctx context.Context, action domain.Action) any {
			p.Print(action)
			return next(ctx, action)
		}
	})
}
