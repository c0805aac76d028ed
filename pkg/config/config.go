// Package config loads middleware and server settings from a YAML or JSON file,
// with environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/asyncfetch/internal/logging"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/persistence/middleware"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ASYNCFETCH_"

const (
	DefaultAddr        = ":8080"
	DefaultRedisPrefix = "asyncfetch:journal:"
)

// Options is the full set of settings.
type Options struct {
	// Endpoints maps endpoint identifiers to base URLs.
	Endpoints map[string]string `yaml:"endpoints" json:"endpoints"`
	// Methods overrides or extends the default verb table.
	Methods  map[string]string `yaml:"methods" json:"methods"`
	LogLevel string            `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
	// BaseURL is prepended to endpoint URLs that are paths.
	BaseURL string         `yaml:"base_url" json:"base_url" env:"BASE_URL"`
	Server  ServerOptions  `yaml:"server" json:"server"`
	Redis   RedisOptions   `yaml:"redis" json:"redis"`
	Journal JournalOptions `yaml:"journal" json:"journal"`
}

// ServerOptions configures the HTTP gateway.
type ServerOptions struct {
	Addr string `yaml:"addr" json:"addr" env:"ADDR"`
}

// RedisOptions configures the action journal. An empty Addr selects the in-memory journal.
type RedisOptions struct {
	Addr     string `yaml:"addr" json:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" json:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" json:"db" env:"REDIS_DB"`
	Prefix   string `yaml:"prefix" json:"prefix" env:"REDIS_PREFIX"`
}

// JournalOptions controls what reaches the journal.
type JournalOptions struct {
	// Redact lists regular expressions; values of matching keys are masked before storage.
	Redact []string `yaml:"redact" json:"redact" env:"JOURNAL_REDACT" envSeparator:","`
	// Key is a base64 AES-256 key. When set, entries are encrypted at rest.
	Key string `yaml:"key" json:"key" env:"JOURNAL_KEY"`
	// FallbackKeys can still open entries written before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys" env:"JOURNAL_FALLBACK_KEYS" envSeparator:","`
}

// Middlewares builds the journal decorators described by the options.
func (j JournalOptions) Middlewares() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(j.Redact) > 0 {
		if err := middleware.CompilePatterns(j.Redact); err != nil {
			return nil, fmt.Errorf("journal.redact: %w", err)
		}
		mws = append(mws, middleware.NewPIIMiddleware(j.Redact))
	}
	if j.Key == "" {
		return mws, nil
	}

	active, err := middleware.ParseKey(j.Key)
	if err != nil {
		return nil, fmt.Errorf("journal.key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, raw := range j.FallbackKeys {
		k, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("journal.fallback_keys[%d]: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	return append(mws, encrypt), nil
}

// Default returns the settings used when nothing is configured.
func Default() Options {
	return Options{
		Server: ServerOptions{Addr: DefaultAddr},
		Redis:  RedisOptions{Prefix: DefaultRedisPrefix},
		Journal: JournalOptions{
			Redact: append([]string(nil), middleware.DefaultRedactPatterns...),
		},
	}
}

// Load reads the file at path, then applies environment overrides.
// A missing file is an error. An empty path loads defaults and environment only.
func Load(path string) (Options, error) {
	return load(path, false)
}

// LoadOptional is like Load but treats a missing file as empty.
func LoadOptional(path string) (Options, error) {
	return load(path, true)
}

func load(path string, optional bool) (Options, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, &cfg); err != nil {
				return Options{}, err
			}
		case optional && errors.Is(err, fs.ErrNotExist):
		default:
			return Options{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Options{}, fmt.Errorf("failed to apply environment: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Options) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate reports every problem found, joined.
func (o Options) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(o.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for name, raw := range o.Endpoints {
		if name == "" || strings.Contains(name, domain.TokenSeparator) {
			errs = append(errs, fmt.Errorf("endpoint %q: identifier must be non-empty and contain no %q", name, domain.TokenSeparator))
		}
		if !isEndpointURL(raw) {
			errs = append(errs, fmt.Errorf("endpoint %q: %q is neither an absolute URL nor a path", name, raw))
		}
	}
	for verb, method := range o.Methods {
		if verb == "" || strings.Contains(verb, domain.TokenSeparator) {
			errs = append(errs, fmt.Errorf("verb %q: identifier must be non-empty and contain no %q", verb, domain.TokenSeparator))
		}
		if method == "" {
			errs = append(errs, fmt.Errorf("verb %q: method is empty", verb))
		}
	}
	if o.BaseURL != "" && !isAbsolute(o.BaseURL) {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", o.BaseURL))
	}
	if _, err := o.Journal.Middlewares(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EndpointTable returns the configured endpoints as a domain table.
func (o Options) EndpointTable() domain.EndpointTable {
	return domain.EndpointTable(o.Endpoints).Clone()
}

// Verbs returns the default verb table with the configured overrides applied.
func (o Options) Verbs() domain.VerbTable {
	return domain.DefaultVerbs().Merge(o.Methods)
}

func isEndpointURL(raw string) bool {
	if strings.HasPrefix(raw, "/") {
		_, err := url.Parse(raw)
		return err == nil
	}
	return isAbsolute(raw)
}

func isAbsolute(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
