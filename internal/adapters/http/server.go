package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/asyncfetch"
	"github.com/aretw0/asyncfetch/internal/sanitizer"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the dispatch pipeline exposed by the gateway.
type Store interface {
	Dispatch(ctx context.Context, action domain.Action) any
	State() any
}

// Validator checks inner call actions.
type Validator interface {
	Validate(inner domain.Action) []string
}

// Server exposes a dispatch pipeline over HTTP.
type Server struct {
	Store     Store
	Validator Validator
	Events    *EventStream
	Journal   ports.Journal
	Stream    string
	Gatherer  prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithValidator enables POST /validate.
func WithValidator(v Validator) Option {
	return func(s *Server) {
		s.Validator = v
	}
}

// WithEvents enables GET /events.
func WithEvents(events *EventStream) Option {
	return func(s *Server) {
		s.Events = events
	}
}

// WithJournal enables GET /journal, reading the given stream.
func WithJournal(journal ports.Journal, stream string) Option {
	return func(s *Server) {
		s.Journal = journal
		s.Stream = stream
	}
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the store.
func NewHandler(store Store, opts ...Option) http.Handler {
	server := &Server{Store: store}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/state", server.GetState)
	r.Post("/dispatch", server.Dispatch)
	if server.Validator != nil {
		r.Post("/validate", server.Validate)
	}
	if server.Journal != nil {
		r.Get("/journal", server.GetJournal)
	}
	if server.Events != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	if server.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DispatchResponse is the body returned by POST /dispatch.
type DispatchResponse struct {
	Result any `json:"result"`
	State  any `json:"state"`
}

// ValidateResponse is the body returned by POST /validate.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Dispatch handles the POST /dispatch request.
// It blocks until the action, and any call it carries, has gone through the pipeline.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeAction(w, r)
	if !ok {
		return
	}

	result := s.Store.Dispatch(r.Context(), action)
	writeJSON(w, DispatchResponse{Result: result, State: s.Store.State()})
}

// Validate handles the POST /validate request. It accepts either a call envelope or its inner action.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	action, ok := decodeAction(w, r)
	if !ok {
		return
	}

	inner := action
	if env, isCall, err := domain.DecodeEnvelope(action); isCall {
		if err != nil {
			writeJSON(w, ValidateResponse{Errors: []string{err.Error()}})
			return
		}
		inner = env.Action
	}

	errs := s.Validator.Validate(inner)
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Store.State())
}

// GetJournal handles the GET /journal request.
func (s *Server) GetJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Journal.Entries(r.Context(), s.Stream)
	if err != nil {
		http.Error(w, fmt.Sprintf("Journal error: %v", err), http.StatusInternalServerError)
		slog.Error("Journal read failed", "stream", s.Stream, "error", err)
		return
	}
	if entries == nil {
		entries = []domain.Action{}
	}
	writeJSON(w, entries)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"app":     "asyncfetch-http",
		"version": strings.TrimSpace(asyncfetch.Version),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := s.Events.Subscribe()
	defer unsubscribe()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("Event encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

func decodeAction(w http.ResponseWriter, r *http.Request) (domain.Action, bool) {
	limit := sanitizer.MaxInputSize()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(limit)))
	if err != nil {
		http.Error(w, fmt.Sprintf("Request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	action, err := sanitizer.ParseAction(raw)
	if err != nil {
		if errors.Is(err, sanitizer.ErrNotObject) {
			http.Error(w, "Invalid request body: expected a JSON object", http.StatusBadRequest)
		} else {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		}
		return nil, false
	}
	return action, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
