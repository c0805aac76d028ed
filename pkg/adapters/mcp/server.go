package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/asyncfetch"
	"github.com/aretw0/asyncfetch/internal/sanitizer"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Store is the dispatch pipeline exposed as tools.
type Store interface {
	Dispatch(ctx context.Context, action domain.Action) any
	State() any
}

// Validator checks inner call actions and describes the routing tables.
type Validator interface {
	Validate(inner domain.Action) []string
	Endpoints() domain.EndpointTable
	Verbs() domain.VerbTable
}

// DispatchArgs are the arguments of the dispatch tool.
type DispatchArgs struct {
	Action string `json:"action"`
}

// DispatchResponse is the structured result of the dispatch tool.
type DispatchResponse struct {
	Result any `json:"result" jsonschema_description:"The value returned by the pipeline, usually the last notification"`
	State  any `json:"state" jsonschema_description:"The store state once the action has been applied"`
}

// ValidateArgs are the arguments of the validate_action tool.
type ValidateArgs struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

// ValidateResponse is the structured result of the validate_action tool.
type ValidateResponse struct {
	Valid  bool     `json:"valid" jsonschema_description:"Whether the action would be translated into a call"`
	Errors []string `json:"errors" jsonschema_description:"Validation messages, empty when valid"`
}

// Server exposes a dispatch pipeline as an MCP Server.
type Server struct {
	store     Store
	validator Validator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(store Store, validator Validator) *Server {
	s := &Server{
		store:     store,
		validator: validator,
		mcpServer: server.NewMCPServer("asyncfetch-mcp", strings.TrimSpace(asyncfetch.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: dispatch
	dispatchTool := mcp.NewTool("dispatch",
		mcp.WithDescription("Dispatch an action through the pipeline. Actions tagged with \""+asyncfetch.CallAPI+"\" are turned into HTTP calls; the call completes before the tool returns."),
		mcp.WithString("action", mcp.Required(), mcp.Description("JSON object of the action, e.g. {\"Call API\": {\"type\": \"LOAD_TODOS_REQUEST\"}}")),
		mcp.WithOutputSchema[DispatchResponse](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: validate_action
	validateTool := mcp.NewTool("validate_action",
		mcp.WithDescription("Check whether an action type or call envelope would be translated into an HTTP call."),
		mcp.WithString("type", mcp.Description("Action type such as LOAD_TODOS_REQUEST")),
		mcp.WithString("action", mcp.Description("JSON object of a call envelope or its inner action (used when type is omitted)")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: get_state
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current store state."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.store.State())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode state failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (DispatchResponse, error) {
	action, err := parseAction(args.Action)
	if err != nil {
		return DispatchResponse{}, err
	}

	result := s.store.Dispatch(ctx, action)
	return DispatchResponse{
		Result: result,
		State:  s.store.State(),
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidateResponse, error) {
	var inner domain.Action
	switch {
	case args.Type != "":
		inner = domain.Action{domain.KeyType: args.Type}
	case args.Action != "":
		action, err := parseAction(args.Action)
		if err != nil {
			return ValidateResponse{}, err
		}
		inner = action
		if env, isCall, err := domain.DecodeEnvelope(action); isCall {
			if err != nil {
				return ValidateResponse{Errors: []string{err.Error()}}, nil
			}
			inner = env.Action
		}
	default:
		return ValidateResponse{}, fmt.Errorf("either type or action is required")
	}

	errs := s.validator.Validate(inner)
	if errs == nil {
		errs = []string{}
	}
	return ValidateResponse{Valid: len(errs) == 0, Errors: errs}, nil
}

func parseAction(raw string) (domain.Action, error) {
	action, err := sanitizer.ParseAction([]byte(raw))
	if err != nil {
		slog.Warn("MCP: Action rejected", "error", err, "size", len(raw))
		return nil, fmt.Errorf("invalid action: %w", err)
	}
	return action, nil
}

func (s *Server) registerResources() {
	// EXPOSE: asyncfetch://state
	s.mcpServer.AddResource(mcp.NewResource("asyncfetch://state", "Current Store State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("asyncfetch://state", s.store.State())
	})

	// EXPOSE: asyncfetch://endpoints
	s.mcpServer.AddResource(mcp.NewResource("asyncfetch://endpoints", "Endpoint and Verb Tables",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("asyncfetch://endpoints", map[string]any{
			"endpoints": s.validator.Endpoints(),
			"verbs":     s.validator.Verbs(),
		})
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
