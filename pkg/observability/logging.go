package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/asyncfetch/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnRequest: func(ctx context.Context, e *domain.CallEvent) {
			logger.InfoContext(ctx, "call_request",
				"id", e.ID,
				"type", e.Token.String(),
				"method", e.Method,
				"url", e.URL,
			)
		},
		OnSuccess: func(ctx context.Context, e *domain.CallEvent) {
			logger.InfoContext(ctx, "call_success",
				"id", e.ID,
				"type", e.Token.String(),
				"duration", e.Duration,
			)
		},
		OnFailure: func(ctx context.Context, e *domain.CallEvent) {
			logger.WarnContext(ctx, "call_failure",
				"id", e.ID,
				"type", e.Token.String(),
				"duration", e.Duration,
				"error", e.Error,
			)
		},
		OnPassthrough: func(ctx context.Context, e *domain.CallEvent) {
			logger.DebugContext(ctx, "call_passthrough", "reason", e.Reason)
		},
	}
}
