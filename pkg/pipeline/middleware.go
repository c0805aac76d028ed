package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/asyncfetch/internal/logging"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/aretw0/asyncfetch/pkg/ports"
)

// Chain composes middlewares; the first one is the outermost.
func Chain(middlewares ...ports.Middleware) ports.Middleware {
	return func(next ports.Dispatch) ports.Dispatch {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// LoggerMiddleware logs every action with the state before and after it is applied.
// Actions are numbered per store.
func LoggerMiddleware(logger *slog.Logger) Factory {
	return func(api API) ports.Middleware {
		var count atomic.Int64
		return func(next ports.Dispatch) ports.Dispatch {
			return func(ctx context.Context, action domain.Action) any {
				n := count.Add(1)
				typ, _ := action.Type()
				logger.InfoContext(ctx, "dispatching action", "n", n, "type", typ, "before", api.State())
				result := next(ctx, action)
				logger.InfoContext(ctx, "dispatched action", "n", n, "type", typ, "after", api.State())
				return result
			}
		}
	}
}

// JournalMiddleware records every action that reaches this stage once the rest of the
// chain has handled it. Journal failures are logged and never interrupt dispatch.
// A nil logger discards them.
func JournalMiddleware(journal ports.Journal, stream string, logger *slog.Logger) Factory {
	if logger == nil {
		logger = logging.NewNop()
	}
	return Plain(func(next ports.Dispatch) ports.Dispatch {
		return func(ctx context.Context, action domain.Action) any {
			result := next(ctx, action)
			if err := journal.Append(ctx, stream, action); err != nil {
				logger.WarnContext(ctx, "journal append failed", "stream", stream, "error", err)
			}
			return result
		}
	})
}
