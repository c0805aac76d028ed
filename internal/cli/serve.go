package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/asyncfetch/internal/adapters/http"
)

// shutdownTimeout bounds how long in-flight requests may take once shutdown starts.
const shutdownTimeout = 5 * time.Second

// NewGateway returns the HTTP handler exposing the app.
func NewGateway(app *App) http.Handler {
	return httpAdapter.NewHandler(app.Store,
		httpAdapter.WithValidator(app.Middleware),
		httpAdapter.WithEvents(app.Events),
		httpAdapter.WithJournal(app.Journal, app.Stream),
		httpAdapter.WithGatherer(app.Registry),
	)
}

// RunServe serves the gateway on addr until ctx is cancelled, then shuts down gracefully.
func RunServe(ctx context.Context, app *App, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewGateway(app),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		app.Logger.Info("Starting asyncfetch gateway", "addr", srv.Addr, "endpoints", app.Middleware.Endpoints().Keys())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if closeErr := srv.Close(); closeErr != nil {
				return errors.Join(err, closeErr)
			}
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}
