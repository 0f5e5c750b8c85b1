// Package app wires configuration, durable state, the commerce API client,
// both stores and the local HTTP bridge into one runnable unit.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/leavalz/Natural-Triade-Shop/internal/config"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		httpServer: server,
		cleanup:    cleanup,
	}, nil
}

// Handler exposes the bridge router without a listener.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run blocks until the server stops. A graceful shutdown is not an error.
func (a *App) Run() error {
	err := a.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains the bridge, then releases the state backend. The backend is
// released even when draining times out.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownErr := a.httpServer.Shutdown(ctx)
	if shutdownErr != nil {
		logger.Warn("bridge did not drain before deadline", map[string]any{
			"error": shutdownErr.Error(),
		})
	}

	var cleanupErr error
	if a.cleanup != nil {
		cleanupErr = a.cleanup()
	}
	return errors.Join(shutdownErr, cleanupErr)
}
