// internal/web/server.go
// This file contains the HTTP server lifecycle: start, wait for a signal,
// then shut down gracefully.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Serve runs srv until SIGINT or SIGTERM, then shuts it down gracefully,
// giving in-flight requests 20 seconds to finish. cleanup, if non-nil, runs
// after the listener has stopped.
func Serve(srv *http.Server, logger *slog.Logger, env string, cleanup func()) error {
	// Route the server's own errors through the structured logger.
	if srv.ErrorLog == nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}

	// shutdownErr receives the result of srv.Shutdown.
	shutdownErr := make(chan error)

	// Wait for a termination signal in the background.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		s := <-quit
		logger.Info("shutting down server", "signal", s.String())

		// In-flight requests get 20 seconds to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "address", srv.Addr, "environment", env)

	// ListenAndServe returns ErrServerClosed as soon as Shutdown starts.
	// Anything else means the server never came up.
	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Block until Shutdown has drained the connections.
	err = <-shutdownErr
	if cleanup != nil {
		cleanup()
	}
	if err != nil {
		return err
	}

	logger.Info("server stopped", "address", srv.Addr)
	return nil
}
