// Package server assembles the gateway routes and runs the listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/health"
	middleware "github.com/mohammed-shakir/biomart-gateway/internal/core/middleware"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/router"
)

// Options carries the optional server surfaces. A nil Metrics handler
// drops the /metrics route; a nil Ready reporter drops /readyz.
type Options struct {
	Metrics http.Handler
	Ready   health.ReadinessReporter
}

// Handler assembles the full route table.
func Handler(cfg config.Config, logger *slog.Logger, b router.Backend, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	if opts.Ready != nil {
		r.Get("/readyz", health.Readiness(opts.Ready))
	}
	if opts.Metrics != nil {
		r.Get("/metrics", opts.Metrics.ServeHTTP)
	}

	r.Get("/databases", router.HandleDatabases(logger, b))
	r.Get("/datasets", router.HandleDatasets(logger, b))
	r.Get("/attributes", router.HandleAttributes(logger, b))
	r.Get("/filters", router.HandleFilters(logger, b))
	r.Get("/homology", router.HandleHomology(logger, b))
	r.Get("/query", router.HandleQuery(logger, cfg, b))

	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, b router.Backend, opts Options) error {
	// mart queries can run for minutes; keep the write window ahead of
	// the upstream budget
	writeTimeout := cfg.MartTimeout + 30*time.Second
	if cfg.MartTimeout <= 0 {
		writeTimeout = 90 * time.Second
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           Handler(cfg, logger, b, opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
