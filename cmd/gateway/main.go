// Command gateway is the edge API. It forwards user, product, order and post
// requests to the RDS and MDB data services and relays their answers.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aoideee/storegate/internal/config"
	"github.com/aoideee/storegate/internal/gateway"
	"github.com/aoideee/storegate/internal/web"
)

const appVersion = "1.0.0"

// applicationDependencies bundles what the handlers need. Handlers are
// methods on it so they can reach the dispatcher, the config and the embedded
// JSON error helpers.
type applicationDependencies struct {
	*web.Responder
	config     *config.Config
	logger     *slog.Logger
	dispatcher *gateway.Dispatcher // sends requests to RDS and MDB
	metrics    http.Handler        // serves GET /metrics
}

func main() {
	// Structured logger writing to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Defaults, then the optional YAML file, then environment, then flags.
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:], os.LookupEnv)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Build one pooled client per backend and the handler dependencies.
	app, registry, err := newApplication(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.Error("backend registry", "error", err)
		os.Exit(1)
	}

	// Log the address of every registered backend.
	for _, b := range gateway.Backends {
		c, err := registry.Client(b)
		if err != nil {
			logger.Error("backend registry", "error", err)
			os.Exit(1)
		}
		logger.Info("backend registered", "name", c.Backend().String(), "base_url", c.BaseURL().String())
	}
	logger.Info("gateway ready", "version", appVersion)

	// Configure the HTTP server; its error log goes through slog.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// Run until SIGINT/SIGTERM, then close idle backend connections.
	err = web.Serve(srv, logger, cfg.Env, registry.Close)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// newApplication builds the backend registry from cfg and wires the
// dispatcher and metrics into the handler dependencies.
func newApplication(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*applicationDependencies, *gateway.Registry, error) {
	// Turn the configured backend table into descriptors.
	descs, err := cfg.Descriptors()
	if err != nil {
		return nil, nil, err
	}
	// Fails if a route points at a backend that was not configured.
	registry, err := gateway.NewRegistry(descs, cfg.Pool)
	if err != nil {
		return nil, nil, err
	}

	// Runtime and process metrics next to the dispatch metrics.
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &applicationDependencies{
		Responder:  &web.Responder{Logger: logger},
		config:     cfg,
		logger:     logger,
		dispatcher: gateway.NewDispatcher(registry, logger, gateway.NewMetrics(reg)),
		metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	return app, registry, nil
}
