package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/gitbridge/pkg/api"
	"github.com/platinummonkey/gitbridge/pkg/config"
	"github.com/platinummonkey/gitbridge/pkg/created"
	"github.com/platinummonkey/gitbridge/pkg/gitlab"
	"github.com/platinummonkey/gitbridge/pkg/observability"
	"github.com/platinummonkey/gitbridge/pkg/resolve"
	"github.com/platinummonkey/gitbridge/pkg/roles"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("Starting gitbridge")

	ctx := context.Background()

	// OpenTelemetry (optional)
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	// Upstream client, shared by all components
	clientLog := logrus.New()
	clientLog.SetOutput(os.Stdout)
	clientLog.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Observability.LogLevel == observability.DebugLevel {
		clientLog.SetLevel(logrus.DebugLevel)
	}

	client, err := gitlab.NewClient(cfg.GitLab, clientLog)
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}
	if metrics != nil {
		client.SetObserver(func(method, endpoint string, status int, duration time.Duration) {
			metrics.ObserveUpstreamCall(method, status, duration)
		})
	}

	aggregator := created.NewAggregator(client, cfg.PageSize)
	if metrics != nil {
		aggregator.SetPageObserver(metrics.PagesFetchedTotal.Inc)
	}

	server := api.NewServer(
		resolve.NewResolver(client),
		roles.NewReconciler(client),
		aggregator,
		logger,
		metrics,
	)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      withRequestLogger(server, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler:      healthHandler(client, metrics),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	var group errgroup.Group
	group.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	// A listener failure is fatal; it cannot be recovered by waiting for a
	// shutdown signal that may never come.
	go func() {
		if err := group.Wait(); err != nil {
			logger.WithError(err).Error("Server exited")
			os.Exit(1)
		}
	}()

	return shutdown.WaitForShutdown()
}

// withRequestLogger seeds every request context with the process logger so
// handlers can pick it up together with the request id.
func withRequestLogger(next http.Handler, logger *observability.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(observability.WithLogger(r.Context(), logger)))
	})
}

// healthHandler serves the probe and metrics endpoints on the side port.
func healthHandler(client *gitlab.Client, metrics *observability.Metrics) http.Handler {
	checker := observability.NewHealthChecker(client)
	router := mux.NewRouter()
	router.HandleFunc("/healthz", checker.Liveness).Methods("GET")
	router.HandleFunc("/readyz", checker.Readiness).Methods("GET")
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	return router
}
