// Package observability provides logging, metrics, health probes, tracing
// setup, and graceful shutdown for the gitbridge service.
//
// # Logging
//
// Structured JSON logging backed by stdlib slog, with request IDs carried
// through the context:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("target", "acme/app").Info("resolved")
//
// # Metrics
//
// Prometheus metrics for inbound HTTP traffic and upstream GitLab calls,
// served on the health port:
//
//	metrics := observability.NewMetrics(nil)
//	mux.Handle("/metrics", metrics.Handler())
//
// # Health
//
// Liveness is unconditional; readiness probes the upstream GitLab instance
// through the Pinger interface.
//
// # Tracing
//
// Optional OpenTelemetry trace and metric export over OTLP gRPC, disabled by
// default.
package observability
