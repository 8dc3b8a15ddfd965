// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables
// with sensible defaults for everything except the upstream credentials,
// which are required and fail startup when absent.
//
// # Configuration Structure
//
// Upstream settings:
//
//	GITLAB_URL="https://gitlab.example.com"   # required
//	GITLAB_TOKEN="glpat-..."                  # required
//	GITLAB_VERIFY_SSL="true"
//	GITBRIDGE_UPSTREAM_TIMEOUT="30s"
//	GITBRIDGE_PAGE_SIZE="100"
//
// Server settings:
//
//	GITBRIDGE_HOST="0.0.0.0"
//	GITBRIDGE_PORT="8080"
//	GITBRIDGE_HEALTH_PORT="9090"
//	GITBRIDGE_READ_TIMEOUT="15s"
//	GITBRIDGE_WRITE_TIMEOUT="2m"
//
// Observability settings:
//
//	GITBRIDGE_LOG_LEVEL="info"  # debug, info, warn, error
//	GITBRIDGE_METRICS_ENABLED="true"
//	GITBRIDGE_OTEL_ENABLED="false"
//	GITBRIDGE_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
