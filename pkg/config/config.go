package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/gitbridge/pkg/gitlab"
	"github.com/platinummonkey/gitbridge/pkg/observability"
)

// Config holds all application configuration. It is loaded once at process
// start and immutable afterwards; a missing or invalid value fails startup
// rather than a later request.
type Config struct {
	// Server configuration
	Server ServerConfig

	// GitLab upstream configuration
	GitLab gitlab.Config

	// Aggregation page size for listing calls
	PageSize int

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GITBRIDGE_HOST", "0.0.0.0"),
			Port:            getEnv("GITBRIDGE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("GITBRIDGE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GITBRIDGE_WRITE_TIMEOUT", 2*time.Minute),
			IdleTimeout:     getEnvDuration("GITBRIDGE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GITBRIDGE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("GITBRIDGE_HEALTH_PORT", "9090"),
		},
		GitLab: gitlab.Config{
			BaseURL:            getEnv("GITLAB_URL", ""),
			Token:              getEnv("GITLAB_TOKEN", ""),
			Timeout:            getEnvDuration("GITBRIDGE_UPSTREAM_TIMEOUT", gitlab.DefaultTimeout),
			InsecureSkipVerify: !getEnvBool("GITLAB_VERIFY_SSL", true),
		},
		PageSize: getEnvInt("GITBRIDGE_PAGE_SIZE", gitlab.DefaultPageSize),
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLogLevel(getEnv("GITBRIDGE_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("GITBRIDGE_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("GITBRIDGE_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("GITBRIDGE_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("GITBRIDGE_OTEL_SERVICE_NAME", "gitbridge"),
			OTelServiceVersion: getEnv("GITBRIDGE_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("GITBRIDGE_OTEL_INSECURE", true),
		},
	}
	cfg.GitLab.EnableTracing = cfg.Observability.OTelEnabled

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.GitLab.BaseURL == "" {
		return fmt.Errorf("GITLAB_URL is required")
	}
	u, err := url.Parse(c.GitLab.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("GITLAB_URL %q is not a valid http(s) URL", c.GitLab.BaseURL)
	}
	if c.GitLab.Token == "" {
		return fmt.Errorf("GITLAB_TOKEN is required")
	}

	if c.PageSize <= 0 || c.PageSize > 100 {
		return fmt.Errorf("page size must be in 1..100, got %d", c.PageSize)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
