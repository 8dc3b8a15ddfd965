package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Inbound HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Upstream GitLab call metrics
	UpstreamCallsTotal   *prometheus.CounterVec
	UpstreamCallDuration *prometheus.HistogramVec

	// Aggregation metrics
	PagesFetchedTotal prometheus.Counter
	ItemsListedTotal  *prometheus.CounterVec

	// Role reconciliation metrics
	RoleChangesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gitbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		UpstreamCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitbridge_upstream_calls_total",
				Help: "Total number of upstream GitLab API calls",
			},
			[]string{"method", "status"},
		),
		UpstreamCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gitbridge_upstream_call_duration_seconds",
				Help:    "Upstream GitLab API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		PagesFetchedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gitbridge_pages_fetched_total",
				Help: "Total number of listing pages fetched from the upstream",
			},
		),
		ItemsListedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitbridge_items_listed_total",
				Help: "Total number of created items returned to callers",
			},
			[]string{"kind"},
		),
		RoleChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitbridge_role_changes_total",
				Help: "Total number of role grant requests by outcome",
			},
			[]string{"action"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamCallsTotal,
		m.UpstreamCallDuration,
		m.PagesFetchedTotal,
		m.ItemsListedTotal,
		m.RoleChangesTotal,
	)

	return m
}

// ObserveHTTPRequest records one handled inbound request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveUpstreamCall records one upstream GitLab API call. A zero status
// means the call failed at the transport layer.
func (m *Metrics) ObserveUpstreamCall(method string, status int, duration time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamCallsTotal.WithLabelValues(method, label).Inc()
	m.UpstreamCallDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler returns the /metrics endpoint handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
