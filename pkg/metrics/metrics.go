// Package metrics provides the Prometheus registry and the HTTP-level metrics
// of the artwork table server. Client and viewer metrics are defined in their
// own packages (client, viewer) to avoid circular dependencies; they are
// listed here for reference.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is where every metric of the server is registered, and Gatherer
// is what /metrics serves. Packages register through Factory.
var (
	Registry prometheus.Registerer = prometheus.DefaultRegisterer
	Gatherer prometheus.Gatherer   = prometheus.DefaultGatherer

	Factory = promauto.With(Registry)
)

// HTTP and view metrics.
var (
	HTTPRequestsTotal = Factory.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = Factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LiveViews = Factory.NewGauge(prometheus.GaugeOpts{
		Name: "viewer_live_views",
		Help: "Number of mounted tables",
	})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the /metrics endpoint for Gatherer, instrumented on
// Registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		Registry,
		promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}),
	)
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - artic_requests_total{status} (Counter): Listing requests by HTTP status
//   - artic_request_duration_seconds (Histogram): Listing request duration
//   - artic_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Viewer Metrics (pkg/viewer):
//   - viewer_page_loads_total{result} (Counter): Page loads (applied, stale, superseded)
//   - viewer_bulk_selections_total{result} (Counter): Bulk selections (applied, ignored)
//   - viewer_bulk_rows_selected (Histogram): Rows selected per applied bulk selection
//
// Server Metrics (pkg/metrics):
//   - http_requests_total{method, route, status} (Counter)
//   - http_request_duration_seconds{method, route} (Histogram)
//   - viewer_live_views (Gauge): Mounted tables
//
// Example Prometheus Queries:
//
//   # Listing error rate
//   rate(artic_errors_total[5m])
//
//   # P95 listing latency
//   histogram_quantile(0.95, rate(artic_request_duration_seconds_bucket[5m]))
//
//   # Share of page loads that kept stale records
//   rate(viewer_page_loads_total{result="stale"}[5m]) / rate(viewer_page_loads_total[5m])
