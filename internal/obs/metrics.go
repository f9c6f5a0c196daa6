// Package obs provides Prometheus metrics and the health endpoint.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playitas_http_requests_total",
		Help: "Total HTTP requests by path and status",
	}, []string{"path", "status"})

	cacheResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playitas_cache_results_total",
		Help: "Price cache lookups by outcome",
	}, []string{"outcome"})

	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playitas_upstream_requests_total",
		Help: "Upstream pricing API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playitas_aggregation_duration_seconds",
		Help:    "Wall-clock duration of a full price aggregation",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})

	aggregationItineraries = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playitas_aggregation_itineraries",
		Help:    "Number of itineraries produced by a full aggregation",
		Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
	})
)

// Metrics records service metrics. One instance is shared across the process;
// the underlying collectors are registered once at package init.
type Metrics struct{}

// NewMetrics creates a Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncRequest counts one handled HTTP request.
func (m *Metrics) IncRequest(path string, status int) {
	httpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// IncCacheHit counts a served-from-cache price list.
func (m *Metrics) IncCacheHit() {
	cacheResultsTotal.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a recomputed price list.
func (m *Metrics) IncCacheMiss() {
	cacheResultsTotal.WithLabelValues("miss").Inc()
}

// IncUpstream counts one upstream call. Outcome is "ok", "transport",
// "status" or "decode".
func (m *Metrics) IncUpstream(endpoint, outcome string) {
	upstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveAggregation records duration and size of one full aggregation.
func (m *Metrics) ObserveAggregation(d time.Duration, itineraries int) {
	aggregationDuration.Observe(d.Seconds())
	aggregationItineraries.Observe(float64(itineraries))
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error().Err(err).Msg("failed to write health response")
		}
	}
}
