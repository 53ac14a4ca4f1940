// Package telemetry exposes Prometheus counters for the request path and
// the scoring pipeline, served on /metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptarena_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "pattern", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptarena_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "pattern"})

	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptarena_evaluations_total",
		Help: "Automated submission evaluations by model and outcome.",
	}, []string{"model", "outcome"})

	leaderboardRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promptarena_leaderboard_rebuilds_total",
		Help: "Completed leaderboard rebuilds.",
	})
)

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestMetrics is chi middleware recording count and latency per route.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

// ObserveEvaluation records one automated scoring attempt.
func ObserveEvaluation(model string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	evaluationsTotal.WithLabelValues(model, outcome).Inc()
}

// ObserveLeaderboardRebuild records one completed rebuild.
func ObserveLeaderboardRebuild() {
	leaderboardRebuildsTotal.Inc()
}
