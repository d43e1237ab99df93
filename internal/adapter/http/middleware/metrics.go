package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/guildledger/internal/infrastructure/metrics"
)

// HTTPMetrics records request counts and latencies.
type HTTPMetrics struct {
	metrics *metrics.Metrics
}

// NewHTTPMetrics creates a new HTTPMetrics middleware.
func NewHTTPMetrics(m *metrics.Metrics) *HTTPMetrics {
	return &HTTPMetrics{metrics: m}
}

// Wrap records metrics for every request served by next.
func (h *HTTPMetrics) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := routePattern(r)
		h.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		h.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern returns the matched chi route, e.g.
// /api/v1/guilds/{guildID}/distributions/{batchID}, to keep label
// cardinality bounded. Unmatched requests are grouped under "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
