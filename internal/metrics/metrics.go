package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: how many advice requests were served from the cache.
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advice_cache_hits_total",
			Help: "Total number of advice responses served from the cache.",
		},
	)

	// Counter: upstream replies that failed parsing or schema validation
	// and were replaced by a fallback response. A quality signal for the
	// upstream model, not an error.
	FallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advice_fallbacks_total",
			Help: "Total number of fallback responses synthesized because the upstream reply failed schema validation.",
		},
	)

	// Counter: retried upstream attempts (503 only).
	UpstreamRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Total number of retried upstream generation attempts.",
		},
	)

	// Counter: entries removed by cache sweeps.
	CacheSweptEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advice_cache_swept_entries_total",
			Help: "Total number of expired cache entries removed by sweeps.",
		},
	)

	// Histogram: HTTP latency in seconds.
	RequestLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		CacheHitsTotal,
		FallbacksTotal,
		UpstreamRetriesTotal,
		CacheSweptEntriesTotal,
		RequestLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		RequestLatencySeconds.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
