package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataforseo_requests_total",
			Help: "Total requests issued to the DataForSEO API by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	pollAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "onpage_poll_attempts_total",
			Help: "Total on-page task status poll attempts.",
		},
	)
	pollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "onpage_poll_duration_seconds",
			Help:    "Wall time spent waiting for on-page tasks to complete.",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120},
		},
	)
	auditsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audits_started_total",
			Help: "Total SEO audits started.",
		},
	)
	auditsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audits_completed_total",
			Help: "Total SEO audits completed.",
		},
	)
	auditsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audits_failed_total",
			Help: "Total SEO audits failed.",
		},
	)
)

func init() {
	registry.MustRegister(
		upstreamRequestsTotal,
		pollAttemptsTotal,
		pollDuration,
		auditsStartedTotal,
		auditsCompletedTotal,
		auditsFailedTotal,
	)
}

// IncUpstreamRequest counts an upstream API request for an endpoint and outcome label.
func IncUpstreamRequest(endpoint, outcome string) {
	upstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// IncPollAttempt counts one on-page poll attempt.
func IncPollAttempt() {
	pollAttemptsTotal.Inc()
}

// ObservePollDuration records how long an on-page task took to resolve.
func ObservePollDuration(d time.Duration) {
	pollDuration.Observe(d.Seconds())
}

// IncAuditStarted increments the started counter.
func IncAuditStarted() {
	auditsStartedTotal.Inc()
}

// IncAuditCompleted increments the completed counter.
func IncAuditCompleted() {
	auditsCompletedTotal.Inc()
}

// IncAuditFailed increments the failed counter.
func IncAuditFailed() {
	auditsFailedTotal.Inc()
}

// Handler serves the metrics registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
