// Package metrics exposes the prometheus instrumentation for the HTTP
// surface and the recurring-invoice sweep.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizledger_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bizledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

type SweepMetrics struct {
	Spawned  prometheus.Counter
	Failures prometheus.Counter
	Runs     prometheus.Counter
}

func NewSweepMetrics() *SweepMetrics {
	return &SweepMetrics{
		Spawned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_recurring_invoices_spawned_total",
			Help: "Child invoices created by the recurring sweep.",
		}),
		Failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_recurring_sweep_item_failures_total",
			Help: "Recurring parents that failed to regenerate.",
		}),
		Runs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_recurring_sweep_runs_total",
			Help: "Recurring sweep executions.",
		}),
	}
}

// Module provides the prometheus instrumentation.
var Module = fx.Module("observability.metrics",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewSweepMetrics),
)
