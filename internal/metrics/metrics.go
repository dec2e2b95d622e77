package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for analyses and HTTP traffic.
type Metrics struct {
	Results         *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Results: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradetrend_results_total",
				Help: "Analyses completed, by policy and category",
			},
			[]string{"policy", "category"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gradetrend_analysis_duration_seconds",
				Help:    "Time spent fitting, classifying and explaining one student",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"policy"},
		),
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		gatherer: reg,
	}
}

// ObserveResult counts one finished analysis.
func (m *Metrics) ObserveResult(policy, category string, d time.Duration) {
	if m == nil {
		return
	}
	m.Results.WithLabelValues(policy, category).Inc()
	m.Duration.WithLabelValues(policy).Observe(d.Seconds())
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(http.Handler(h))
}
