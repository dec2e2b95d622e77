package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObserveResult(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResult("slope", "High Improvement", 2*time.Millisecond)
	m.ObserveResult("slope", "High Improvement", time.Millisecond)
	m.ObserveResult("growth", "Low Improvement", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Results.WithLabelValues("slope", "High Improvement")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("growth", "Low Improvement")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestObserveResult_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveResult("slope", "Low Improvement", 0) })
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", m.Handler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{endpoint="/healthz",method="GET",status="200"} 3`), body)
}
