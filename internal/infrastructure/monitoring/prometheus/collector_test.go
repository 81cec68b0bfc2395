package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "landai"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	require.Error(t, err)
}

func TestCounterRoundTrip(t *testing.T) {
	c := testCollector(t)

	counter := c.RegisterCounter("requests_total", "Requests by status", "status")
	counter.WithLabelValues("ok").Inc()
	counter.WithLabelValues("ok").Add(2)
	counter.WithLabelValues("error").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `landai_requests_total{status="ok"} 3`)
	assert.Contains(t, body, `landai_requests_total{status="error"} 1`)
}

func TestGaugeAndHistogram(t *testing.T) {
	c := testCollector(t)

	gauge := c.RegisterGauge("corpus_items", "Loaded corpus size")
	gauge.WithLabelValues().Set(41)
	gauge.WithLabelValues().Inc()
	gauge.WithLabelValues().Dec()
	gauge.WithLabelValues().Inc()

	hist := c.RegisterHistogram("latency_seconds", "Latency", []float64{0.1, 1}, "method")
	hist.WithLabelValues("ensemble").Observe(0.05)
	hist.WithLabelValues("ensemble").Observe(0.5)

	body := scrape(t, c)
	assert.Contains(t, body, "landai_corpus_items 42")
	assert.Contains(t, body, `landai_latency_seconds_count{method="ensemble"} 2`)
	assert.Contains(t, body, `landai_latency_seconds_bucket{method="ensemble",le="0.1"} 1`)
}

func TestRegisterIsIdempotentPerName(t *testing.T) {
	c := testCollector(t)

	first := c.RegisterCounter("dup_total", "Duplicate registration")
	second := c.RegisterCounter("dup_total", "Duplicate registration")
	first.WithLabelValues().Inc()
	second.WithLabelValues().Inc()

	body := scrape(t, c)
	assert.Contains(t, body, "landai_dup_total 2")
}

func TestTimerObservesIntoHistogram(t *testing.T) {
	c := testCollector(t)
	hist := c.RegisterHistogram("timed_seconds", "Timed section", nil)

	timer := NewTimer(hist.WithLabelValues())
	time.Sleep(time.Millisecond)
	timer.ObserveDuration()

	body := scrape(t, c)
	assert.Contains(t, body, "landai_timed_seconds_count 1")

	// A nil histogram is tolerated.
	NewTimer(nil).ObserveDuration()
}

func TestNopCollectorDiscardsEverything(t *testing.T) {
	c := NewNopCollector()

	c.RegisterCounter("x_total", "x").WithLabelValues("a").Inc()
	c.RegisterGauge("y", "y").WithLabelValues().Set(7)
	c.RegisterHistogram("z_seconds", "z", nil).WithLabelValues().Observe(1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 204, rec.Code)
}

func TestEngineMetricsRegisterCleanly(t *testing.T) {
	m := NewEngineMetrics(testCollector(t))

	m.AnalysesTotal.WithLabelValues("ok").Inc()
	m.AnalysisDuration.WithLabelValues().Observe(0.02)
	m.ValuationDuration.WithLabelValues("heuristic_fallback").Observe(0.001)
	m.ValuationFallbacksTotal.WithLabelValues().Inc()
	m.RecommendationResultCount.WithLabelValues("hybrid").Observe(10)
	m.ExplanationsTotal.WithLabelValues("attribution").Inc()
	m.ConfidenceReported.WithLabelValues().Observe(0.85)

	nop := NewNopEngineMetrics()
	nop.AnalysesTotal.WithLabelValues("ok").Inc()
}

// scrape serves one request against the collector's handler and returns the
// exposition body.
func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "landai_"), "no namespaced metrics in scrape")
	return body
}
