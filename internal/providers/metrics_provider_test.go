package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emospray/internal/structures"
)

func enabledMetrics(t *testing.T) *MetricsProvider {
	t.Helper()
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m, ok := NewMetricsProvider(conf, prometheus.NewRegistry()).(*MetricsProvider)
	require.True(t, ok, "should return MetricsProvider when enabled")
	return m
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, prometheus.NewRegistry())
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.ObserveClassification(OutcomeOK, time.Millisecond)
	m.IncEmotionDetected("happy")
	m.SetDeviceState(true, 2)
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	m := enabledMetrics(t)

	m.IncRequestsTotal("/device", 200)
	m.IncRequestsTotal("/device", 200)
	m.IncRequestsTotal("/device", 404)
	m.ObserveRequestDuration("/device", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(100 * time.Millisecond)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.requestsTotal.WithLabelValues("/device", "2xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.requestsTotal.WithLabelValues("/device", "4xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.cacheHits))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.cacheMisses))
}

func TestMetricsProvider_EmotionAndDeviceState(t *testing.T) {
	m := enabledMetrics(t)

	m.IncEmotionDetected("happy")
	m.IncEmotionDetected("happy")
	m.IncEmotionDetected("sad")
	m.ObserveClassification(OutcomeNoFace, 200*time.Millisecond)
	m.SetDeviceState(true, 3)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.emotionsDetected.WithLabelValues("happy")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.emotionsDetected.WithLabelValues("sad")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.deviceOn))
	assert.Equal(t, 3.0, promtest.ToFloat64(m.activeEmotions))

	m.SetDeviceState(false, 0)
	assert.Equal(t, 0.0, promtest.ToFloat64(m.deviceOn))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{415, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
