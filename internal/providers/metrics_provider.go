package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"emospray/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	ObserveClassification(outcome string, duration time.Duration)
	IncEmotionDetected(bucket string)
	SetDeviceState(deviceOn bool, activeEmotions int)
}

const (
	OutcomeOK     = "ok"
	OutcomeNoFace = "no_face"
	OutcomeError  = "error"
)

type MetricsProvider struct {
	requestsTotal          *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	cacheHits              prometheus.Counter
	cacheMisses            prometheus.Counter
	persistenceDuration    prometheus.Histogram
	classificationDuration *prometheus.HistogramVec
	emotionsDetected       *prometheus.CounterVec
	deviceOn               prometheus.Gauge
	activeEmotions         prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveClassification(outcome string, duration time.Duration) {
	m.classificationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncEmotionDetected(bucket string) {
	m.emotionsDetected.WithLabelValues(bucket).Inc()
}

func (m *MetricsProvider) SetDeviceState(deviceOn bool, activeEmotions int) {
	if deviceOn {
		m.deviceOn.Set(1)
	} else {
		m.deviceOn.Set(0)
	}
	m.activeEmotions.Set(float64(activeEmotions))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, reg prometheus.Registerer) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	factory := promauto.With(reg)

	return &MetricsProvider{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emospray_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emospray_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "emospray_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "emospray_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "emospray_persistence_duration_seconds",
			Help:    "Duration of device config writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		classificationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "emospray_classification_duration_seconds",
			Help:    "Duration of emotion classifier calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),

		emotionsDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "emospray_emotions_detected_total",
			Help: "Number of photos in which a main emotion bucket was non-zero",
		}, []string{"emotion"}),

		deviceOn: factory.NewGauge(prometheus.GaugeOpts{
			Name: "emospray_device_on",
			Help: "1 when the stored device config is switched on",
		}),

		activeEmotions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "emospray_active_emotions",
			Help: "Number of active emotion settings in the stored device config",
		}),
	}
}

// NewPrometheusRegisterer hands the process-wide registry to the metrics provider.
func NewPrometheusRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveClassification(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncEmotionDetected(_ string)                      {}
func (n *noopMetrics) SetDeviceState(_ bool, _ int)                     {}
