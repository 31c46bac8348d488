package testutil

import (
	"context"
	"sync"
	"time"

	"emospray/internal/classifier"
	"emospray/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu              sync.Mutex
	Persisted       int
	Classifications map[string]int
	Emotions        map[string]int
	DeviceOn        bool
	ActiveEmotions  int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) ObserveClassification(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Classifications == nil {
		m.Classifications = make(map[string]int)
	}
	m.Classifications[outcome]++
}

func (m *MockMetrics) IncEmotionDetected(bucket string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Emotions == nil {
		m.Emotions = make(map[string]int)
	}
	m.Emotions[bucket]++
}

func (m *MockMetrics) SetDeviceState(deviceOn bool, activeEmotions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeviceOn = deviceOn
	m.ActiveEmotions = activeEmotions
}

// MockClassifier implements classifier.Classifier with a canned answer.
type MockClassifier struct {
	mu     sync.Mutex
	Result *classifier.Classification
	Err    error
	Calls  [][]byte
}

func (m *MockClassifier) Classify(_ context.Context, image []byte) (*classifier.Classification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, image)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// NewEmotionClassifier returns a MockClassifier that reports the given raw emotions.
func NewEmotionClassifier(emotions map[string]float64) *MockClassifier {
	return &MockClassifier{Result: &classifier.Classification{Emotions: emotions}}
}
