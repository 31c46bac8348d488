package providers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	cacheTestLogger
	mu    sync.Mutex
	types []TypeEnum
}

func (r *recordingLogger) Infof(t TypeEnum, _ string, _ ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, t)
}

func TestRequestMiddleware_AssignsID(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})
	logger := &recordingLogger{}

	req := httptest.NewRequest(http.MethodPost, "/upload-manual", nil)
	rr := httptest.NewRecorder()
	RequestMiddleware(logger, handler).ServeHTTP(rr, req)

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	assert.Equal(t, []TypeEnum{TypePost}, logger.types)
}

func TestRequestMiddleware_ReusesValidClientID(t *testing.T) {
	id := uuid.NewString()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/device", nil)
	req.Header.Set(RequestIDHeader, id)
	rr := httptest.NewRecorder()
	RequestMiddleware(&recordingLogger{}, handler).ServeHTTP(rr, req)

	assert.Equal(t, id, rr.Header().Get(RequestIDHeader))
}

func TestRequestMiddleware_ReplacesGarbageID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/device", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	rr := httptest.NewRecorder()
	RequestMiddleware(&recordingLogger{}, handler).ServeHTTP(rr, req)

	assert.NotEqual(t, "<script>", rr.Header().Get(RequestIDHeader))
}

func TestRequestID_OutsideRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestID(req.Context()))
}
