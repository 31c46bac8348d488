package classifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emospray/internal/providers"
	"emospray/internal/structures"
)

type classifierTestLogger struct{}

func (m *classifierTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *classifierTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *classifierTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *classifierTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *classifierTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *classifierTestLogger) Close()                                                  {}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestClassifier(url string, retries int) Classifier {
	conf := &structures.Config{
		Classifier: structures.ClassifierConfig{
			URL:           url,
			Timeout:       2 * time.Second,
			RetryCount:    retries,
			MinConfidence: 1,
		},
	}
	return NewHTTPClassifier(conf, &classifierTestLogger{})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestHTTPClassifier_Success(t *testing.T) {
	var received analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		writeJSON(w, http.StatusOK, `{"results":[{
			"emotion":{"happy":72.5,"sad":0.4,"surprise":20,"fear":1},
			"dominant_emotion":"happy","age":31,"dominant_gender":"Woman"}]}`)
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL+"/", 0)
	res, err := c.Classify(context.Background(), pngBytes)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"happy": 72.5, "surprise": 20}, res.Emotions)
	assert.Equal(t, "happy", res.DominantEmotion)
	assert.Equal(t, 31.0, res.Age)
	assert.Equal(t, "Woman", res.Gender)

	assert.True(t, strings.HasPrefix(received.Img, "data:image/png;base64,"))
	assert.Equal(t, []string{"emotion", "age", "gender"}, received.Actions)
	assert.True(t, received.EnforceDetection)
}

func TestHTTPClassifier_EmptyResultsIsNoFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"results":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClassifier(srv.URL, 0).Classify(context.Background(), pngBytes)
	assert.ErrorIs(t, err, ErrNoFace)
}

func TestHTTPClassifier_FaceNotDetectedException(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"exception":"Face could not be detected in numpy array."}`)
	}))
	defer srv.Close()

	_, err := newTestClassifier(srv.URL, 0).Classify(context.Background(), pngBytes)
	assert.ErrorIs(t, err, ErrNoFace)
}

func TestHTTPClassifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":"model exploded"}`)
	}))
	defer srv.Close()

	_, err := newTestClassifier(srv.URL, 0).Classify(context.Background(), pngBytes)
	require.Error(t, err)

	var cerr *ClassifierError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusInternalServerError, cerr.Status)
	assert.Equal(t, "model exploded", cerr.Reason)
	assert.NotErrorIs(t, err, ErrNoFace)
}

func TestHTTPClassifier_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, `{"error":"warming up"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"results":[{"emotion":{"neutral":90},"dominant_emotion":"neutral"}]}`)
	}))
	defer srv.Close()

	res, err := newTestClassifier(srv.URL, 2).Classify(context.Background(), pngBytes)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 90.0, res.Emotions["neutral"])
}

func TestHTTPClassifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClassifier(url, 0).Classify(context.Background(), pngBytes)

	var cerr *ClassifierError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "request failed", cerr.Reason)
}

func TestToDataURL_DefaultsToJPEG(t *testing.T) {
	assert.True(t, strings.HasPrefix(toDataURL([]byte("plain text")), "data:image/jpeg;base64,"))
}
