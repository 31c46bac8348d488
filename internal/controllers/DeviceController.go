package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"emospray/internal/classifier"
	"emospray/internal/models"
	"emospray/internal/providers"
	"emospray/internal/services"
	"emospray/internal/storage"
	"emospray/internal/structures"
)

const (
	msgPhotoOK        = "Everything is okay"
	msgManualOK       = "device config updated successfully"
	msgNoFace         = "No face detected"
	msgClassifierFail = "emotion classification failed"
	msgInvalidConfig  = "invalid device config"
	msgInternal       = "internal server error"
)

type DeviceController struct {
	logger      providers.Logger
	service     services.DeviceServiceInterface
	cache       providers.CacheProviderInterface
	maxBodySize int64
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type photoResponse struct {
	Message            string               `json:"message"`
	CalculatedEmotions models.EmotionScores `json:"calculated_emotions"`
}

func NewDeviceController(logger providers.Logger, service services.DeviceServiceInterface, cache providers.CacheProviderInterface, conf *structures.Config) *DeviceController {
	return &DeviceController{
		logger:      logger,
		service:     service,
		cache:       cache,
		maxBodySize: conf.WebServer.MaxBodySize,
	}
}

func deviceCacheKey(revision uint64) string {
	return "device:" + strconv.FormatUint(revision, 10)
}

func (dc *DeviceController) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "content type must be application/json"})
		return
	}

	var payload models.PhotoRequest
	if err := dc.decodeBody(w, r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	image, err := models.DecodePhoto(payload.Photo)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	prev := dc.service.Revision()
	scores, err := dc.service.ApplyPhoto(r.Context(), image)
	if err != nil {
		dc.writeServiceError(w, r, err)
		return
	}
	dc.cache.Del(deviceCacheKey(prev))

	writeJSON(w, http.StatusOK, photoResponse{Message: msgPhotoOK, CalculatedEmotions: scores})
}

func (dc *DeviceController) UploadManual(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := dc.decodeBody(w, r, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cfg, verrs := models.ParseManualConfig(raw)
	if len(verrs) > 0 {
		dc.logger.Warnf(providers.TypePost, "[%s] %s", providers.RequestID(r.Context()), verrs.Error())
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidConfig, Fields: verrs})
		return
	}

	prev := dc.service.Revision()
	if err := dc.service.Replace(cfg); err != nil {
		dc.writeServiceError(w, r, err)
		return
	}
	dc.cache.Del(deviceCacheKey(prev))

	writeJSON(w, http.StatusOK, messageResponse{Message: msgManualOK})
}

func (dc *DeviceController) GetDevice(w http.ResponseWriter, r *http.Request) {
	if data, ok := dc.cache.Get(deviceCacheKey(dc.service.Revision())); ok {
		writeRaw(w, http.StatusOK, data)
		return
	}

	cfg, rev, err := dc.service.Current()
	if err != nil {
		dc.writeServiceError(w, r, err)
		return
	}

	gson, err := json.Marshal(cfg)
	if err != nil {
		dc.writeServiceError(w, r, err)
		return
	}
	dc.cache.Set(deviceCacheKey(rev), gson)

	writeRaw(w, http.StatusOK, gson)
}

// writeServiceError maps service and storage errors to a status code and a
// client message. Unexpected errors are logged and reported generically.
func (dc *DeviceController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var cerr *classifier.ClassifierError
	logType := providers.GetLogTypeByRequestType(r.Method)
	id := providers.RequestID(r.Context())

	switch {
	case errors.Is(err, classifier.ErrNoFace):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoFace})
	case errors.As(err, &cerr):
		dc.logger.Errorf(logType, "[%s] classifier: %s", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgClassifierFail})
	case errors.Is(err, storage.ErrConfigNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: storage.ErrConfigNotFound.Error()})
	case errors.Is(err, storage.ErrConfigCorrupt):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: storage.ErrConfigCorrupt.Error()})
	default:
		dc.logger.Errorf(logType, "[%s] %s %s: %s", id, r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

var errInvalidBody = errors.New("invalid JSON body")

func (dc *DeviceController) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if dc.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, dc.maxBodySize)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return errInvalidBody
	}
	return nil
}

func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, gson)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
