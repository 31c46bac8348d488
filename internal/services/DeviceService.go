package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"emospray/internal/classifier"
	"emospray/internal/models"
	"emospray/internal/providers"
	"emospray/internal/storage"
	"emospray/internal/structures"
)

type DeviceServiceInterface interface {
	Current() (*models.DeviceConfig, uint64, error)
	Revision() uint64
	Replace(cfg *models.DeviceConfig) error
	ApplyPhoto(ctx context.Context, image []byte) (models.EmotionScores, error)
	Status() storage.StoreStatus
}

type DeviceService struct {
	config     *structures.Config
	store      *storage.Store
	classifier classifier.Classifier
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func (ds *DeviceService) Current() (*models.DeviceConfig, uint64, error) {
	return ds.store.Get()
}

func (ds *DeviceService) Revision() uint64 {
	return ds.store.Revision()
}

func (ds *DeviceService) Status() storage.StoreStatus {
	return ds.store.Status()
}

func (ds *DeviceService) Replace(cfg *models.DeviceConfig) error {
	if err := ds.store.Put(cfg); err != nil {
		return err
	}
	ds.logger.Infof(providers.TypePost, "Device config replaced: deviceOn=%t, %d emotion(s)", cfg.DeviceOn, len(cfg.Emotions))
	return nil
}

// ApplyPhoto classifies the image, folds the result into the main emotions
// and activates the matching settings of the stored config. The classifier
// runs outside the store lock; only the config update is serialized.
func (ds *DeviceService) ApplyPhoto(ctx context.Context, image []byte) (models.EmotionScores, error) {
	start := time.Now()
	result, err := ds.classifier.Classify(ctx, image)
	switch {
	case err == nil:
		ds.metrics.ObserveClassification(providers.OutcomeOK, time.Since(start))
	case errors.Is(err, classifier.ErrNoFace):
		ds.metrics.ObserveClassification(providers.OutcomeNoFace, time.Since(start))
		return nil, err
	default:
		ds.metrics.ObserveClassification(providers.OutcomeError, time.Since(start))
		return nil, err
	}

	scores := models.AggregateEmotions(result.Emotions)
	for _, bucket := range scores.Buckets() {
		ds.metrics.IncEmotionDetected(bucket)
	}

	var unmatched []string
	_, err = ds.store.Update(func(current *models.DeviceConfig) (*models.DeviceConfig, error) {
		if current == nil {
			current = ds.baseConfig()
		}
		unmatched = current.ApplyEmotions(scores)
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	if len(unmatched) > 0 {
		ds.logger.Warnf(providers.TypePost, "No emotion setting for detected bucket(s): %s", strings.Join(unmatched, ", "))
	}
	ds.logger.Infof(providers.TypePost, "Photo processed: dominant=%s age=%.0f gender=%s buckets=%v",
		result.DominantEmotion, result.Age, result.Gender, scores)

	return scores, nil
}

// baseConfig is what a photo is applied to when nothing usable is stored.
func (ds *DeviceService) baseConfig() *models.DeviceConfig {
	if ds.config.Device.SeedDefaults {
		return models.DefaultDeviceConfig(ds.config.Device.DefaultSprayPeriod, ds.config.Device.DefaultSprayDuration)
	}
	return &models.DeviceConfig{Emotions: []models.EmotionSetting{}}
}

func NewDeviceService(config *structures.Config, store *storage.Store, cls classifier.Classifier, logger providers.Logger, metrics providers.MetricsProviderInterface) DeviceServiceInterface {
	return &DeviceService{
		config:     config,
		store:      store,
		classifier: cls,
		logger:     logger,
		metrics:    metrics,
	}
}
