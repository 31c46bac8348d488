package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emospray/internal/classifier"
	"emospray/internal/models"
	"emospray/internal/storage"
	"emospray/internal/structures"
	"emospray/internal/testutil"
)

func newTestService(t *testing.T, cls classifier.Classifier, seed bool) (DeviceServiceInterface, *storage.Store, *testutil.MockMetrics) {
	t.Helper()
	conf := &structures.Config{
		Persistence: structures.Persistence{FilePath: filepath.Join(t.TempDir(), "device.json")},
		Device: structures.DeviceDefaults{
			SeedDefaults:         seed,
			DefaultSprayPeriod:   30,
			DefaultSprayDuration: 5,
		},
	}
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	fm := storage.NewFileManager(conf, &testutil.MockCompressor{}, logger)
	store := storage.NewStore(fm, metrics)
	return NewDeviceService(conf, store, cls, logger, metrics), store, metrics
}

func storedConfig() *models.DeviceConfig {
	return &models.DeviceConfig{
		DeviceOn: true,
		Emotions: []models.EmotionSetting{
			{Name: "Happy", SprayPeriod: 30, SprayDuration: 5, IsActive: false},
			{Name: "Angry", SprayPeriod: 60, SprayDuration: 7, IsActive: true},
			{Name: "Neutral", SprayPeriod: 45, SprayDuration: 3, IsActive: false},
			{Name: "Sad", SprayPeriod: 20, SprayDuration: 9, IsActive: false},
		},
	}
}

func TestApplyPhoto_UpdatesStoredConfig(t *testing.T) {
	cls := testutil.NewEmotionClassifier(map[string]float64{"happy": 80, "surprise": 10})
	svc, store, metrics := newTestService(t, cls, true)
	require.NoError(t, store.Put(storedConfig()))

	scores, err := svc.ApplyPhoto(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, models.EmotionScores{models.EmotionHappy: 59, models.EmotionNeutral: 5}, scores)

	cfg, _, err := store.Get()
	require.NoError(t, err)
	assert.True(t, cfg.DeviceOn)
	assert.Equal(t, models.EmotionSetting{Name: "Happy", SprayPeriod: 30, SprayDuration: 59, IsActive: true}, cfg.Emotions[0])
	assert.Equal(t, models.EmotionSetting{Name: "Angry", SprayPeriod: 60, SprayDuration: 7, IsActive: false}, cfg.Emotions[1])
	assert.Equal(t, models.EmotionSetting{Name: "Neutral", SprayPeriod: 45, SprayDuration: 5, IsActive: true}, cfg.Emotions[2])
	assert.False(t, cfg.Emotions[3].IsActive)

	assert.Equal(t, 1, metrics.Classifications["ok"])
	assert.Equal(t, 1, metrics.Emotions[models.EmotionHappy])
	assert.Equal(t, [][]byte{[]byte("img")}, cls.Calls)
}

func TestApplyPhoto_NoFaceLeavesConfig(t *testing.T) {
	cls := &testutil.MockClassifier{Err: classifier.ErrNoFace}
	svc, store, metrics := newTestService(t, cls, true)
	require.NoError(t, store.Put(storedConfig()))

	_, err := svc.ApplyPhoto(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, classifier.ErrNoFace)

	cfg, rev, _ := store.Get()
	assert.Equal(t, storedConfig(), cfg)
	assert.Equal(t, uint64(1), rev)
	assert.Equal(t, 1, metrics.Classifications["no_face"])
}

func TestApplyPhoto_ClassifierError(t *testing.T) {
	cls := &testutil.MockClassifier{Err: &classifier.ClassifierError{Reason: "down", Err: errors.New("dial tcp")}}
	svc, _, metrics := newTestService(t, cls, true)

	_, err := svc.ApplyPhoto(context.Background(), []byte("img"))

	var cerr *classifier.ClassifierError
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, 1, metrics.Classifications["error"])
}

func TestApplyPhoto_EmptyStoreUsesDefaults(t *testing.T) {
	cls := testutil.NewEmotionClassifier(map[string]float64{"sad": 12.4})
	svc, store, _ := newTestService(t, cls, true)

	_, err := svc.ApplyPhoto(context.Background(), []byte("img"))
	require.NoError(t, err)

	cfg, _, err := store.Get()
	require.NoError(t, err)
	require.Len(t, cfg.Emotions, 4)
	assert.Equal(t, models.EmotionSetting{Name: "Sad", SprayPeriod: 30, SprayDuration: 12, IsActive: true}, cfg.Emotions[3])
}

func TestApplyPhoto_EmptyStoreWithoutSeed(t *testing.T) {
	cls := testutil.NewEmotionClassifier(map[string]float64{"sad": 12.4})
	svc, store, _ := newTestService(t, cls, false)

	scores, err := svc.ApplyPhoto(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, 12.4, scores[models.EmotionSad])

	cfg, _, err := store.Get()
	require.NoError(t, err)
	assert.False(t, cfg.DeviceOn)
	assert.Empty(t, cfg.Emotions)
}

func TestApplyPhoto_CorruptStoreIsOverwritten(t *testing.T) {
	cls := testutil.NewEmotionClassifier(map[string]float64{"angry": 30})
	svc, store, _ := newTestService(t, cls, true)
	store.MarkCorrupt()

	_, err := svc.ApplyPhoto(context.Background(), []byte("img"))
	require.NoError(t, err)

	cfg, _, err := store.Get()
	require.NoError(t, err)
	assert.True(t, cfg.Emotions[1].IsActive)
}

func TestReplaceAndCurrent_Roundtrip(t *testing.T) {
	svc, _, _ := newTestService(t, &testutil.MockClassifier{}, true)

	_, _, err := svc.Current()
	assert.ErrorIs(t, err, storage.ErrConfigNotFound)

	require.NoError(t, svc.Replace(storedConfig()))

	cfg, rev, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, storedConfig(), cfg)
	assert.Equal(t, uint64(1), rev)
	assert.Equal(t, rev, svc.Revision())
	assert.True(t, svc.Status().Loaded)
}
