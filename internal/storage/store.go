package storage

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"

	"emospray/internal/models"
	"emospray/internal/providers"
)

var errNilConfig = errors.New("nil device config")

// Store owns the single device config. Reads share a lock; every write
// persists through the FileManager before it becomes visible, so a failed
// write leaves both the file and memory unchanged.
type Store struct {
	mu          sync.RWMutex
	cfg         *models.DeviceConfig
	corrupt     bool
	revision    *atomic.Uint64
	updatedAt   *atomic.Time
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
}

type StoreStatus struct {
	Loaded    bool
	Corrupt   bool
	Revision  uint64
	UpdatedAt time.Time
}

func NewStore(fileManager *FileManager, metrics providers.MetricsProviderInterface) *Store {
	return &Store{
		revision:    atomic.NewUint64(0),
		updatedAt:   atomic.NewTime(time.Time{}),
		fileManager: fileManager,
		metrics:     metrics,
	}
}

// Get returns a copy of the stored config together with its revision.
func (s *Store) Get() (*models.DeviceConfig, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.corrupt {
		return nil, s.revision.Load(), ErrConfigCorrupt
	}
	if s.cfg == nil {
		return nil, s.revision.Load(), ErrConfigNotFound
	}
	return s.cfg.Clone(), s.revision.Load(), nil
}

// Put replaces the whole config.
func (s *Store) Put(cfg *models.DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeLocked(cfg.Clone())
}

// Update runs fn on a copy of the current config under the write lock and
// stores its result. fn receives nil when no usable config is stored.
func (s *Store) Update(fn func(current *models.DeviceConfig) (*models.DeviceConfig, error)) (*models.DeviceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *models.DeviceConfig
	if !s.corrupt {
		current = s.cfg.Clone()
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if err = s.writeLocked(next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// Reset swaps the in-memory config without writing it, used when restoring.
func (s *Store) Reset(cfg *models.DeviceConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg.Clone()
	s.corrupt = false
	s.touchLocked()
}

// MarkCorrupt makes reads fail with ErrConfigCorrupt until the next write.
func (s *Store) MarkCorrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = nil
	s.corrupt = true
	s.revision.Inc()
}

func (s *Store) Revision() uint64 {
	return s.revision.Load()
}

func (s *Store) Status() StoreStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreStatus{
		Loaded:    s.cfg != nil,
		Corrupt:   s.corrupt,
		Revision:  s.revision.Load(),
		UpdatedAt: s.updatedAt.Load(),
	}
}

func (s *Store) writeLocked(cfg *models.DeviceConfig) error {
	if cfg == nil {
		return errNilConfig
	}
	if cfg.Emotions == nil {
		cfg.Emotions = []models.EmotionSetting{}
	}

	start := time.Now()
	if err := s.fileManager.Save(cfg); err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))

	s.cfg = cfg
	s.corrupt = false
	s.touchLocked()
	return nil
}

func (s *Store) touchLocked() {
	s.revision.Inc()
	s.updatedAt.Store(time.Now())
	if s.cfg != nil {
		s.metrics.SetDeviceState(s.cfg.DeviceOn, s.cfg.ActiveCount())
	}
}
