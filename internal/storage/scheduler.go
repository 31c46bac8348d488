package storage

import (
	"errors"
	"sync"

	"github.com/roylee0704/gron"

	"emospray/internal/models"
	"emospray/internal/providers"
	"emospray/internal/storage/interfaces"
	"emospray/internal/structures"
)

// Scheduler restores the store on start, takes periodic compressed
// backups and flushes the store on shutdown.
type Scheduler struct {
	config         *structures.Config
	logger         providers.Logger
	store          *Store
	fileManager    *FileManager
	cron           *gron.Cron
	opsMu          sync.Mutex
	backedRevision uint64
}

func (s *Scheduler) Init() {
	if s.config.Persistence.BackupDir == "" {
		s.logger.Infof(providers.TypeApp, "Backups disabled")
		return
	}

	s.cron = gron.New()
	interval := s.config.Persistence.BackupInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		s.backup()
	})

	s.logger.Infof(providers.TypeApp, "Backing up device config to %s every %s", s.config.Persistence.BackupDir, interval)
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	defaults := s.defaults()
	cfg, migrated, err := s.fileManager.Load(defaults)
	switch {
	case err == nil && cfg != nil:
		if migrated {
			s.logger.Infof(providers.TypeApp, "Rewriting migrated config as JSON")
			return s.store.Put(cfg)
		}
		s.store.Reset(cfg)
		s.logger.Infof(providers.TypeApp, "Restored device config from %s", s.config.Persistence.FilePath)
		return nil

	case err == nil:
		if !s.config.Device.SeedDefaults {
			s.logger.Infof(providers.TypeApp, "No device config at %s yet", s.config.Persistence.FilePath)
			return nil
		}
		s.logger.Infof(providers.TypeApp, "No device config at %s, seeding defaults", s.config.Persistence.FilePath)
		return s.store.Put(defaults)

	case errors.Is(err, ErrConfigCorrupt):
		s.logger.Errorf(providers.TypeApp, "Device config is corrupt: %s", err)
		backup, berr := s.fileManager.LoadLatestBackup()
		if berr != nil {
			s.logger.Errorf(providers.TypeApp, "Reading backups failed: %s", berr)
		}
		if backup == nil {
			s.store.MarkCorrupt()
			return err
		}
		s.logger.Warnf(providers.TypeApp, "Restoring device config from backup")
		return s.store.Put(backup)

	default:
		return err
	}
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	cfg, _, err := s.store.Get()
	if err != nil {
		s.logger.Infof(providers.TypeApp, "Nothing to persist: %s", err)
		return nil
	}

	s.logger.Infof(providers.TypeApp, "Persisting device config to file...")
	if err = s.fileManager.Save(cfg); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.backup()
	return nil
}

// backup writes a snapshot when the store changed since the previous one.
// Callers hold opsMu.
func (s *Scheduler) backup() {
	cfg, revision, err := s.store.Get()
	if err != nil || revision == s.backedRevision {
		return
	}
	path, err := s.fileManager.SaveBackup(cfg)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while backing up device config: %s", err)
		return
	}
	s.backedRevision = revision
	if path != "" {
		s.logger.Infof(providers.TypeApp, "Backed up device config to %s", path)
	}
}

func (s *Scheduler) defaults() *models.DeviceConfig {
	return models.DefaultDeviceConfig(s.config.Device.DefaultSprayPeriod, s.config.Device.DefaultSprayDuration)
}

func NewScheduler(config *structures.Config, logger providers.Logger, store *Store, fileManager *FileManager) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		store:       store,
		fileManager: fileManager,
	}
}
