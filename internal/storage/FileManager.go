package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"emospray/internal/models"
	"emospray/internal/providers"
	"emospray/internal/storage/interfaces"
	"emospray/internal/structures"
)

const (
	backupPrefix = "device-"
	backupSuffix = ".json.zst"
)

var (
	ErrConfigNotFound = errors.New("device config not found")
	ErrConfigCorrupt  = errors.New("invalid data format in device config")
)

type FileManager struct {
	filePath   string
	backupDir  string
	maxBackups int
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		filePath:   conf.Persistence.FilePath,
		backupDir:  conf.Persistence.BackupDir,
		maxBackups: conf.Persistence.MaxBackups,
		compressor: compressor,
		logger:     logger,
	}
}

// Save replaces the config file with cfg. The new content is written to a
// temporary file and renamed over the old one.
func (f *FileManager) Save(cfg *models.DeviceConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.filePath, append(data, '\n'))
}

// Load reads the config file. A missing file yields (nil, false, nil).
// A legacy CSV line is migrated onto defaults and reported with migrated=true.
func (f *FileManager) Load(defaults *models.DeviceConfig) (*models.DeviceConfig, bool, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		cfg, err := decodeDeviceConfig(trimmed)
		if err != nil {
			return nil, false, err
		}
		return cfg, false, nil
	}

	f.logger.Warnf(providers.TypeApp, "Config file %s is not JSON, try to migrate from legacy line format", f.filePath)
	line, err := models.ParseLegacyLine(string(trimmed))
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed: %s", err)
		return nil, false, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	cfg, err := line.Migrate(defaults)
	if err != nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed: %s", err)
		return nil, false, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	f.logger.Warnf(providers.TypeApp, "Migration from legacy line format successful")
	return cfg, true, nil
}

// SaveBackup writes a compressed snapshot into the backup directory and
// prunes old snapshots. It returns the path of the new snapshot.
func (f *FileManager) SaveBackup(cfg *models.DeviceConfig) (string, error) {
	if f.backupDir == "" {
		return "", nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	compressed, err := f.compressor.Compress(data)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s%020d%s", backupPrefix, time.Now().UnixNano(), backupSuffix)
	path := filepath.Join(f.backupDir, name)
	if err = writeFileAtomic(path, compressed); err != nil {
		return "", err
	}
	return path, f.pruneBackups()
}

// LoadLatestBackup returns the newest readable snapshot, or nil when there is none.
func (f *FileManager) LoadLatestBackup() (*models.DeviceConfig, error) {
	names, err := f.listBackups()
	if err != nil {
		return nil, err
	}
	for i := len(names) - 1; i >= 0; i-- {
		path := filepath.Join(f.backupDir, names[i])
		cfg, err := f.readBackup(path)
		if err != nil {
			f.logger.Warnf(providers.TypeApp, "Skipping unreadable backup %s: %s", path, err)
			continue
		}
		f.logger.Infof(providers.TypeApp, "Loaded backup %s", path)
		return cfg, nil
	}
	return nil, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) readBackup(path string) (*models.DeviceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}
	return decodeDeviceConfig(decompressed)
}

func (f *FileManager) listBackups() ([]string, error) {
	if f.backupDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(f.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileManager) pruneBackups() error {
	if f.maxBackups <= 0 {
		return nil
	}
	names, err := f.listBackups()
	if err != nil {
		return err
	}
	for len(names) > f.maxBackups {
		if err := os.Remove(filepath.Join(f.backupDir, names[0])); err != nil {
			return err
		}
		names = names[1:]
	}
	return nil
}

// decodeDeviceConfig applies the same field checks as a manual upload so that
// a hand-edited file with wrong types is reported as corrupt.
func decodeDeviceConfig(data []byte) (*models.DeviceConfig, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}
	cfg, errs := models.ParseManualConfig(raw)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrConfigCorrupt, errs)
	}
	return cfg, nil
}

func writeFileAtomic(fileName string, data []byte) error {
	if dir := filepath.Dir(fileName); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}
