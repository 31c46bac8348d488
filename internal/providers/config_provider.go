package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"emospray/internal/structures"
)

const AppName = "EmotionSprayDaemon"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("webServer.maxBodySize", 10<<20)
	v.SetDefault("persistence.maxBackups", 10)
	v.SetDefault("logger.maxSizeMB", 50)
	v.SetDefault("logger.maxBackups", 3)
	v.SetDefault("classifier.timeout", 30*time.Second)
	v.SetDefault("classifier.retryCount", 1)
	v.SetDefault("classifier.minConfidence", 1.0)
	v.SetDefault("device.seedDefaults", true)
	v.SetDefault("device.defaultSprayPeriod", 30)
	v.SetDefault("device.defaultSprayDuration", 5)
	v.SetDefault("cache.ttl", time.Minute)

	v.BindEnv("logger.level", "EMOSPRAY_LOG_LEVEL")
	v.BindEnv("persistence.filePath", "EMOSPRAY_FILE_PATH")
	v.BindEnv("persistence.backupInterval", "EMOSPRAY_BACKUP_INTERVAL")
	v.BindEnv("classifier.url", "EMOSPRAY_CLASSIFIER_URL")
	v.BindEnv("cache.enabled", "EMOSPRAY_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
