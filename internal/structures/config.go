package structures

import "time"

type Server struct {
	Host        string `yaml:"host" validate:"required"`
	Port        int    `yaml:"port" validate:"required|uint|min:1"`
	MaxBodySize int64  `yaml:"maxBodySize" validate:"required|min:1"`
}

type Persistence struct {
	FilePath       string        `yaml:"filePath" validate:"required|unixPath"`
	BackupDir      string        `yaml:"backupDir"`
	BackupInterval time.Duration `yaml:"backupInterval"`
	MaxBackups     int           `yaml:"maxBackups"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode       uint32 `yaml:"mode" validate:"required|uint"`
	Dir        string `yaml:"dir" validate:"required|unixPath"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

type ClassifierConfig struct {
	URL           string        `yaml:"url" validate:"required|fullUrl"`
	Timeout       time.Duration `yaml:"timeout" validate:"required|min:1"`
	RetryCount    int           `yaml:"retryCount"`
	MinConfidence float64       `yaml:"minConfidence"`
}

type DeviceDefaults struct {
	SeedDefaults         bool    `yaml:"seedDefaults"`
	DefaultSprayPeriod   float64 `yaml:"defaultSprayPeriod"`
	DefaultSprayDuration float64 `yaml:"defaultSprayDuration"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server           `yaml:"webServer"`
	Persistence Persistence      `yaml:"persistence"`
	Logger      LoggerConfig     `yaml:"logger"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Device      DeviceDefaults   `yaml:"device"`
	Cache       CacheConfig      `yaml:"cache"`
	Metrics     MetricsConfig    `yaml:"metrics"`
}
