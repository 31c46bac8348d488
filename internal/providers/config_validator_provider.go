package providers

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"

	"emospray/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	sections := []struct {
		name  string
		value interface{}
	}{
		{"webServer", &cv.conf.WebServer},
		{"persistence", &cv.conf.Persistence},
		{"logger", &cv.conf.Logger},
		{"classifier", &cv.conf.Classifier},
	}
	for _, s := range sections {
		v := validate.Struct(s.value)
		if !v.Validate() {
			return fmt.Errorf("config section %s: %s", s.name, v.Errors.One())
		}
	}

	p := cv.conf.Persistence
	if p.BackupDir != "" && p.BackupInterval <= 0 {
		return errors.New("config section persistence: backupInterval must be positive when backupDir is set")
	}
	if p.MaxBackups < 0 {
		return errors.New("config section persistence: maxBackups must not be negative")
	}
	if cv.conf.Classifier.RetryCount < 0 {
		return errors.New("config section classifier: retryCount must not be negative")
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.TTL < 0 {
		return errors.New("config section cache: ttl must not be negative")
	}
	return nil
}
