package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrLegacyFormat = errors.New("invalid legacy device line")

// LegacyDeviceLine is the flat "sprayPeriod,sprayDuration,deviceOn,currentEmotion"
// record written by older deployments. It is only read, never written.
type LegacyDeviceLine struct {
	SprayPeriod    string
	SprayDuration  string
	DeviceOn       string
	CurrentEmotion string
}

func ParseLegacyLine(data string) (*LegacyDeviceLine, error) {
	line := strings.TrimSpace(data)
	if line == "" || strings.ContainsAny(line, "\n{[") {
		return nil, ErrLegacyFormat
	}
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 fields, got %d", ErrLegacyFormat, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return &LegacyDeviceLine{
		SprayPeriod:    parts[0],
		SprayDuration:  parts[1],
		DeviceOn:       parts[2],
		CurrentEmotion: parts[3],
	}, nil
}

// Migrate converts the legacy record into a DeviceConfig built on the
// default table. The entry named like CurrentEmotion becomes active and
// takes the legacy period and duration when they are set.
func (l *LegacyDeviceLine) Migrate(defaults *DeviceConfig) (*DeviceConfig, error) {
	period, err := parseOptionalNumber(l.SprayPeriod)
	if err != nil {
		return nil, fmt.Errorf("%w: sprayPeriod: %v", ErrLegacyFormat, err)
	}
	duration, err := parseOptionalNumber(l.SprayDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: sprayDuration: %v", ErrLegacyFormat, err)
	}

	cfg := defaults.Clone()
	if cfg == nil {
		cfg = &DeviceConfig{Emotions: []EmotionSetting{}}
	}
	cfg.DeviceOn = parseLegacyBool(l.DeviceOn)

	current := strings.ToLower(l.CurrentEmotion)
	for i := range cfg.Emotions {
		setting := &cfg.Emotions[i]
		setting.IsActive = strings.ToLower(setting.Name) == current
		if !setting.IsActive {
			continue
		}
		if period != nil {
			setting.SprayPeriod = *period
		}
		if duration != nil {
			setting.SprayDuration = *duration
		}
	}
	return cfg, nil
}

func parseOptionalNumber(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseLegacyBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}
