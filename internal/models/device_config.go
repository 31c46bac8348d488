package models

import (
	"math"
	"strings"
)

// EmotionSetting is the actuation profile of the device for one emotion.
type EmotionSetting struct {
	Name          string  `json:"name"`
	SprayPeriod   float64 `json:"sprayPeriod"`
	SprayDuration float64 `json:"sprayDuration"`
	IsActive      bool    `json:"isActive"`
}

// DeviceConfig is the whole document polled by the device.
type DeviceConfig struct {
	DeviceOn bool             `json:"deviceOn"`
	Emotions []EmotionSetting `json:"emotions"`
}

// DefaultDeviceConfig returns the seed table: one inactive setting per main emotion.
func DefaultDeviceConfig(period, duration float64) *DeviceConfig {
	cfg := &DeviceConfig{Emotions: make([]EmotionSetting, 0, len(MainEmotions))}
	for _, name := range MainEmotions {
		cfg.Emotions = append(cfg.Emotions, EmotionSetting{
			Name:          strings.ToUpper(name[:1]) + name[1:],
			SprayPeriod:   period,
			SprayDuration: duration,
		})
	}
	return cfg
}

func (c *DeviceConfig) Clone() *DeviceConfig {
	if c == nil {
		return nil
	}
	out := &DeviceConfig{
		DeviceOn: c.DeviceOn,
		Emotions: make([]EmotionSetting, len(c.Emotions)),
	}
	copy(out.Emotions, c.Emotions)
	return out
}

// ActiveCount returns how many settings are currently active.
func (c *DeviceConfig) ActiveCount() int {
	n := 0
	for _, e := range c.Emotions {
		if e.IsActive {
			n++
		}
	}
	return n
}

// ApplyEmotions activates the settings whose lowercased name has a positive
// score and sets their spray duration to the rounded score. All other
// settings are deactivated and keep their duration. Scores without a
// matching setting are not inserted; their bucket names are returned.
func (c *DeviceConfig) ApplyEmotions(scores EmotionScores) []string {
	matched := make(map[string]bool, len(scores))
	for i := range c.Emotions {
		setting := &c.Emotions[i]
		key := strings.ToLower(setting.Name)
		value, ok := scores[key]
		if ok && value > 0 {
			setting.IsActive = true
			setting.SprayDuration = math.Round(value)
			matched[key] = true
			continue
		}
		setting.IsActive = false
	}

	var unmatched []string
	for _, bucket := range scores.Buckets() {
		if scores[bucket] > 0 && !matched[bucket] {
			unmatched = append(unmatched, bucket)
		}
	}
	return unmatched
}
