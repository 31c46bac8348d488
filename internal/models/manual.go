package models

import (
	"fmt"
	"strings"
)

// FieldError describes one violation found in a manual config payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.String()
	}
	return "invalid device config: " + strings.Join(parts, "; ")
}

// ParseManualConfig checks the shape and primitive types of a decoded
// POST /upload-manual body and builds a DeviceConfig from it. Every
// violation is reported; values are not range-checked.
func ParseManualConfig(raw map[string]any) (*DeviceConfig, ValidationErrors) {
	var errs ValidationErrors
	cfg := &DeviceConfig{}

	if v, ok := raw["deviceOn"]; !ok {
		errs = append(errs, FieldError{"deviceOn", "is required"})
	} else if b, ok := v.(bool); !ok {
		errs = append(errs, FieldError{"deviceOn", "must be a boolean"})
	} else {
		cfg.DeviceOn = b
	}

	v, ok := raw["emotions"]
	if !ok {
		errs = append(errs, FieldError{"emotions", "is required"})
		return nil, errs
	}
	items, ok := v.([]any)
	if !ok {
		errs = append(errs, FieldError{"emotions", "must be an array"})
		return nil, errs
	}

	cfg.Emotions = make([]EmotionSetting, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("emotions[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, FieldError{prefix, "must be an object"})
			continue
		}
		var setting EmotionSetting
		var itemErrs ValidationErrors
		setting.Name, itemErrs = requireString(obj, prefix, "name", itemErrs)
		setting.SprayPeriod, itemErrs = requireNumber(obj, prefix, "sprayPeriod", itemErrs)
		setting.SprayDuration, itemErrs = requireNumber(obj, prefix, "sprayDuration", itemErrs)
		setting.IsActive, itemErrs = requireBool(obj, prefix, "isActive", itemErrs)
		if len(itemErrs) > 0 {
			errs = append(errs, itemErrs...)
			continue
		}
		cfg.Emotions = append(cfg.Emotions, setting)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

func requireString(obj map[string]any, prefix, key string, errs ValidationErrors) (string, ValidationErrors) {
	v, ok := obj[key]
	if !ok {
		return "", append(errs, FieldError{prefix + "." + key, "is required"})
	}
	s, ok := v.(string)
	if !ok {
		return "", append(errs, FieldError{prefix + "." + key, "must be a string"})
	}
	return s, errs
}

func requireNumber(obj map[string]any, prefix, key string, errs ValidationErrors) (float64, ValidationErrors) {
	v, ok := obj[key]
	if !ok {
		return 0, append(errs, FieldError{prefix + "." + key, "is required"})
	}
	n, ok := v.(float64)
	if !ok {
		return 0, append(errs, FieldError{prefix + "." + key, "must be a number"})
	}
	return n, errs
}

func requireBool(obj map[string]any, prefix, key string, errs ValidationErrors) (bool, ValidationErrors) {
	v, ok := obj[key]
	if !ok {
		return false, append(errs, FieldError{prefix + "." + key, "is required"})
	}
	b, ok := v.(bool)
	if !ok {
		return false, append(errs, FieldError{prefix + "." + key, "must be a boolean"})
	}
	return b, errs
}
