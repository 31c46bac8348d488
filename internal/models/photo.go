package models

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"
)

const dataURLPrefix = "data:image"

var (
	ErrPhotoMissing   = errors.New("no photo field provided")
	ErrPhotoNotString = errors.New("photo must be a base64 string")
	ErrInvalidBase64  = errors.New("invalid base64 data")
)

// PhotoRequest is the body of POST /upload-photo. Photo is kept untyped so
// that a non-string value can be told apart from a missing one.
type PhotoRequest struct {
	Photo any `json:"photo"`
}

// DecodePhoto turns the photo field into raw image bytes. A data URL header
// such as "data:image/jpeg;base64," is stripped when present.
func DecodePhoto(value any) ([]byte, error) {
	if value == nil {
		return nil, ErrPhotoMissing
	}
	encoded, ok := value.(string)
	if !ok {
		return nil, ErrPhotoNotString
	}
	if encoded == "" {
		return nil, ErrPhotoMissing
	}

	if strings.HasPrefix(encoded, dataURLPrefix) {
		_, payload, found := strings.Cut(encoded, ",")
		if !found {
			return nil, ErrInvalidBase64
		}
		encoded = payload
	}

	encoded = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, encoded)

	data, err := decodeBase64(encoded)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidBase64
	}
	return data, nil
}

func decodeBase64(s string) ([]byte, error) {
	padded := strings.HasSuffix(s, "=")
	urlSafe := strings.ContainsAny(s, "-_")

	var enc *base64.Encoding
	switch {
	case urlSafe && padded:
		enc = base64.URLEncoding
	case urlSafe:
		enc = base64.RawURLEncoding
	case padded:
		enc = base64.StdEncoding
	default:
		if len(s)%4 == 0 {
			enc = base64.StdEncoding
		} else {
			enc = base64.RawStdEncoding
		}
	}
	return enc.DecodeString(s)
}
