package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// IsRemoteImage reports whether an image entry is an HTTP(S) URL.
// Anything else is treated as an embedded base64 payload.
func IsRemoteImage(entry string) bool {
	lower := strings.ToLower(entry)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// EmbeddedImageDataURI builds a data URI for a base64 image payload.
// Payloads that already carry a data: prefix are returned as they are.
func EmbeddedImageDataURI(payload string) string {
	if strings.HasPrefix(payload, "data:") {
		return payload
	}
	return "data:image/jpeg;base64," + payload
}

// DecodeEmbeddedImage decodes a base64 image payload, with or without a data URI prefix
func DecodeEmbeddedImage(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = payload[comma+1:]
	}
	payload = strings.TrimSpace(payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some stores drop the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image: %w", err)
		}
	}
	return data, nil
}
