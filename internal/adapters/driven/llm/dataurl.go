// Package llm holds helpers shared by the chat model adapters.
package llm

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SplitDataURL splits a base64 data URL ("data:image/png;base64,...") into
// its media type and payload. The payload is checked but returned still encoded.
func SplitDataURL(url string) (mediaType, payload string, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", "", fmt.Errorf("image is not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("malformed data URL")
	}
	mediaType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("data URL is not base64 encoded")
	}
	if mediaType == "" {
		mediaType = "image/png"
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", "", fmt.Errorf("decode data URL: %w", err)
	}
	return mediaType, payload, nil
}
