package llm

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DataURL encodes data as a base64 data URL with the given MIME type
func DataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURL splits a base64 data URL into its MIME type and decoded bytes.
// Backends whose APIs take raw image bytes use this to unpack image parts.
func ParseDataURL(url string) (string, []byte, error) {
	if !strings.HasPrefix(strings.ToLower(url), "data:") {
		return "", nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(url[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL: missing comma")
	}
	mime, enc, _ := strings.Cut(header, ";")
	if !strings.EqualFold(enc, "base64") {
		return "", nil, fmt.Errorf("unsupported data URL encoding %q", enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return mime, data, nil
}
