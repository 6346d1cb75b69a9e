package provider

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	obfuscatedPrefix = "--"
	obfuscationKey   = 56
	clockPath        = "/clock"
	clockJSONPath    = "/clock.json"
)

// decodeSourceURL reverses the hex + XOR obfuscation applied to source URLs.
// Values without the "--" prefix are returned unchanged.
func decodeSourceURL(s string) (string, error) {
	if !strings.HasPrefix(s, obfuscatedPrefix) {
		return s, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, obfuscatedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode source url: %w", err)
	}
	for i := range raw {
		raw[i] ^= obfuscationKey
	}
	return string(raw), nil
}

// clockJSON rewrites a clock endpoint path to its JSON variant
func clockJSON(path string) string {
	if strings.Contains(path, clockJSONPath) {
		return path
	}
	return strings.Replace(path, clockPath, clockJSONPath, 1)
}
