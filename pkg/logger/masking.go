package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// MaskEndpoint reduces a provider endpoint URL to its host plus a short hash
// so log lines never leak query parameters or path-embedded credentials.
func MaskEndpoint(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return Fingerprint(rawURL)
	}

	return fmt.Sprintf("%s#%s", parsed.Host, Fingerprint(rawURL))
}

// MaskAPIKey returns a loggable stand-in for an API key.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	return "api-key#" + Fingerprint(key)
}

// Fingerprint returns the first 8 hex chars of the value's SHA-256 digest.
func Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:8]
}
