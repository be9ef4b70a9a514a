package errors

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

const (
	maxNodeIDLength     = 256
	maxTitleLength      = 200
	maxDiagramKeyLength = 128
)

// StoreSchemes lists the URL schemes accepted by [ValidateStoreURL].
var StoreSchemes = []string{"memory", "null", "file", "sqlite", "redis", "rediss", "mongodb", "mongodb+srv"}

// ValidateNodeID validates a node identifier from user input.
//
// The rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}
	return nil
}

// ValidateTitle validates a diagram title. An empty title is allowed.
func ValidateTitle(title string) error {
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", maxTitleLength)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}
	return nil
}

// ValidateDiagramKey validates a diagram key taken from a URL path or
// command line. Keys end up in file paths and database keys, so path
// separators and traversal sequences are rejected.
func ValidateDiagramKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "diagram key cannot be empty")
	}
	if len(key) > maxDiagramKeyLength {
		return New(ErrCodeInvalidKey, "diagram key too long (max %d characters)", maxDiagramKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "diagram key contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", ":"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "diagram key contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateStoreURL validates an override store URL. An empty URL selects
// the memory store and is valid.
func ValidateStoreURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidStore, err, "malformed store URL")
	}
	if !slices.Contains(StoreSchemes, u.Scheme) {
		return New(ErrCodeInvalidStore, "unsupported store scheme %q (use one of %s)", u.Scheme, strings.Join(StoreSchemes, ", "))
	}
	return nil
}
