package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// sourceIDRegex matches GitHub "owner/name" identifiers.
var sourceIDRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?/[A-Za-z0-9._-]+$`)

// ValidateSourceID validates an "owner/name" repository identifier.
func ValidateSourceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "source id cannot be empty")
	}
	if !sourceIDRegex.MatchString(id) {
		return New(ErrCodeInvalidConfig, "invalid source id %q (want owner/name)", id)
	}
	return ValidateName(id[strings.IndexByte(id, '/')+1:])
}

// ValidateName validates a repository directory name for safety.
// It rejects names that could escape the state root.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidConfig, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "name contains invalid control characters")
		}
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidConfig, "name cannot be %q", name)
	}

	for _, pattern := range []string{"/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidConfig, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePattern validates a glob-style file pattern.
// An empty pattern is valid and matches everything.
func ValidatePattern(pattern string) error {
	for _, r := range pattern {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "file pattern contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "URL must use http or https scheme")
	}

	return nil
}
