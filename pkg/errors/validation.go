package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentName validates a stored-document name for safety and
// correctness. Names end up in file paths, Redis keys and URLs, so the
// rules are intentionally conservative:
//   - no empty names
//   - no control characters
//   - no path separators or traversal sequences
//   - no leading dot
//   - maximum length of 128 characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "document name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "document name contains control characters")
		}
	}

	dangerous := []string{
		"..",
		"/",
		"\\",
		"\x00",
	}
	for _, pattern := range dangerous {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "document name contains invalid sequence: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "document name cannot start with a dot")
	}

	return nil
}
