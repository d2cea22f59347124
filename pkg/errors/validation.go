package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateElementID validates a node or edge identifier read from user input.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "element id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "element id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "element id %q contains control characters", id)
		}
	}

	return nil
}

// recordIDRegex matches canonical lowercase UUIDs.
var recordIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateRecordID validates a stored layout record ID.
func ValidateRecordID(id string) error {
	if !recordIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid record id: %q", id)
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
