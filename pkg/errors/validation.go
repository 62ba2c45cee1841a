package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateModuleID validates a module identifier before it reaches the catalog.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No path separators (identifiers double as template page names)
//   - Maximum length of 128 characters
func ValidateModuleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "module identifier cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "module identifier too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "module identifier contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "module identifier cannot contain path separators: %q", id)
	}

	return nil
}

// ValidateUploadName validates the filename of an uploaded file.
// It must be a plain basename carrying the expected extension.
func ValidateUploadName(name, ext string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "upload filename cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return New(ErrCodeInvalidPath, "upload filename cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "upload filename cannot be a hidden file")
	}

	if !strings.EqualFold(filepath.Ext(name), ext) {
		return New(ErrCodeInvalidPath, "file must have the %s extension", ext)
	}

	return nil
}
