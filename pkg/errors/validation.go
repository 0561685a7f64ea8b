package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Allowed design file extensions, lowercase with the leading dot.
const (
	ExtLEF = ".lef"
	ExtDEF = ".def"
)

// ValidateDesignFilename validates an uploaded design file name for safety.
// It ensures the name is a simple basename with a .lef or .def extension.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateDesignFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "file name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "file name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "file name cannot contain path components: %q", name)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ExtLEF, ExtDEF:
		return nil
	}
	return New(ErrCodeInvalidFormat, "only LEF/DEF files are supported: %q", name)
}

// ValidatePath validates a local file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
