package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateOutputDir checks that dir is safe to delete and recreate.
// Regeneration removes the whole tree, so the filesystem root, the user's
// home directory and the current working directory are refused outright.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Not "/", ".", the home directory or the working directory
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	for _, r := range dir {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output directory contains invalid control characters")
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve output directory %q", dir)
	}
	clean := filepath.Clean(abs)

	if clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return New(ErrCodeInvalidPath, "refusing to use filesystem root as output directory")
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == clean {
		return New(ErrCodeInvalidPath, "refusing to use home directory as output directory")
	}
	if wd, err := os.Getwd(); err == nil && filepath.Clean(wd) == clean {
		return New(ErrCodeInvalidPath, "refusing to use working directory as output directory")
	}

	return nil
}
