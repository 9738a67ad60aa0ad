package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdferrors "github.com/a3tai/mcp-timetable-reader/internal/pdf/errors"
)

// PathValidator confines document paths to a configured directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	absDir, err := filepath.Abs(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &PathValidator{
		configuredDirectory: filepath.Clean(absDir),
	}, nil
}

// GetConfiguredDirectory returns the absolute configured directory
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// Resolve maps a document path to an absolute path inside the configured
// directory. Relative paths are taken relative to that directory.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to resolve path", err)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ValidatePath checks that path, and its symlink target when it has one,
// lies within the configured directory.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to resolve path", err)
	}
	cleanPath := filepath.Clean(absPath)

	realDir := v.configuredDirectory
	if resolved, err := filepath.EvalSymlinks(realDir); err == nil {
		realDir = resolved
	}

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	within := func(p string) bool {
		return isWithin(p, v.configuredDirectory) || isWithin(p, realDir)
	}

	if !within(cleanPath) || !within(realPath) {
		return pdferrors.New(pdferrors.ErrorTypeSecurityRestriction,
			fmt.Sprintf("path is outside configured directory: %s", path)).WithFile(path)
	}
	return nil
}

func isWithin(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
