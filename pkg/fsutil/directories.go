// Package fsutil provides utility functions and constants for file system operations.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parent directories with default permissions if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// CreateTempDir creates a private working directory under base (or the OS temp
// directory when base is empty). The returned cleanup removes it and everything
// inside; it is safe to call more than once.
func CreateTempDir(base string) (string, func(), error) {
	if base != "" {
		if err := EnsureDir(base); err != nil {
			return "", func() {}, fmt.Errorf("failed to create temp base directory %s: %w", base, err)
		}
	}
	dir, err := os.MkdirTemp(base, TempDirPattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := os.Chmod(dir, DirModePrivate); err != nil {
		_ = os.RemoveAll(dir)
		return "", func() {}, fmt.Errorf("failed to restrict temp directory %s: %w", dir, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}
