// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permission constants.
const (
	DirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	FilePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath = errors.New("path cannot be empty")
	ErrNotUnder  = errors.New("path is not under root")
)

// WriteFileAtomic replaces path with data in a single rename.
// The data is written to a temporary sibling, synced, then renamed over path,
// so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// CopyFileAtomic replaces dst with the contents of src.
func CopyFileAtomic(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- caller-controlled path
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	perm := os.FileMode(FilePermissions)
	if info, err := os.Stat(dst); err == nil {
		perm = info.Mode().Perm()
	}
	return WriteFileAtomic(dst, data, perm)
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ResolvePath joins a relative path onto root. Absolute paths are returned
// cleaned but otherwise unchanged; an empty path stays empty.
func ResolvePath(root, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// MirrorDir maps dir, which must live under srcRoot, onto the same relative
// location under dstRoot.
//
// Examples:
//   - ("content", "content/ch1", "dev") -> "dev/ch1"
//   - ("content", "content", "dev")     -> "dev"
//   - ("content", "other/ch1", "dev")   -> error
func MirrorDir(srcRoot, dir, dstRoot string) (string, error) {
	rel, err := filepath.Rel(srcRoot, dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotUnder, dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s not under %s", ErrNotUnder, dir, srcRoot)
	}
	return filepath.Join(dstRoot, rel), nil
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
