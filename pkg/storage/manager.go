package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	errs "sdsscraper/pkg/errors"
)

// Manager stores downloaded documents in a single flat output directory
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.New(errs.ErrorTypeFilesystem, "failed to create output directory", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// Path returns the location of filename inside the output directory
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// Exists reports whether filename is already present on disk as a regular
// file. The filesystem is consulted every time so files removed mid-run are
// fetched again.
func (m *Manager) Exists(filename string) bool {
	info, err := os.Stat(m.Path(filename))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Save writes r to filename. Data goes to a temp file first and is renamed
// into place, so a crash never leaves a partial document behind.
func (m *Manager) Save(r io.Reader, filename string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}

	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return errs.New(errs.ErrorTypeFilesystem, "failed to create output directory", err)
	}

	out, err := os.CreateTemp(m.outputDir, tempPattern)
	if err != nil {
		return errs.New(errs.ErrorTypeFilesystem, "failed to create temporary file", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to write %s", filename), err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to close %s", filename), closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to set permissions on %s", filename), err)
	}

	if err := os.Rename(tempFile, m.Path(filename)); err != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to move %s into place", filename), err)
	}

	return nil
}

// tempPattern stays short so any name the filesystem accepts can be staged
const tempPattern = ".dl-*.tmp"

// validateFilename rejects names that would escape the output directory
func validateFilename(filename string) error {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("invalid filename %q", filename), nil)
	}
	return nil
}
