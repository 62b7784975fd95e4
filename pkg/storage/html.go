package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	errs "sdsscraper/pkg/errors"
)

// HTMLFile is the accumulation file that rendered listing pages are appended to
type HTMLFile struct {
	path string
	mu   sync.Mutex
}

// NewHTMLFile returns a handle for the accumulation file at path
func NewHTMLFile(path string) *HTMLFile {
	return &HTMLFile{path: path}
}

// Path returns the file location
func (h *HTMLFile) Path() string {
	return h.path
}

// Exists reports whether the file is present
func (h *HTMLFile) Exists() bool {
	info, err := os.Stat(h.path)
	return err == nil && !info.IsDir()
}

// Append adds html to the end of the file, creating it if needed.
// Pages are written back to back with no separator.
func (h *HTMLFile) Append(html string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.New(errs.ErrorTypeFilesystem, "failed to create directory for HTML file", err)
		}
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to open %s", h.path), err)
	}

	_, err = f.WriteString(html)
	closeErr := f.Close()
	if err != nil {
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to append to %s", h.path), err)
	}
	if closeErr != nil {
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to close %s", h.path), closeErr)
	}
	return nil
}

// Read returns the whole file content
func (h *HTMLFile) Read() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		return "", errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to read %s", h.path), err)
	}
	return string(data), nil
}

// Remove deletes the file. A missing file is not an error.
func (h *HTMLFile) Remove() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to remove %s", h.path), err)
	}
	return nil
}
