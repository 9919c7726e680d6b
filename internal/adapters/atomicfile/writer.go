// Package atomicfile implements the AtomicWriter port: writes that either
// fully land or leave the target untouched.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// Writer implements usecases.AtomicWriter using the write-temp-then-rename
// pattern: content is written to a temporary file in the same directory as
// the target, fsynced, and renamed onto the target (POSIX rename is atomic
// on the same filesystem). On any error the temporary file is removed.
type Writer struct{}

var _ usecases.AtomicWriter = (*Writer)(nil)

// New creates a Writer.
func New() *Writer {
	return &Writer{}
}

// WriteAtomic writes data to path such that a successful return means
// either the new content is visible, or nothing changed on disk.
func (w *Writer) WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("fsyncing temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}

	// os.Rename cannot replace an existing file on Windows; unlink the
	// target first so the rename below behaves the same as POSIX.
	if runtime.GOOS == "windows" {
		if _, err := os.Stat(path); err == nil {
			_ = os.Remove(path)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}
