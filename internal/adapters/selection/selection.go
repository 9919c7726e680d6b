// Package selection implements the SelectionStore port: the single-name
// record of the currently active protocol.
package selection

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

const fileName = "current_protocol.txt"

// Store implements usecases.SelectionStore as a single file under the
// erasmus data directory, written atomically so a concurrent Merge never
// observes a partial name.
type Store struct {
	path   string
	writer usecases.AtomicWriter
}

var _ usecases.SelectionStore = (*Store)(nil)

// New constructs a Store under erasmusDir, using writer for atomic writes.
func New(erasmusDir string, writer usecases.AtomicWriter) *Store {
	return &Store{path: filepath.Join(erasmusDir, fileName), writer: writer}
}

// Get returns the stored protocol name, or ok=false if unset.
func (s *Store) Get() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, &entities.FileSystemError{Op: "read", Path: s.path, Cause: err}
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", false, nil
	}
	return name, true, nil
}

// Set persists name as the active protocol.
func (s *Store) Set(name string) error {
	if err := s.writer.WriteAtomic(s.path, []byte(name)); err != nil {
		return &entities.FileSystemError{Op: "write", Path: s.path, Cause: err}
	}
	return nil
}

// Clear removes the selection record, if any.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &entities.FileSystemError{Op: "remove", Path: s.path, Cause: err}
	}
	return nil
}
