package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the document's file name inside the data directory.
const FileName = "store.json"

// FileMedium keeps the document in a single JSON file. Writes go to a
// temporary file that is renamed over the target, so a reader never sees a
// half-written document.
type FileMedium struct {
	path string
}

func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileMedium{path: filepath.Join(dir, FileName)}, nil
}

func (m *FileMedium) Read(_ context.Context) ([]byte, error) {
	return os.ReadFile(m.path)
}

func (m *FileMedium) Write(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("replace %s: %w", m.path, err)
	}
	return nil
}

func (m *FileMedium) Location() string { return m.path }

func (m *FileMedium) Close() error { return nil }
