// Package storage provides the filesystem-backed image store. The layout is
// deliberately opaque to the core: callers hold only the returned refs.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes submitted images under a base directory. Refs are the
// file names relative to that directory.
type FileStore struct {
	dir string
}

// NewFileStore ensures dir exists and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(_ context.Context, name string, data []byte) (string, error) {
	ref := filepath.Base(name) + ".bin"
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o640); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", ref, err)
	}
	return ref, nil
}

func (s *FileStore) Load(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", ref, err)
	}
	return data, nil
}
