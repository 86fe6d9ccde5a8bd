// Package filestore keeps uploaded statement files on local disk under
// generated names, so the original filename never decides the storage path.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores the content and returns the generated filename. The original
// extension is preserved for later parser dispatch sanity checks.
func (s *Store) Save(originalFilename string, r io.Reader) (string, error) {
	filename := uuid.New().String() + filepath.Ext(originalFilename)
	fullPath := filepath.Join(s.basePath, filename)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return filename, nil
}

func (s *Store) Open(filename string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.basePath, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
