// Package filesystem implements local-disk transport: a FileStore over
// ordinary paths and an inbox watcher that reacts to new placement slips.
//
// Refs are bare paths or file:// URIs. The store is the offline
// counterpart of the Drive adapter; the core cannot tell them apart.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore reads and writes document bytes on the local filesystem.
type FileStore struct {
	outputDir string
}

// NewFileStore creates a filesystem-backed file store. Stored files land
// in outputDir, created on demand.
func NewFileStore(outputDir string) *FileStore {
	return &FileStore{outputDir: outputDir}
}

// Fetch reads the file at ref.
func (f *FileStore) Fetch(_ context.Context, ref string) ([]byte, error) {
	path := ResolvePath(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Store writes content into the output directory and returns the path.
func (f *FileStore) Store(ctx context.Context, name string, content []byte) (string, error) {
	dir, err := f.EnsureFolder(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// EnsureFolder creates the output directory if needed and returns it.
func (f *FileStore) EnsureFolder(_ context.Context) (string, error) {
	if f.outputDir == "" {
		return "", fmt.Errorf("%w: no output directory configured", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(f.outputDir, 0700); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return f.outputDir, nil
}
