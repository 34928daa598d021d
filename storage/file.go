// Package storage provides the durable snapshot backend for the order
// log. The running process treats its in-memory log as the source of
// truth; snapshots are a best-effort backup an operator can read.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// SnapshotBackend persists opaque snapshots of the order log.
type SnapshotBackend interface {
	// Write replaces the stored snapshot with data.
	Write(ctx context.Context, data []byte) error

	// Load returns the stored snapshot, or os.ErrNotExist if none has
	// been written yet.
	Load(ctx context.Context) ([]byte, error)

	// Name returns a unique identifier for this backend.
	Name() string
}

// FileBackend implements SnapshotBackend on the local file system.
type FileBackend struct {
	path string
	log  *slog.Logger
}

// NewFileBackend creates a file snapshot backend writing to path. The
// parent directory is created if it does not exist.
func NewFileBackend(path string, log *slog.Logger) (*FileBackend, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &FileBackend{path: path, log: log}, nil
}

// Write stores the snapshot atomically by writing to a temporary file
// and renaming it over the target, so readers never observe a partial
// snapshot.
func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	b.log.Debug("Wrote order snapshot",
		slog.String("path", b.path),
		slog.Int("size", len(data)))
	return nil
}

// Load reads the stored snapshot.
func (b *FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Name returns a unique identifier for this storage backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.path))
}
