package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore writes images into a directory on local disk.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(ctx context.Context, jobID string, data []byte) (string, error) {
	if err := validateJobID(jobID); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, ObjectName(jobID))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit image: %w", err)
	}
	return URL(jobID), nil
}

func (s *FileStore) Open(_ context.Context, jobID string) (io.ReadCloser, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, ObjectName(jobID)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}

func (s *FileStore) Delete(_ context.Context, jobID string) error {
	if err := validateJobID(jobID); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, ObjectName(jobID)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
