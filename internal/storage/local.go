package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// trashDir holds files removed by an uncommitted deletion.
const trashDir = ".trash"

// Local stores files in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates dir and its trash directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(filepath.Join(dir, trashDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name, err := UniqueName(filename)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return name, nil
}

func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !validStoredName(name) {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (l *Local) Delete(_ context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (l *Local) Trash(_ context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	err := os.Rename(filepath.Join(l.dir, name), filepath.Join(l.dir, trashDir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("trash %s: %w", name, err)
	}
	return nil
}

func (l *Local) Restore(_ context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	err := os.Rename(filepath.Join(l.dir, trashDir, name), filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("restore %s: %w", name, err)
	}
	return nil
}

func (l *Local) Purge(_ context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(l.dir, trashDir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("purge %s: %w", name, err)
	}
	return nil
}
