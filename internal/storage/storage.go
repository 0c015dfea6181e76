package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNotFound        = errors.New("storage: file not found")
	ErrInvalidName     = errors.New("storage: invalid file name")
	ErrTypeNotAllowed  = errors.New("storage: file type not allowed")
	allowedExtensions  = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true}
	unsafeFilenameRune = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// FileStorage persists uploaded photo bytes under unique names.
type FileStorage interface {
	// Save stores r and returns the stored (sanitised, unique) name.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes name. A missing file is not an error.
	Delete(ctx context.Context, name string) error

	// Trash moves name aside until it is purged or restored.
	// A missing file is not an error.
	Trash(ctx context.Context, name string) error
	// Restore puts a trashed file back under its stored name.
	Restore(ctx context.Context, name string) error
	// Purge removes a trashed file for good.
	Purge(ctx context.Context, name string) error
}

// AllowedFile reports whether filename carries an accepted image extension.
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// SanitizeFilename strips directories and anything outside [A-Za-z0-9._-].
func SanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameRune.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// UniqueName prefixes the sanitised filename with a ULID.
func UniqueName(filename string) (string, error) {
	if !AllowedFile(filename) {
		return "", ErrTypeNotAllowed
	}
	clean := SanitizeFilename(filename)
	if clean == "" || !AllowedFile(clean) {
		return "", ErrInvalidName
	}

	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	if err != nil {
		return "", err
	}
	return strings.ToLower(id.String()) + "_" + clean, nil
}

// validStoredName rejects names that could escape the storage root.
func validStoredName(name string) bool {
	return name != "" && name == SanitizeFilename(name)
}
