package transport

import (
	"os"
	"path/filepath"
	"time"
)

// FilesystemBackend stores each cached response as a file named by its key,
// using the file modification time as entry age.
type FilesystemBackend struct {
	dir string
}

// NewFilesystemBackend creates the cache directory if needed.
func NewFilesystemBackend(dir string) (*FilesystemBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FilesystemBackend{dir: dir}, nil
}

func (b *FilesystemBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Get returns the cached body if present and younger than maxAge.
func (b *FilesystemBackend) Get(key string, maxAge time.Duration) ([]byte, bool) {
	path := b.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > maxAge {
		os.Remove(path)
		return nil, false
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set writes the body under the key, resetting its age.
func (b *FilesystemBackend) Set(key string, body []byte) error {
	return os.WriteFile(b.path(key), body, 0644)
}

// Close is a no-op for the filesystem backend.
func (b *FilesystemBackend) Close() error { return nil }
