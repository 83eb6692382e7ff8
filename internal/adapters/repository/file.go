package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultFileDir = "data"

// FileStore keeps one file per key inside a directory. Writes go to a temp
// file that is renamed over the target, so readers never see a partial
// document.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = defaultFileDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStore, dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, fileName(key))
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	defer observe(DriverFile, "get", time.Now())

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrStore, key, err)
	}
	return data, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	defer observe(DriverFile, "set", time.Now())

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrStore, key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(value); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("%w: write %q: %v", ErrStore, key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("%w: sync %q: %v", ErrStore, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %v", ErrStore, key, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("%w: rename %q: %v", ErrStore, key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	defer observe(DriverFile, "delete", time.Now())

	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: delete %q: %v", ErrStore, key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// fileName maps a key onto a safe file name: anything outside
// [A-Za-z0-9._-] becomes '_'.
func fileName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	if name == "" || strings.HasPrefix(name, ".") {
		name = "_" + name
	}
	return name + ".json"
}
