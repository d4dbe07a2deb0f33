package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps uploads in a directory on disk, served statically by
// the HTTP layer under /uploads.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (l *LocalStore) Save(r io.Reader, size int64, name, contentType string) error {
	f, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (l *LocalStore) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.dir, name))
}

func (l *LocalStore) Remove(name string) error {
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStore) URL(name string) string {
	return "/uploads/" + name
}

// Dir returns the directory backing the store, for static file serving.
func (l *LocalStore) Dir() string {
	return l.dir
}
