package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps images on disk below dir; references are URL paths below urlPath,
// which the HTTP server maps back onto dir.
type LocalStore struct {
	dir     string
	urlPath string
}

// NewLocal creates dir when missing
func NewLocal(dir, urlPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	urlPath = "/" + strings.Trim(urlPath, "/")
	return &LocalStore{dir: dir, urlPath: urlPath}, nil
}

// Dir is the directory images are written to
func (s *LocalStore) Dir() string { return s.dir }

// URLPath is the prefix of every reference returned by Save
func (s *LocalStore) URLPath() string { return s.urlPath }

func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	target, err := s.filePath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("close image file: %w", err)
	}

	return path.Join(s.urlPath, path.Clean("/"+key)), nil
}

// Delete removes the file behind ref. A file that is already gone is not an error.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	prefix := s.urlPath + "/"
	if !strings.HasPrefix(ref, prefix) {
		return ErrForeignReference
	}
	target, err := s.filePath(strings.TrimPrefix(ref, prefix))
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

func (s *LocalStore) filePath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
