// Package blob abstracts attachment byte storage. The production deployment
// points this at an S3-compatible bucket; the filesystem store below is the
// shipped implementation.
package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type fsStore struct{ dir string }

func NewFS(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fsStore{dir: dir}, nil
}

func (s *fsStore) Put(ctx context.Context, key string, r io.Reader) error {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (s *fsStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}
