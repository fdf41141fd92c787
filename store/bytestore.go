// api/store/bytestore.go
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
)

// ByteStore is the content collaborator: raw bytes keyed by item id. The
// authorization core never interprets the bytes.
type ByteStore interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}

// FileStore keeps content as flat files under a directory.
type FileStore struct {
	fs  afero.Fs
	dir string
}

func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, id string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gate_errors.ErrContentNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStore) Put(_ context.Context, id string, data []byte) error {
	return afero.WriteFile(s.fs, filepath.Join(s.dir, id), data, 0o600)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	err := s.fs.Remove(filepath.Join(s.dir, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
