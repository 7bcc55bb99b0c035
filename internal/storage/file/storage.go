// Package file persists global state as a single JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/storage"
)

// Storage writes state to a JSON file, replacing it atomically on each save
type Storage struct {
	path string
}

// New creates a file storage rooted at path. The parent directory is
// created if needed; failing to create it is a startup configuration error.
func New(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("file storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Storage{path: path}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Path returns the file the state is stored in
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Load(ctx context.Context) (*model.GlobalState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrNoState
		}
		return nil, storage.Wrap("read state file", err)
	}

	var state model.GlobalState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, storage.Wrap("decode state file", err)
	}
	return &state, nil
}

func (s *Storage) Save(ctx context.Context, state *model.GlobalState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return storage.Wrap("encode state", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storage.Wrap("create temp file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return storage.Wrap("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return storage.Wrap("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return storage.Wrap("close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return storage.Wrap("replace state file", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
