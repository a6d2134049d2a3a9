package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fpang/roomedit/internal/roomedit"
)

// FileStore keeps one JSON file per room in a directory. It is meant for the
// single-user CLI; concurrent writers to the same room are not coordinated.
type FileStore struct {
	dir string
}

var _ StateStore = (*FileStore)(nil)

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(roomID string) string {
	return filepath.Join(f.dir, roomID+".json")
}

// GetState implements StateStore.
func (f *FileStore) GetState(_ context.Context, roomID string) (*roomedit.ImageState, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(roomID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read room state: %w", err)
	}
	var state roomedit.ImageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse room state %s: %w", f.path(roomID), err)
	}
	return &state, nil
}

// PutState implements StateStore. The file is replaced atomically.
func (f *FileStore) PutState(_ context.Context, roomID string, state *roomedit.ImageState) error {
	if err := ValidateRoomID(roomID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal room state: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, roomID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write room state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close room state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(roomID)); err != nil {
		return fmt.Errorf("replace room state: %w", err)
	}
	return nil
}
