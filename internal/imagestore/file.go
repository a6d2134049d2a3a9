package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fpang/roomedit/internal/roomedit"
)

// FileStore keeps images in a local directory. Refs are file paths, so an
// image the user picks from disk can be used directly.
type FileStore struct {
	dir string
}

// NewFileStore returns a store writing under dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Put writes data to a new file.
func (s *FileStore) Put(_ context.Context, data []byte, contentType string) (roomedit.ImageRef, error) {
	path := filepath.Join(s.dir, newName(sniff(data, contentType)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return roomedit.ImageRef(path), nil
}

// Get reads the file behind ref. Any readable path works, not only files
// this store wrote.
func (s *FileStore) Get(_ context.Context, ref roomedit.ImageRef) (Blob, error) {
	path := strings.TrimPrefix(string(ref), "file://")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Blob{}, notFound(ref)
	}
	if err != nil {
		return Blob{}, fmt.Errorf("read image: %w", err)
	}
	return Blob{Data: data, ContentType: sniff(data, contentTypeOf(path))}, nil
}

func contentTypeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return ""
}
