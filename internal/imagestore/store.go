// Package imagestore stores room images and hands out the opaque refs the
// planning core passes around.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/fpang/roomedit/internal/roomedit"
)

// ErrNotFound is returned when a ref points at nothing.
var ErrNotFound = errors.New("image not found")

// Blob is image bytes plus their MIME type.
type Blob struct {
	Data        []byte
	ContentType string
}

// BlobStore reads and writes images by ref.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (roomedit.ImageRef, error)
	Get(ctx context.Context, ref roomedit.ImageRef) (Blob, error)
}

// newName returns a fresh object name with an extension for contentType.
func newName(contentType string) string {
	return uuid.NewString() + extension(contentType)
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}

// sniff fills in a missing content type from the data.
func sniff(data []byte, contentType string) string {
	if contentType != "" {
		return contentType
	}
	return http.DetectContentType(data)
}

func notFound(ref roomedit.ImageRef) error {
	return fmt.Errorf("%w: %s", ErrNotFound, ref)
}
