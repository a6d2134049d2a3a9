package roomedit

// ImageRef is an opaque reference to a stored image (an s3:// URI, a local
// path, or whatever the configured blob store hands out).
type ImageRef string

// CatalogStatus describes where an ImageState's catalog came from.
type CatalogStatus string

const (
	// CatalogInherited means the catalog was carried over verbatim from the
	// previous image by a targeted edit.
	CatalogInherited CatalogStatus = "inherited"
	// CatalogDetected means the catalog was produced by a detection call on
	// this exact image.
	CatalogDetected CatalogStatus = "detected"
	// CatalogPending means the image was (re)generated and no detection has
	// succeeded on it yet. The catalog is empty.
	CatalogPending CatalogStatus = "pending"
)

// ImageState is an image plus the catalog valid for exactly that image.
// It becomes the previous input to the next edit of the same room.
type ImageState struct {
	Image         ImageRef      `json:"image"`
	Catalog       Catalog       `json:"catalog"`
	CatalogStatus CatalogStatus `json:"catalogStatus"`
	// Parent is the image this one was derived from, empty for a fresh
	// generation or an uploaded image.
	Parent ImageRef `json:"parent,omitempty"`
}

// HasCatalog reports whether s exists and carries at least one object.
func (s *ImageState) HasCatalog() bool {
	return s != nil && len(s.Catalog) > 0
}
