package roomedit

// CarryForward returns the state produced by a successful targeted edit of
// prev: the new image with prev's catalog unchanged. No re-detection happens,
// so ids, labels and boxes of untouched objects stay stable across turns.
func CarryForward(prev *ImageState, image ImageRef) *ImageState {
	next := &ImageState{Image: image, CatalogStatus: CatalogInherited}
	if prev != nil {
		next.Catalog = prev.Catalog.Clone()
		next.Parent = prev.Image
	}
	return next
}

// Regenerated returns the state for a freshly generated or regenerated image.
// The previous catalog is invalid for it; a later detection call fills it in.
func Regenerated(image, parent ImageRef) *ImageState {
	return &ImageState{Image: image, CatalogStatus: CatalogPending, Parent: parent}
}

// WithDetection returns a copy of s whose catalog comes from result. A failed
// detection leaves the catalog pending.
func WithDetection(s *ImageState, result DetectionResult) *ImageState {
	next := *s
	switch result.Status {
	case DetectionFound:
		next.Catalog = result.Objects.Clone()
		next.CatalogStatus = CatalogDetected
	case DetectionEmpty:
		next.Catalog = Catalog{}
		next.CatalogStatus = CatalogDetected
	default:
		next.Catalog = nil
		next.CatalogStatus = CatalogPending
	}
	return &next
}
