// Package roomedit plans object-targeted edits of a room image.
//
// Given a natural-language request, the catalog of objects detected in the
// latest image of a room, and an optional explicit object selection, the
// package classifies the request, resolves which cataloged object is meant,
// validates the edit against domain rules, converts the target's bounding box
// into a padded inpainting mask, and assembles an ordered list of edit tasks.
//
// Everything here is request-scoped and pure: no I/O, no caching, no state
// shared between calls. Model calls (intent parsing, object detection, image
// synthesis) are consumed through the interfaces in services.go and are run
// by the caller.
package roomedit

import (
	"fmt"
	"math"
	"strings"
)

// Category is the coarse kind of a detected object.
type Category string

// Object categories.
const (
	CategoryFurniture     Category = "furniture"
	CategorySurface       Category = "surface"
	CategoryLighting      Category = "lighting"
	CategoryArchitectural Category = "architectural"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFurniture, CategorySurface, CategoryLighting, CategoryArchitectural:
		return true
	}
	return false
}

// categoryKeywords maps free-text detector categories and labels onto the four
// categories. Checked in order; the first keyword found wins.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"lamp", CategoryLighting},
	{"light", CategoryLighting},
	{"chandelier", CategoryLighting},
	{"sconce", CategoryLighting},
	{"pendant", CategoryLighting},
	{"window", CategoryArchitectural},
	{"door", CategoryArchitectural},
	{"wall", CategoryArchitectural},
	{"ceiling", CategoryArchitectural},
	{"column", CategoryArchitectural},
	{"beam", CategoryArchitectural},
	{"fireplace", CategoryArchitectural},
	{"stair", CategoryArchitectural},
	{"arch", CategoryArchitectural},
	{"floor", CategorySurface},
	{"rug", CategorySurface},
	{"carpet", CategorySurface},
	{"countertop", CategorySurface},
	{"backsplash", CategorySurface},
	{"tile", CategorySurface},
	{"curtain", CategorySurface},
}

// NormalizeCategory maps a detector's free-text category (e.g. "sofa",
// "pendant lamp", "area rug") onto one of the four categories. Anything that
// is not recognizably lighting, architectural, or a surface is furniture.
func NormalizeCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	for _, kw := range categoryKeywords {
		if strings.Contains(string(c), kw.keyword) {
			return kw.category
		}
	}
	return CategoryFurniture
}

// BBox is a normalized bounding box [x1, y1, x2, y2] with every coordinate
// in [0,1], x1 < x2 and y1 < y2.
type BBox [4]float64

// Width returns x2 - x1.
func (b BBox) Width() float64 { return b[2] - b[0] }

// Height returns y2 - y1.
func (b BBox) Height() float64 { return b[3] - b[1] }

// Area returns the box area as a fraction of the whole image.
func (b BBox) Area() float64 { return b.Width() * b.Height() }

// Center returns the box center in normalized coordinates.
func (b BBox) Center() (float64, float64) {
	return (b[0] + b[2]) / 2, (b[1] + b[3]) / 2
}

// Clamp returns b with every coordinate clamped into [0,1].
func (b BBox) Clamp() BBox {
	var out BBox
	for i, v := range b {
		out[i] = clamp01(v)
	}
	return out
}

// Validate checks that the box is bounded and ordered.
func (b BBox) Validate() error {
	for i, v := range b {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("bbox coordinate %d out of range [0,1]: %v", i, v)
		}
	}
	if b[0] >= b[2] {
		return fmt.Errorf("bbox x1 %.3f must be less than x2 %.3f", b[0], b[2])
	}
	if b[1] >= b[3] {
		return fmt.Errorf("bbox y1 %.3f must be less than y2 %.3f", b[1], b[3])
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// DetectedObject is one object found in a specific image.
type DetectedObject struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	BBox     BBox     `json:"bbox"`
}

// Validate checks the object invariants: non-empty id and label, a known
// category, and an ordered, bounded bbox.
func (o DetectedObject) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("object id is empty")
	}
	if strings.TrimSpace(o.Label) == "" {
		return fmt.Errorf("object %s: label is empty", o.ID)
	}
	if !o.Category.Valid() {
		return fmt.Errorf("object %s: unknown category %q", o.ID, o.Category)
	}
	if err := o.BBox.Validate(); err != nil {
		return fmt.Errorf("object %s: %w", o.ID, err)
	}
	return nil
}

// RawObject is an object as it arrives from outside the package: detectors
// and clients disagree on label vs name, and the bbox may be missing.
type RawObject struct {
	ID       string    `json:"id,omitempty"`
	Label    string    `json:"label,omitempty"`
	Name     string    `json:"name,omitempty"`
	Category string    `json:"category,omitempty"`
	BBox     []float64 `json:"bbox,omitempty"`
}

// NormalizeObject converts a RawObject into a DetectedObject, once, at the
// system boundary. fallbackID is used when the raw object carries no id.
// Objects without a usable label or bbox are rejected.
func NormalizeObject(raw RawObject, fallbackID string) (DetectedObject, error) {
	label := strings.TrimSpace(raw.Label)
	if label == "" {
		label = strings.TrimSpace(raw.Name)
	}
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = fallbackID
	}
	if len(raw.BBox) != 4 {
		return DetectedObject{}, fmt.Errorf("object %q: bbox must have 4 coordinates, got %d", label, len(raw.BBox))
	}
	obj := DetectedObject{
		ID:       id,
		Label:    label,
		Category: NormalizeCategory(raw.Category + " " + label),
		BBox:     BBox{raw.BBox[0], raw.BBox[1], raw.BBox[2], raw.BBox[3]},
	}
	if c := Category(strings.ToLower(strings.TrimSpace(raw.Category))); c.Valid() {
		obj.Category = c
	}
	if err := obj.Validate(); err != nil {
		return DetectedObject{}, err
	}
	return obj, nil
}

// Catalog is the list of objects valid for exactly one image.
type Catalog []DetectedObject

// Labels returns every label in catalog order.
func (c Catalog) Labels() []string {
	labels := make([]string, 0, len(c))
	for _, o := range c {
		labels = append(labels, o.Label)
	}
	return labels
}

// ByID returns the object with the given id.
func (c Catalog) ByID(id string) (DetectedObject, bool) {
	for _, o := range c {
		if o.ID == id {
			return o, true
		}
	}
	return DetectedObject{}, false
}

// Clone returns a copy that shares no backing array with c.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both catalogs hold the same objects in the same order.
func (c Catalog) Equal(other Catalog) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks every object and that ids are unique.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, o := range c {
		if err := o.Validate(); err != nil {
			return err
		}
		if seen[o.ID] {
			return fmt.Errorf("duplicate object id %q", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// NormalizeCatalog normalizes raws in order, assigning obj_N ids to objects
// without one. Any invalid object or duplicate id fails the whole catalog.
func NormalizeCatalog(raws []RawObject) (Catalog, error) {
	catalog := make(Catalog, 0, len(raws))
	for i, raw := range raws {
		obj, err := NormalizeObject(raw, fmt.Sprintf("obj_%d", i+1))
		if err != nil {
			return nil, &ValidationError{Reason: err.Error(), Suggestion: "Every object needs a label and a bbox [x1, y1, x2, y2] in 0..1"}
		}
		catalog = append(catalog, obj)
	}
	if err := catalog.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return catalog, nil
}
