package roomedit

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"sofa", CategoryFurniture},
		{"Lighting", CategoryLighting},
		{"pendant lamp", CategoryLighting},
		{"floor lamp", CategoryLighting},
		{"area rug", CategorySurface},
		{"hardwood floor", CategorySurface},
		{"window", CategoryArchitectural},
		{"staircase", CategoryArchitectural},
		{"coffee table", CategoryFurniture},
		{"", CategoryFurniture},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBBoxValidate(t *testing.T) {
	tests := []struct {
		name    string
		b       BBox
		wantErr bool
	}{
		{"ok", BBox{0.1, 0.2, 0.3, 0.4}, false},
		{"full frame", BBox{0, 0, 1, 1}, false},
		{"x reversed", BBox{0.5, 0.1, 0.4, 0.3}, true},
		{"y equal", BBox{0.1, 0.3, 0.4, 0.3}, true},
		{"out of range", BBox{-0.1, 0.1, 0.4, 0.3}, true},
		{"above one", BBox{0.1, 0.1, 1.2, 0.3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeObject(t *testing.T) {
	obj, err := NormalizeObject(RawObject{Name: "Velvet sofa", Category: "sofa", BBox: []float64{0.1, 0.2, 0.5, 0.6}}, "obj_1")
	if err != nil {
		t.Fatalf("NormalizeObject() error = %v", err)
	}
	if obj.ID != "obj_1" {
		t.Errorf("ID = %q, want %q", obj.ID, "obj_1")
	}
	if obj.Label != "Velvet sofa" {
		t.Errorf("Label = %q, want name fallback %q", obj.Label, "Velvet sofa")
	}
	if obj.Category != CategoryFurniture {
		t.Errorf("Category = %q, want %q", obj.Category, CategoryFurniture)
	}

	obj, err = NormalizeObject(RawObject{ID: "x", Label: "sconce", Category: "lighting", BBox: []float64{0.1, 0.1, 0.2, 0.2}}, "fallback")
	if err != nil {
		t.Fatalf("NormalizeObject() error = %v", err)
	}
	if obj.ID != "x" || obj.Category != CategoryLighting {
		t.Errorf("NormalizeObject() = %+v, want id x and lighting", obj)
	}
}

func TestNormalizeObject_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  RawObject
		want string
	}{
		{"missing bbox", RawObject{Label: "sofa"}, "4 coordinates"},
		{"missing label", RawObject{BBox: []float64{0.1, 0.1, 0.2, 0.2}}, "label is empty"},
		{"unordered bbox", RawObject{Label: "sofa", BBox: []float64{0.5, 0.1, 0.2, 0.2}}, "less than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeObject(tt.raw, "id")
			if err == nil {
				t.Fatal("NormalizeObject() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCatalogValidate_DuplicateID(t *testing.T) {
	c := sceneCatalog()
	c[1].ID = c[0].ID
	if err := c.Validate(); err == nil {
		t.Error("Validate() error = nil, want duplicate id error")
	}
	if err := sceneCatalog().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestCatalogClone(t *testing.T) {
	c := sceneCatalog()
	clone := c.Clone()
	clone[0].Label = "sectional"
	if c[0].Label != "sofa" {
		t.Errorf("Clone() shares storage: original label = %q", c[0].Label)
	}
	if !c.Equal(sceneCatalog()) {
		t.Error("Equal() = false for identical catalogs")
	}
	if c.Equal(clone) {
		t.Error("Equal() = true for different catalogs")
	}
}

func TestNormalizeCatalog(t *testing.T) {
	got, err := NormalizeCatalog([]RawObject{
		{Name: "sofa", BBox: []float64{0.1, 0.1, 0.4, 0.4}},
		{ID: "lamp-7", Label: "floor lamp", Category: "lighting", BBox: []float64{0.6, 0.1, 0.7, 0.5}},
	})
	if err != nil {
		t.Fatalf("NormalizeCatalog() error = %v", err)
	}
	if got[0].ID != "obj_1" || got[0].Label != "sofa" || got[1].ID != "lamp-7" {
		t.Errorf("NormalizeCatalog() = %+v", got)
	}

	bad := [][]RawObject{
		{{Label: "sofa"}},
		{{ID: "a", Label: "x", BBox: []float64{0, 0, 0.1, 0.1}}, {ID: "a", Label: "y", BBox: []float64{0, 0, 0.2, 0.2}}},
	}
	for _, raws := range bad {
		var verr *ValidationError
		if _, err := NormalizeCatalog(raws); !errors.As(err, &verr) {
			t.Errorf("NormalizeCatalog(%+v) error = %v, want *ValidationError", raws, err)
		}
	}
}
