package roomedit

import (
	"errors"
	"testing"
)

func TestCarryForward_KeepsCatalog(t *testing.T) {
	s0 := sceneState()
	s1 := CarryForward(s0, "s3://rooms/s1.png")
	if !s1.Catalog.Equal(s0.Catalog) {
		t.Errorf("S1 catalog = %+v, want %+v", s1.Catalog, s0.Catalog)
	}
	if s1.CatalogStatus != CatalogInherited || s1.Parent != s0.Image {
		t.Errorf("S1 = %+v, want inherited from %s", s1, s0.Image)
	}
	s1.Catalog[0].Label = "sectional"
	if s0.Catalog[0].Label != "sofa" {
		t.Error("CarryForward() aliases the previous catalog")
	}
}

func TestRegenerated_InvalidatesCatalog(t *testing.T) {
	s := Regenerated("s3://rooms/new.png", "s3://rooms/s0.png")
	if s.HasCatalog() || s.CatalogStatus != CatalogPending {
		t.Errorf("Regenerated() = %+v, want an empty pending catalog", s)
	}
}

func TestWithDetection(t *testing.T) {
	base := Regenerated("img", "")
	tests := []struct {
		name       string
		result     DetectionResult
		wantStatus CatalogStatus
		wantLen    int
	}{
		{"found", Found(sceneCatalog()), CatalogDetected, 2},
		{"empty", Found(nil), CatalogDetected, 0},
		{"failed", Failed(errors.New("timeout")), CatalogPending, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithDetection(base, tt.result)
			if got.CatalogStatus != tt.wantStatus || len(got.Catalog) != tt.wantLen {
				t.Errorf("WithDetection() = %+v, want %s with %d objects", got, tt.wantStatus, tt.wantLen)
			}
		})
	}
	if base.CatalogStatus != CatalogPending {
		t.Error("WithDetection() modified its input")
	}
}
