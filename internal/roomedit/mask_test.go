package roomedit

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildMask_Padding(t *testing.T) {
	// 0.3 wide: 7.5% padding is 0.0225 a side, so [0.0775, 0.4225] at 1024px.
	got := BuildMask(BBox{0.1, 0.1, 0.4, 0.4}, 1024)
	want := MaskRect{X: 79, Y: 79, Width: 354, Height: 354}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildMask() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMask_ClampsToCanvas(t *testing.T) {
	tests := []struct {
		name string
		b    BBox
		want MaskRect
	}{
		{"full frame", BBox{0, 0, 1, 1}, MaskRect{X: 0, Y: 0, Width: 512, Height: 512}},
		{"out of range input", BBox{-0.5, -0.2, 1.4, 1.1}, MaskRect{X: 0, Y: 0, Width: 512, Height: 512}},
		{"bottom-right sliver", BBox{0.999, 0.999, 1, 1}, MaskRect{X: 511, Y: 511, Width: 1, Height: 1}},
		{"degenerate", BBox{0.5, 0.5, 0.5, 0.5}, MaskRect{X: 256, Y: 256, Width: 1, Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, BuildMask(tt.b, 512)); diff != "" {
				t.Errorf("BuildMask() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildMask_AlwaysInsideCanvas(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, res := range []int{1, 2, 64, 1000, 1024} {
		for i := 0; i < 500; i++ {
			x1, x2 := rng.Float64(), rng.Float64()
			y1, y2 := rng.Float64(), rng.Float64()
			if x1 > x2 {
				x1, x2 = x2, x1
			}
			if y1 > y2 {
				y1, y2 = y2, y1
			}
			m := BuildMask(BBox{x1, y1, x2, y2}, res)
			if m.X < 0 || m.Y < 0 || m.Width < 1 || m.Height < 1 || m.X+m.Width > res || m.Y+m.Height > res {
				t.Fatalf("BuildMask(%v, %d) = %+v, outside canvas", BBox{x1, y1, x2, y2}, res, m)
			}
		}
	}
}

func TestBuildMask_DefaultResolution(t *testing.T) {
	m := BuildMask(BBox{0, 0, 1, 1}, 0)
	if m.Width != DefaultResolution {
		t.Errorf("Width = %d, want %d", m.Width, DefaultResolution)
	}
}

func TestCheckMaskArea(t *testing.T) {
	if err := CheckMaskArea("lamp", BBox{0.6, 0.1, 0.7, 0.3}); err != nil {
		t.Errorf("CheckMaskArea(small) = %v, want nil", err)
	}
	err := CheckMaskArea("sectional", BBox{0, 0, 0.6, 0.6})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CheckMaskArea(large) = %v, want *ValidationError", err)
	}
	if verr.AreaPercent != 36 {
		t.Errorf("AreaPercent = %v, want 36", verr.AreaPercent)
	}
	if verr.Target != "sectional" {
		t.Errorf("Target = %q, want %q", verr.Target, "sectional")
	}
}
