package roomedit

import (
	"fmt"
	"math"
)

// PaddingRatio is how far each side of a bbox is pushed out, as a fraction
// of the box dimension on that axis. 7.5% is the midpoint of the 5–10% range
// that keeps object edges inside the mask without eating the neighbors.
const PaddingRatio = 0.075

// MaxMaskAreaRatio is the normalized area at or above which a target is too
// large for a targeted edit.
const MaxMaskAreaRatio = 0.30

// DefaultResolution is the square canvas size used when none is configured.
const DefaultResolution = 1024

// CheckMaskArea rejects a target whose unpadded normalized bbox covers
// MaxMaskAreaRatio of the image or more. It runs before any mask is built.
func CheckMaskArea(label string, b BBox) error {
	area := b.Clamp().Area()
	if area < MaxMaskAreaRatio {
		return nil
	}
	pct := math.Round(area*1000) / 10
	return &ValidationError{
		Reason:      fmt.Sprintf("target covers %.1f%% of the image; targeted edits are limited to %.0f%%", pct, MaxMaskAreaRatio*100),
		Suggestion:  "Pick a smaller object or ask to regenerate the room",
		Target:      label,
		AreaPercent: pct,
	}
}

// BuildMask converts a normalized bbox into a padded pixel rectangle on a
// resolution x resolution canvas.
//
// The box is clamped into [0,1], padded by PaddingRatio of its own width and
// height on every side, clamped again, scaled and rounded to pixels, and
// finally clamped to the canvas with a 1px minimum width and height.
func BuildMask(b BBox, resolution int) MaskRect {
	if resolution < 1 {
		resolution = DefaultResolution
	}
	b = b.Clamp()
	padX := b.Width() * PaddingRatio
	padY := b.Height() * PaddingRatio
	padded := BBox{b[0] - padX, b[1] - padY, b[2] + padX, b[3] + padY}.Clamp()

	res := float64(resolution)
	left := int(math.Round(padded[0] * res))
	top := int(math.Round(padded[1] * res))
	right := int(math.Round(padded[2] * res))
	bottom := int(math.Round(padded[3] * res))

	left = clampInt(left, 0, resolution-1)
	top = clampInt(top, 0, resolution-1)
	right = clampInt(right, left+1, resolution)
	bottom = clampInt(bottom, top+1, resolution)

	return MaskRect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
