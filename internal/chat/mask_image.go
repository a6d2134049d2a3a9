package chat

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/fpang/roomedit/internal/roomedit"
)

// RenderMask draws rect as a hard-edged white rectangle on a black canvas of
// size and encodes it as PNG. White pixels are the editable region.
func RenderMask(size roomedit.Size, rect roomedit.MaskRect) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("invalid mask canvas %s", size)
	}
	canvas := image.Rect(0, 0, size.Width, size.Height)
	region := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height).Intersect(canvas)
	if region.Empty() {
		return nil, fmt.Errorf("mask %+v lies outside the %s canvas", rect, size)
	}

	mask := image.NewGray(canvas)
	draw.Draw(mask, canvas, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(mask, region, image.NewUniform(color.White), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, mask); err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	return buf.Bytes(), nil
}
