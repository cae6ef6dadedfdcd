package geometry

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// DrawRectangles strokes the outline of every rectangle onto a copy of img.
//
// The outline is centered on the rectangle's edges and is thickness pixels
// wide. img is not modified. Frames are expected to have their origin at (0, 0).
func DrawRectangles(img image.Image, rects []Rectangle, c color.Color, thickness float64) *image.RGBA {
	dc := gg.NewContextForImage(img)
	if thickness <= 0 {
		thickness = 1
	}
	dc.SetColor(c)
	dc.SetLineWidth(thickness)
	for _, r := range rects {
		dc.DrawRectangle(float64(r.X1), float64(r.Y1), float64(r.Width()), float64(r.Height()))
		dc.Stroke()
	}
	return dc.Image().(*image.RGBA)
}
