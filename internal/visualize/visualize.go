package visualize

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/car-finder/internal/geometry"
	"github.com/ironsheep/car-finder/internal/heatmap"
)

// Mode selects what Render draws.
type Mode string

const (
	// Cars draws detections only.
	Cars Mode = "cars"
	// Windows adds the heat map overlay and every candidate window.
	Windows Mode = "windows"
)

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Cars, Windows:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown visualization %q: must be %q or %q", s, Cars, Windows)
}

// Style holds the colors and line widths of a rendering.
type Style struct {
	Box             color.Color
	BoxThickness    float64
	Window          color.Color
	WindowThickness float64
	// Heat is the color of the hottest cell; colder cells fade to black.
	Heat        colorful.Color
	HeatOpacity float64
}

// DefaultStyle returns green 6 px detection boxes, dark blue 1 px candidate
// windows and a red heat ramp at 60% opacity.
func DefaultStyle() Style {
	return Style{
		Box:             color.RGBA{0, 255, 0, 255},
		BoxThickness:    6,
		Window:          color.RGBA{0, 0, 180, 255},
		WindowThickness: 1,
		Heat:            colorful.Color{R: 1},
		HeatOpacity:     0.6,
	}
}

// ParseColor parses a "#rrggbb" hex color.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// Input is what a frame's rendering is built from.
type Input struct {
	Detections []geometry.Rectangle
	Candidates []geometry.Rectangle
	// Heat is the fused heat map. Only windows mode reads it.
	Heat *heatmap.Heatmap
	// HighThreshold is the effective high threshold the heat map is clamped at.
	HighThreshold float64
}

// Render draws in onto a copy of frame.
func Render(frame image.Image, in Input, mode Mode, style Style) *image.RGBA {
	out := geometry.DrawRectangles(frame, in.Detections, style.Box, style.BoxThickness)
	if mode != Windows {
		return out
	}

	var base image.Image = out
	if in.Heat != nil {
		heat := HeatImage(in.Heat, in.HighThreshold, style.Heat)
		base = imaging.Overlay(out, heat, image.Pt(0, 0), style.HeatOpacity)
	}
	return geometry.DrawRectangles(base, in.Candidates, style.Window, style.WindowThickness)
}

// HeatImage maps h, clamped at limit and min-max normalized, onto a ramp
// from black to hot. Levels are quantized to 8 bits. A uniform map renders
// black.
func HeatImage(h *heatmap.Heatmap, limit float64, hot colorful.Color) *image.NRGBA {
	clamped := h.Clone().Clamp(limit)
	lo, hi := clamped.Min(), clamped.Max()

	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	black := colorful.Color{}
	img := image.NewNRGBA(image.Rect(0, 0, h.Width(), h.Height()))
	for y := 0; y < h.Height(); y++ {
		for x := 0; x < h.Width(); x++ {
			level := uint8((clamped.At(x, y) - lo) * scale)
			r, g, b := black.BlendRgb(hot, float64(level)/255).RGB255()
			img.SetNRGBA(x, y, color.NRGBA{r, g, b, 255})
		}
	}
	return img
}
