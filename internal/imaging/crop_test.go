package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createInMemoryImage creates a solid-color test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	got, err := Region(img, image.Rect(50, 0, 100, 40))
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 50, 40) {
		t.Errorf("bounds: got %v, want 50x40 at origin", got.Bounds())
	}
	if r, g, b := rgb8(got, 10, 10); r != 0 || g != 255 || b != 0 {
		t.Errorf("region color: got (%d,%d,%d), want green", r, g, b)
	}
}

func TestRegion_Invalid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"x1 negative", image.Rect(-1, 0, 50, 50)},
		{"x2 too large", image.Rect(0, 0, 101, 50)},
		{"y2 too large", image.Rect(0, 0, 50, 101)},
		{"zero area", image.Rect(50, 50, 50, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Region(img, tt.r); err == nil {
				t.Error("Region should fail")
			}
		})
	}
}

func TestRescale(t *testing.T) {
	img := createInMemoryImage(120, 90, color.RGBA{0, 0, 255, 255})

	tests := []struct {
		scale        float64
		wantW, wantH int
	}{
		{1, 120, 90},
		{2, 60, 45},
		{1.3, 92, 69},
		{0.5, 240, 180},
		{200, 0, 0},
	}

	for _, tt := range tests {
		got := Rescale(img, tt.scale)
		if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
			t.Errorf("Rescale(%v): got %dx%d, want %dx%d",
				tt.scale, got.Bounds().Dx(), got.Bounds().Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestPatch(t *testing.T) {
	img := createPatternImage(100, 100)

	same := Patch(img, image.Rect(0, 0, 16, 16), 16)
	if same.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("same-size patch bounds: got %v", same.Bounds())
	}

	grown := Patch(img, image.Rect(60, 60, 68, 68), 16)
	if grown.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("resized patch bounds: got %v", grown.Bounds())
	}
	if r, g, b := rgb8(grown, 8, 8); r != 255 || g != 255 || b != 255 {
		t.Errorf("resized patch color: got (%d,%d,%d), want white", r, g, b)
	}
}

func TestEncode(t *testing.T) {
	img := createPatternImage(40, 20)

	enc, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if enc.Width != 40 || enc.Height != 20 || enc.MimeType != "image/png" {
		t.Errorf("unexpected metadata: %+v", enc)
	}

	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if r, g, b := rgb8(decoded, 30, 15); r != 255 || g != 255 || b != 255 {
		t.Errorf("decoded color: got (%d,%d,%d), want white", r, g, b)
	}
}
