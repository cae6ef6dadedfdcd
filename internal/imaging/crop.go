package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Region extracts r from img. r must lie inside the image bounds and be non-empty.
func Region(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, r), nil
}

// Rescale resizes img by 1/scale with bilinear interpolation. Scale 1 returns
// a copy.
func Rescale(img image.Image, scale float64) *image.NRGBA {
	if scale == 1 {
		return imaging.Clone(img)
	}
	w := int(float64(img.Bounds().Dx()) / scale)
	h := int(float64(img.Bounds().Dy()) / scale)
	if w < 1 || h < 1 {
		return &image.NRGBA{}
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// Patch crops r from img and resizes it to a size x size square when it is
// not one already. r is clipped to the image bounds.
func Patch(img image.Image, r image.Rectangle, size int) *image.NRGBA {
	p := imaging.Crop(img, r)
	if p.Bounds().Dx() == size && p.Bounds().Dy() == size {
		return p
	}
	return imaging.Resize(p, size, size, imaging.Linear)
}

// EncodedImage is an image serialized for a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode serializes img as base64 PNG.
func Encode(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
