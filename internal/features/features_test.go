package features

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStripeImage creates vertical black/white stripes of the given width.
func createStripeImage(width, height, stripe int) *image.RGBA {
	img := createTestImage(width, height, color.Black)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/stripe)%2 == 1 {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestGeometry(t *testing.T) {
	g := Geometry{PixelsPerCell: 8, CellsPerBlock: 2, WindowSize: 64}
	if g.CellsPerWindow() != 8 {
		t.Errorf("CellsPerWindow: got %d, want 8", g.CellsPerWindow())
	}
	if g.BlocksPerWindow() != 7 {
		t.Errorf("BlocksPerWindow: got %d, want 7", g.BlocksPerWindow())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := []Geometry{
		{PixelsPerCell: 0, CellsPerBlock: 2, WindowSize: 64},
		{PixelsPerCell: 8, CellsPerBlock: 9, WindowSize: 64},
	}
	for _, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("expected error for %+v", b)
		}
	}
}

func TestDense_Window(t *testing.T) {
	d := NewDense(2, 3, 4, 2)
	for i := range d.Data {
		d.Data[i] = float64(i)
	}

	// Block (bx=1, by=2) of channel 1.
	if diff := cmp.Diff([]float64{42, 43}, d.Block(1, 2, 1)); diff != "" {
		t.Errorf("Block mismatch (-want +got):\n%s", diff)
	}

	got := d.Window(1, 2, 2)
	want := []float64{
		// channel 0, rows 1-2, cols 2-3
		12, 13, 14, 15,
		20, 21, 22, 23,
		// channel 1
		36, 37, 38, 39,
		44, 45, 46, 47,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Window mismatch (-want +got):\n%s", diff)
	}

	// Window returns a copy.
	got[0] = -1
	if d.Data[12] != 12 {
		t.Error("Window must not alias the tensor")
	}
}

func TestNewDense_NegativeExtents(t *testing.T) {
	d := NewDense(3, -2, 5, 36)
	if d.BlocksY != 0 || len(d.Data) != 0 {
		t.Errorf("expected empty tensor, got %d rows, %d values", d.BlocksY, len(d.Data))
	}
}

func TestHOG_DenseShape(t *testing.T) {
	h, err := NewHOG(DefaultHOGParams(), nil)
	if err != nil {
		t.Fatalf("NewHOG failed: %v", err)
	}

	d, err := h.Dense(createStripeImage(100, 70, 4))
	if err != nil {
		t.Fatalf("Dense failed: %v", err)
	}

	// 12x8 cells -> 11x7 blocks of 2*2*9 values, 3 channels.
	if d.Channels != 3 || d.BlocksX != 11 || d.BlocksY != 7 || d.BlockLen != 36 {
		t.Errorf("shape: got %dx%dx%dx%d", d.Channels, d.BlocksY, d.BlocksX, d.BlockLen)
	}
	if len(d.Data) != 3*7*11*36 {
		t.Errorf("data length: got %d", len(d.Data))
	}
}

func TestHOG_DenseTooSmall(t *testing.T) {
	h, _ := NewHOG(DefaultHOGParams(), nil)

	d, err := h.Dense(createTestImage(12, 40, color.White))
	if err != nil {
		t.Fatalf("Dense failed: %v", err)
	}
	if d.BlocksX != 0 || len(d.Data) != 0 {
		t.Errorf("expected no blocks, got %d", d.BlocksX)
	}
}

func TestHOG_UniformImageHasNoGradient(t *testing.T) {
	h, _ := NewHOG(DefaultHOGParams(), nil)

	d, _ := h.Dense(createTestImage(32, 32, color.RGBA{90, 120, 30, 255}))
	for i, v := range d.Data {
		if v != 0 {
			t.Fatalf("value %d: got %v, want 0", i, v)
		}
	}
}

func TestHOG_VerticalStripesVoteHorizontalGradient(t *testing.T) {
	p := DefaultHOGParams()
	p.Grayscale = true
	h, _ := NewHOG(p, nil)

	d, _ := h.Dense(createStripeImage(32, 32, 4))
	block := d.Block(0, 1, 1)

	// Gradients are horizontal (0 degrees) so all energy lands in bin 0 of each cell.
	for i, v := range block {
		if i%p.Orientations != 0 && v != 0 {
			t.Errorf("bin %d: got %v, want 0", i, v)
		}
	}
	if n := math.Sqrt(floatsDot(block, block)); math.Abs(n-1) > 1e-6 {
		t.Errorf("block norm: got %v, want 1", n)
	}
}

func floatsDot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestHOG_VectorsLength(t *testing.T) {
	p := DefaultHOGParams()
	h, _ := NewHOG(p, nil)

	d, _ := h.Dense(createStripeImage(64, 64, 8))
	n := p.BlocksPerWindow()
	patch := Patch{Image: createStripeImage(64, 64, 8), Dense: d.Window(0, 0, n)}

	vs, err := h.Vectors([]Patch{patch, patch})
	if err != nil {
		t.Fatalf("Vectors failed: %v", err)
	}
	if len(vs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vs))
	}
	if len(vs[0]) != p.VectorLen() {
		t.Errorf("vector length: got %d, want %d", len(vs[0]), p.VectorLen())
	}

	// Color histogram of a black/white image: half the pixels in the first
	// bin and half in the last, per channel.
	spatial := 3 * p.SpatialSize * p.SpatialSize
	hist := vs[0][spatial : spatial+3*p.HistogramBins]
	if hist[0] != 0.5 || hist[p.HistogramBins-1] != 0.5 {
		t.Errorf("red histogram ends: got %v, %v", hist[0], hist[p.HistogramBins-1])
	}
}

func TestHOG_ScalerLengthChecked(t *testing.T) {
	p := DefaultHOGParams()
	_, err := NewHOG(p, &Scaler{Mean: []float64{0}, Scale: []float64{1}})
	if !errors.Is(err, ErrLength) {
		t.Errorf("expected ErrLength, got %v", err)
	}
}

func TestScaler_Transform(t *testing.T) {
	s := &Scaler{Mean: []float64{1, 2, 3}, Scale: []float64{2, 0, 0.5}}
	v := []float64{3, 5, 4}

	if err := s.Transform(v); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 3, 2}, v); diff != "" {
		t.Errorf("Transform mismatch (-want +got):\n%s", diff)
	}

	if err := s.Transform([]float64{1}); !errors.Is(err, ErrLength) {
		t.Errorf("expected ErrLength, got %v", err)
	}
}

func TestScaler_Validate(t *testing.T) {
	if err := (&Scaler{Mean: []float64{1}, Scale: nil}).Validate(); err == nil {
		t.Error("expected mismatch error")
	}
}
