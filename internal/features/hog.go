package features

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
)

// HOGParams configures the reference HOG builder.
type HOGParams struct {
	Geometry `yaml:",inline"`

	// Orientations is the number of unsigned orientation bins over 0-180 degrees.
	Orientations int `yaml:"orientations"`

	// Grayscale computes a single luminance channel instead of one per RGB channel.
	Grayscale bool `yaml:"grayscale"`

	// SpatialSize is the edge the patch is resized to for spatial binning.
	// Zero disables spatial features.
	SpatialSize int `yaml:"spatial_size"`

	// HistogramBins is the number of bins per color channel histogram.
	// Zero disables color histograms.
	HistogramBins int `yaml:"histogram_bins"`
}

// DefaultHOGParams returns 9 orientations, 8 px cells, 2x2 cell blocks and a
// 64 px window, with 16x16 spatial binning and 32-bin color histograms.
func DefaultHOGParams() HOGParams {
	return HOGParams{
		Geometry:      Geometry{PixelsPerCell: 8, CellsPerBlock: 2, WindowSize: 64},
		Orientations:  9,
		SpatialSize:   16,
		HistogramBins: 32,
	}
}

func (p HOGParams) channels() int {
	if p.Grayscale {
		return 1
	}
	return 3
}

// BlockLen is the number of values per block.
func (p HOGParams) BlockLen() int {
	return p.CellsPerBlock * p.CellsPerBlock * p.Orientations
}

// VectorLen is the length of every vector Vectors produces.
func (p HOGParams) VectorLen() int {
	n := p.BlocksPerWindow()
	return 3*p.SpatialSize*p.SpatialSize + 3*p.HistogramBins + p.channels()*n*n*p.BlockLen()
}

// Validate checks the parameters describe a usable builder.
func (p HOGParams) Validate() error {
	if err := p.Geometry.Validate(); err != nil {
		return err
	}
	if p.Orientations <= 0 {
		return fmt.Errorf("invalid HOG orientations %d", p.Orientations)
	}
	if p.SpatialSize < 0 || p.HistogramBins < 0 || p.HistogramBins > 256 {
		return fmt.Errorf("invalid HOG color features: spatial %d, bins %d", p.SpatialSize, p.HistogramBins)
	}
	return nil
}

// HOG is the reference Builder.
type HOG struct {
	params HOGParams
	scaler *Scaler
}

// NewHOG returns a HOG builder. scaler may be nil to skip normalization; when
// set, its length must equal params.VectorLen().
func NewHOG(params HOGParams, scaler *Scaler) (*HOG, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if scaler != nil && scaler.Len() != params.VectorLen() {
		return nil, fmt.Errorf("%w: scaler has %d features, builder produces %d", ErrLength, scaler.Len(), params.VectorLen())
	}
	return &HOG{params: params, scaler: scaler}, nil
}

// Geometry implements Builder.
func (h *HOG) Geometry() Geometry {
	return h.params.Geometry
}

// Dense implements Builder. An image smaller than one block yields an empty tensor.
func (h *HOG) Dense(img image.Image) (*Dense, error) {
	p := h.params
	src := imaging.Clone(img)
	w, ht := src.Bounds().Dx(), src.Bounds().Dy()

	cellsX, cellsY := w/p.PixelsPerCell, ht/p.PixelsPerCell
	nbx, nby := cellsX-p.CellsPerBlock+1, cellsY-p.CellsPerBlock+1
	d := NewDense(p.channels(), nby, nbx, p.BlockLen())
	if d.BlocksX == 0 || d.BlocksY == 0 {
		return d, nil
	}

	for c, plane := range channelPlanes(src, p.Grayscale) {
		cells := cellHistograms(plane, w, ht, cellsX, cellsY, p.PixelsPerCell, p.Orientations)
		for by := 0; by < d.BlocksY; by++ {
			for bx := 0; bx < d.BlocksX; bx++ {
				block := d.Block(c, by, bx)
				i := 0
				for cy := by; cy < by+p.CellsPerBlock; cy++ {
					for cx := bx; cx < bx+p.CellsPerBlock; cx++ {
						o := (cy*cellsX + cx) * p.Orientations
						i += copy(block[i:], cells[o:o+p.Orientations])
					}
				}
				normalizeL2Hys(block)
			}
		}
	}
	return d, nil
}

// Vectors implements Builder.
func (h *HOG) Vectors(patches []Patch) ([][]float64, error) {
	p := h.params
	out := make([][]float64, len(patches))
	for i, patch := range patches {
		src := imaging.Clone(patch.Image)
		v := make([]float64, 0, p.VectorLen())
		if p.SpatialSize > 0 {
			v = appendSpatial(v, src, p.SpatialSize)
		}
		if p.HistogramBins > 0 {
			v = appendHistograms(v, src, p.HistogramBins)
		}
		v = append(v, patch.Dense...)

		if h.scaler != nil {
			if err := h.scaler.Transform(v); err != nil {
				return nil, fmt.Errorf("patch %d: %w", i, err)
			}
		}
		out[i] = v
	}
	return out, nil
}

// channelPlanes splits an image into float planes scaled to 0-1. In
// grayscale mode the single plane uses ITU-R BT.601 luminance weights.
func channelPlanes(img *image.NRGBA, gray bool) [][]float64 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	n := w * h
	if gray {
		plane := make([]float64, n)
		for i := 0; i < n; i++ {
			px := img.Pix[i*4 : i*4+3]
			plane[i] = (0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])) / 255.0
		}
		return [][]float64{plane}
	}

	planes := [][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			planes[c][i] = float64(img.Pix[i*4+c]) / 255.0
		}
	}
	return planes
}

// cellHistograms bins centered-difference gradient magnitudes by unsigned
// orientation for every cell. Border pixels have zero gradient. The result is
// cellsY x cellsX x orientations, each bin averaged over the cell's pixels.
func cellHistograms(plane []float64, w, h, cellsX, cellsY, ppc, orientations int) []float64 {
	hist := make([]float64, cellsX*cellsY*orientations)
	binWidth := 180.0 / float64(orientations)
	norm := 1.0 / float64(ppc*ppc)

	for y := 0; y < cellsY*ppc; y++ {
		for x := 0; x < cellsX*ppc; x++ {
			var gx, gy float64
			if x > 0 && x < w-1 {
				gx = plane[y*w+x+1] - plane[y*w+x-1]
			}
			if y > 0 && y < h-1 {
				gy = plane[(y+1)*w+x] - plane[(y-1)*w+x]
			}
			mag := math.Hypot(gx, gy)
			if mag == 0 {
				continue
			}
			// Unsigned orientation: 180 degrees folds onto 0.
			angle := math.Mod(math.Atan2(gy, gx)*180/math.Pi+180, 180)
			bin := min(int(angle/binWidth), orientations-1)
			cell := (y/ppc)*cellsX + x/ppc
			hist[cell*orientations+bin] += mag * norm
		}
	}
	return hist
}

// normalizeL2Hys applies L2 normalization, clips at 0.2 and renormalizes.
func normalizeL2Hys(v []float64) {
	const eps = 1e-5
	l2 := func() {
		n := floats.Norm(v, 2)
		floats.Scale(1/math.Sqrt(n*n+eps*eps), v)
	}
	l2()
	for i, x := range v {
		if x > 0.2 {
			v[i] = 0.2
		}
	}
	l2()
}

func appendSpatial(v []float64, img *image.NRGBA, size int) []float64 {
	small := imaging.Resize(img, size, size, imaging.Linear)
	for i := 0; i < size*size; i++ {
		px := small.Pix[i*4 : i*4+3]
		v = append(v, float64(px[0])/255.0, float64(px[1])/255.0, float64(px[2])/255.0)
	}
	return v
}

// appendHistograms appends one histogram per RGB channel, each normalized by
// the pixel count.
func appendHistograms(v []float64, img *image.NRGBA, bins int) []float64 {
	hist := make([]float64, 3*bins)
	n := img.Bounds().Dx() * img.Bounds().Dy()
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			hist[c*bins+int(img.Pix[i*4+c])*bins/256]++
		}
	}
	if n > 0 {
		floats.Scale(1/float64(n), hist)
	}
	return append(v, hist...)
}
