package heatmap

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/car-finder/internal/geometry"
)

// ErrEmpty is returned when there is no heat map to combine.
var ErrEmpty = errors.New("no heat maps")

// Heatmap is a per-pixel accumulator of classifier confidence.
type Heatmap struct {
	m *mat.Dense
}

// New returns a zeroed heat map of the given size. Width and height must be positive.
func New(width, height int) *Heatmap {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("heatmap: invalid size %dx%d", width, height))
	}
	return &Heatmap{m: mat.NewDense(height, width, nil)}
}

// FromWindows builds a heat map by adding every window's score over the cells
// its rectangle covers.
func FromWindows(windows []geometry.ScoredWindow, width, height int) *Heatmap {
	h := New(width, height)
	for _, w := range windows {
		h.AddRect(w.Rect, w.Score)
	}
	return h
}

// Width returns the number of columns.
func (h *Heatmap) Width() int {
	_, c := h.m.Dims()
	return c
}

// Height returns the number of rows.
func (h *Heatmap) Height() int {
	r, _ := h.m.Dims()
	return r
}

// SameSize reports whether o has the same dimensions as h.
func (h *Heatmap) SameSize(o *Heatmap) bool {
	return h.Width() == o.Width() && h.Height() == o.Height()
}

// At returns the value at column x, row y.
func (h *Heatmap) At(x, y int) float64 {
	return h.m.At(y, x)
}

// AddRect adds score to every cell in [X1,X2) x [Y1,Y2), clipped to the map.
func (h *Heatmap) AddRect(r geometry.Rectangle, score float64) {
	x1, y1 := max(r.X1, 0), max(r.Y1, 0)
	x2, y2 := min(r.X2, h.Width()), min(r.Y2, h.Height())
	for y := y1; y < y2; y++ {
		row := h.m.RawRowView(y)
		for x := x1; x < x2; x++ {
			row[x] += score
		}
	}
}

// Clamp caps every cell at limit, in place, and returns h.
func (h *Heatmap) Clamp(limit float64) *Heatmap {
	h.m.Apply(func(_, _ int, v float64) float64 {
		if v > limit {
			return limit
		}
		return v
	}, h.m)
	return h
}

// Thresholded returns a copy of h with every cell below low set to zero.
func (h *Heatmap) Thresholded(low float64) *Heatmap {
	out := h.Clone()
	out.m.Apply(func(_, _ int, v float64) float64 {
		if v < low {
			return 0
		}
		return v
	}, out.m)
	return out
}

// Clone returns a deep copy.
func (h *Heatmap) Clone() *Heatmap {
	return &Heatmap{m: mat.DenseCopyOf(h.m)}
}

// Add accumulates o into h element-wise. The maps must have the same size.
func (h *Heatmap) Add(o *Heatmap) error {
	if !h.SameSize(o) {
		return fmt.Errorf("heatmap size mismatch: %dx%d vs %dx%d", h.Width(), h.Height(), o.Width(), o.Height())
	}
	h.m.Add(h.m, o.m)
	return nil
}

// Min returns the smallest cell value.
func (h *Heatmap) Min() float64 {
	return mat.Min(h.m)
}

// Max returns the largest cell value.
func (h *Heatmap) Max() float64 {
	return mat.Max(h.m)
}

// Sum returns the element-wise sum of maps as a new heat map. It returns
// ErrEmpty when maps is empty.
func Sum(maps ...*Heatmap) (*Heatmap, error) {
	if len(maps) == 0 {
		return nil, ErrEmpty
	}
	out := maps[0].Clone()
	for _, m := range maps[1:] {
		if err := out.Add(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}
