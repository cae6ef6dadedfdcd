package search

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/car-finder/internal/classifier"
	"github.com/ironsheep/car-finder/internal/features"
	"github.com/ironsheep/car-finder/internal/geometry"
	"github.com/ironsheep/car-finder/internal/imaging"
)

// ErrInvalidParams is returned for a malformed search request.
var ErrInvalidParams = errors.New("invalid search parameters")

// Params selects the frame region, scale and overlap of one search.
// The region is [XStart, XStop) x [YStart, YStop).
type Params struct {
	XStart  int     `json:"x_start"`
	XStop   int     `json:"x_stop"`
	YStart  int     `json:"y_start"`
	YStop   int     `json:"y_stop"`
	Scale   float64 `json:"scale"`
	Overlap float64 `json:"overlap"`
}

// Validate checks the region is ordered and non-negative, scale is positive
// and overlap lies in [0, 1).
func (p Params) Validate() error {
	switch {
	case p.XStart < 0 || p.YStart < 0:
		return fmt.Errorf("%w: negative region start (%d,%d)", ErrInvalidParams, p.XStart, p.YStart)
	case p.XStart >= p.XStop:
		return fmt.Errorf("%w: x range [%d, %d) is empty", ErrInvalidParams, p.XStart, p.XStop)
	case p.YStart >= p.YStop:
		return fmt.Errorf("%w: y range [%d, %d) is empty", ErrInvalidParams, p.YStart, p.YStop)
	case !(p.Scale > 0) || math.IsInf(p.Scale, 0):
		return fmt.Errorf("%w: scale %v must be positive", ErrInvalidParams, p.Scale)
	case !(p.Overlap >= 0 && p.Overlap < 1):
		return fmt.Errorf("%w: overlap %v must be in [0, 1)", ErrInvalidParams, p.Overlap)
	}
	return nil
}

// Region returns the searched frame region.
func (p Params) Region() image.Rectangle {
	return image.Rect(p.XStart, p.YStart, p.XStop, p.YStop)
}

// BlockStep returns how many blocks apart adjacent windows are:
// round((1 - overlap) * blocksPerWindow), never less than 1.
func BlockStep(overlap float64, blocksPerWindow int) int {
	return max(1, int(math.Round((1-overlap)*float64(blocksPerWindow))))
}

// Result holds the windows of one search.
type Result struct {
	// Windows are the windows scoring above zero, in search order.
	Windows []geometry.ScoredWindow
	// Candidates are every window examined, in search order.
	Candidates []geometry.Rectangle
}

// Searcher runs window searches with a fixed feature builder and classifier.
// It holds no mutable state and may be used from several goroutines when
// its collaborators allow it.
type Searcher struct {
	builder    features.Builder
	classifier classifier.Classifier
}

// New returns a Searcher.
func New(builder features.Builder, clf classifier.Classifier) *Searcher {
	return &Searcher{builder: builder, classifier: clf}
}

// Search scans one region of frame. The region must lie inside the frame.
func (s *Searcher) Search(frame image.Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	crop, err := imaging.Region(frame, p.Region())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	scaled := imaging.Rescale(crop, p.Scale)

	dense, err := s.builder.Dense(scaled)
	if err != nil {
		return nil, fmt.Errorf("dense features: %w", err)
	}

	g := s.builder.Geometry()
	perWindow := g.BlocksPerWindow()
	step := BlockStep(p.Overlap, perWindow)
	size := int(float64(g.WindowSize) * p.Scale)

	var (
		rects   []geometry.Rectangle
		patches []features.Patch
	)
	for bx := 0; bx+perWindow <= dense.BlocksX; bx += step {
		for by := 0; by+perWindow <= dense.BlocksY; by += step {
			left, top := bx*g.PixelsPerCell, by*g.PixelsPerCell

			patch := imaging.Patch(scaled, image.Rect(left, top, left+g.WindowSize, top+g.WindowSize), g.WindowSize)
			patches = append(patches, features.Patch{
				Image: patch,
				Dense: dense.Window(by, bx, perWindow),
			})

			x := int(float64(left)*p.Scale) + p.XStart
			y := int(float64(top)*p.Scale) + p.YStart
			rects = append(rects, geometry.Rectangle{X1: x, Y1: y, X2: x + size, Y2: y + size})
		}
	}

	res := &Result{Candidates: rects}
	if len(rects) == 0 {
		return res, nil
	}

	X, err := s.builder.Vectors(patches)
	if err != nil {
		return nil, fmt.Errorf("feature vectors: %w", err)
	}
	scores, err := s.classifier.DecisionFunction(X)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	if len(scores) != len(rects) {
		return nil, fmt.Errorf("classifier returned %d scores for %d windows", len(scores), len(rects))
	}

	for i, score := range scores {
		if score > 0 {
			res.Windows = append(res.Windows, geometry.ScoredWindow{Rect: rects[i], Score: score})
		}
	}
	return res, nil
}
