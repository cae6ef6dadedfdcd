package features

import (
	"errors"
	"fmt"
	"image"
)

// ErrLength is returned when a vector's length does not match what a
// scaler or model expects.
var ErrLength = errors.New("feature length mismatch")

// Geometry describes the fixed sizes a Builder computes features with.
type Geometry struct {
	// PixelsPerCell is the edge of one square cell in pixels.
	PixelsPerCell int `yaml:"pixels_per_cell"`
	// CellsPerBlock is the edge of one square block in cells.
	CellsPerBlock int `yaml:"cells_per_block"`
	// WindowSize is the edge of the classifier's square input in pixels.
	WindowSize int `yaml:"window_size"`
}

// CellsPerWindow is the number of cells along one window edge.
func (g Geometry) CellsPerWindow() int {
	return g.WindowSize / g.PixelsPerCell
}

// BlocksPerWindow is the number of block positions along one window edge.
func (g Geometry) BlocksPerWindow() int {
	return g.CellsPerWindow() - g.CellsPerBlock + 1
}

// Validate checks the sizes are positive and a window holds at least one block.
func (g Geometry) Validate() error {
	if g.PixelsPerCell <= 0 || g.CellsPerBlock <= 0 || g.WindowSize <= 0 {
		return fmt.Errorf("invalid feature geometry %+v: sizes must be positive", g)
	}
	if g.BlocksPerWindow() < 1 {
		return fmt.Errorf("invalid feature geometry %+v: window smaller than one block", g)
	}
	return nil
}

// Patch is one window's input to Builder.Vectors.
type Patch struct {
	// Image is the window's pixels, WindowSize x WindowSize.
	Image image.Image
	// Dense is the window's slice of the region's dense tensor.
	Dense []float64
}

// Builder produces feature vectors for the classifier.
type Builder interface {
	// Geometry returns the builder's fixed sizes.
	Geometry() Geometry
	// Dense computes the block tensor for a whole image region.
	Dense(img image.Image) (*Dense, error)
	// Vectors returns one feature vector per patch, in order.
	Vectors(patches []Patch) ([][]float64, error)
}
