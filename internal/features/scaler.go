package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Scaler standardizes feature vectors with the per-feature mean and scale
// learned at training time: x' = (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
}

// Len returns the number of features the scaler was fitted on.
func (s *Scaler) Len() int {
	return len(s.Mean)
}

// Validate checks Mean and Scale have the same length.
func (s *Scaler) Validate() error {
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: scaler mean has %d values, scale has %d", ErrLength, len(s.Mean), len(s.Scale))
	}
	return nil
}

// Transform standardizes v in place. A zero scale leaves the centered value
// unscaled, matching constant features at training time.
func (s *Scaler) Transform(v []float64) error {
	if len(v) != len(s.Mean) || len(v) != len(s.Scale) {
		return fmt.Errorf("%w: got %d features, scaler expects %d", ErrLength, len(v), len(s.Mean))
	}
	floats.Sub(v, s.Mean)
	for i, sc := range s.Scale {
		if sc != 0 {
			v[i] /= sc
		}
	}
	return nil
}
