package classifier

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/car-finder/internal/features"
)

// Classifier returns one decision score per feature vector.
//
// Implementations must be safe for concurrent use.
type Classifier interface {
	DecisionFunction(X [][]float64) ([]float64, error)
}

// Func adapts a plain function to Classifier.
type Func func(X [][]float64) ([]float64, error)

// DecisionFunction implements Classifier.
func (f Func) DecisionFunction(X [][]float64) ([]float64, error) {
	return f(X)
}

// Linear scores a vector x as w.x + b.
type Linear struct {
	Weights []float64
	Bias    float64
}

// DecisionFunction implements Classifier.
func (l *Linear) DecisionFunction(X [][]float64) ([]float64, error) {
	scores := make([]float64, len(X))
	for i, x := range X {
		if len(x) != len(l.Weights) {
			return nil, fmt.Errorf("vector %d: %w: got %d features, model expects %d",
				i, features.ErrLength, len(x), len(l.Weights))
		}
		scores[i] = floats.Dot(l.Weights, x) + l.Bias
	}
	return scores, nil
}
