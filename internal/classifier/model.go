package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/car-finder/internal/features"
)

// Model is the on-disk description of a trained linear vehicle classifier.
type Model struct {
	Features features.HOGParams `yaml:"features"`
	Scaler   *features.Scaler   `yaml:"scaler,omitempty"`
	Weights  []float64          `yaml:"weights"`
	Bias     float64            `yaml:"bias"`
}

// Validate checks that the scaler and weights match the feature length.
func (m *Model) Validate() error {
	if err := m.Features.Validate(); err != nil {
		return err
	}
	n := m.Features.VectorLen()
	if len(m.Weights) != n {
		return fmt.Errorf("%w: model has %d weights, features produce %d", features.ErrLength, len(m.Weights), n)
	}
	if m.Scaler != nil {
		if err := m.Scaler.Validate(); err != nil {
			return err
		}
		if m.Scaler.Len() != n {
			return fmt.Errorf("%w: scaler has %d features, features produce %d", features.ErrLength, m.Scaler.Len(), n)
		}
	}
	return nil
}

// Builder returns the feature builder the model was trained with.
func (m *Model) Builder() (*features.HOG, error) {
	return features.NewHOG(m.Features, m.Scaler)
}

// Classifier returns the model's linear scorer.
func (m *Model) Classifier() *Linear {
	return &Linear{Weights: m.Weights, Bias: m.Bias}
}

// Load reads and validates a model file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	m := &Model{Features: features.DefaultHOGParams()}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return m, nil
}

// Save writes the model as YAML.
func (m *Model) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
