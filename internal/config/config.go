// Package config holds the tuning of a car finder: the search windows, the
// x range they share, and the heat map thresholds and history.
//
// Configuration is a plain value passed to finder.New. Several finders with
// different configurations can run side by side.
//
// Files are YAML:
//
//	x_start: 0
//	x_stop: 1280
//	windows:
//	  - {y_start: 380, y_stop: 500, scale: 1.0, overlap: 0.75}
//	  - {y_start: 380, y_stop: 550, scale: 1.3, overlap: 0.625}
//	  - {y_start: 380, y_stop: 600, scale: 2.2, overlap: 0.75}
//	thresh_low: 0.1
//	thresh_high: 0.25
//	max_frame_heat: 0   # 0 derives 1.5 * thresh_high
//	history: 16
//	connectivity: 4
//	visualization: cars
//	box_color: "#00ff00"
//	window_color: "#0000b4"
//	model: models/linear.yaml
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/car-finder/internal/search"
	"github.com/ironsheep/car-finder/internal/visualize"
)

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Visualization modes.
const (
	// VizCars draws accepted detections only.
	VizCars = "cars"
	// VizWindows also blends the heat map and draws every candidate window.
	VizWindows = "windows"
)

// SearchWindow is one search band: a y range searched at one scale and overlap.
type SearchWindow struct {
	YStart  int     `yaml:"y_start" json:"y_start"`
	YStop   int     `yaml:"y_stop" json:"y_stop"`
	Scale   float64 `yaml:"scale" json:"scale"`
	Overlap float64 `yaml:"overlap" json:"overlap"`
}

// Config is the complete tuning of one car finder.
type Config struct {
	// XStart and XStop bound every search band horizontally, [XStart, XStop).
	XStart int `yaml:"x_start" json:"x_start"`
	XStop  int `yaml:"x_stop" json:"x_stop"`

	Windows []SearchWindow `yaml:"windows" json:"windows"`

	// ThreshLow and ThreshHigh are per-frame fractions. The effective
	// thresholds are these values times the number of fused heat maps.
	ThreshLow  float64 `yaml:"thresh_low" json:"thresh_low"`
	ThreshHigh float64 `yaml:"thresh_high" json:"thresh_high"`

	// MaxFrameHeat caps every cell of one frame's heat map. Zero means
	// 1.5 * ThreshHigh.
	MaxFrameHeat float64 `yaml:"max_frame_heat" json:"max_frame_heat"`

	// History is the number of frame heat maps fused in streaming mode.
	History int `yaml:"history" json:"history"`

	// Connectivity is 4 or 8.
	Connectivity int `yaml:"connectivity" json:"connectivity"`

	// Workers bounds how many search bands run at once. Zero runs them all.
	Workers int `yaml:"workers" json:"workers"`

	Visualization string `yaml:"visualization" json:"visualization"`

	// BoxColor and WindowColor are "#rrggbb" outline colors for detections
	// and candidate windows. Empty keeps the default style.
	BoxColor    string `yaml:"box_color,omitempty" json:"box_color,omitempty"`
	WindowColor string `yaml:"window_color,omitempty" json:"window_color,omitempty"`

	// Model is the path of the classifier model file.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
}

// Default returns the tuning used for 1280x720 road footage.
func Default() *Config {
	return &Config{
		XStart: 0,
		XStop:  1280,
		Windows: []SearchWindow{
			{YStart: 380, YStop: 500, Scale: 1.0, Overlap: 6.0 / 8},
			{YStart: 380, YStop: 550, Scale: 1.3, Overlap: 5.0 / 8},
			{YStart: 380, YStop: 600, Scale: 2.2, Overlap: 6.0 / 8},
		},
		ThreshLow:     0.1,
		ThreshHigh:    0.25,
		History:       16,
		Connectivity:  4,
		Visualization: VizCars,
	}
}

// FrameHeatCap returns the effective per-frame heat cap.
func (c *Config) FrameHeatCap() float64 {
	if c.MaxFrameHeat == 0 {
		return 1.5 * c.ThreshHigh
	}
	return c.MaxFrameHeat
}

// SearchParams returns one search request per band, each spanning the shared x range.
func (c *Config) SearchParams() []search.Params {
	params := make([]search.Params, len(c.Windows))
	for i, w := range c.Windows {
		params[i] = search.Params{
			XStart:  c.XStart,
			XStop:   c.XStop,
			YStart:  w.YStart,
			YStop:   w.YStop,
			Scale:   w.Scale,
			Overlap: w.Overlap,
		}
	}
	return params
}

// MinFrameSize returns the smallest frame every band fits in.
func (c *Config) MinFrameSize() (width, height int) {
	for _, w := range c.Windows {
		height = max(height, w.YStop)
	}
	return c.XStop, height
}

// Style returns the default rendering style with the configured colors applied.
func (c *Config) Style() (visualize.Style, error) {
	style := visualize.DefaultStyle()
	if c.BoxColor != "" {
		col, err := visualize.ParseColor(c.BoxColor)
		if err != nil {
			return style, fmt.Errorf("%w: box_color: %v", ErrInvalidConfig, err)
		}
		style.Box = col
	}
	if c.WindowColor != "" {
		col, err := visualize.ParseColor(c.WindowColor)
		if err != nil {
			return style, fmt.Errorf("%w: window_color: %v", ErrInvalidConfig, err)
		}
		style.Window = col
	}
	return style, nil
}

// Validate reports the first unusable setting.
//
// It requires thresh_low <= thresh_high, which is stricter than detection
// needs: with that ordering every region center read from the fused map is
// also above the low threshold.
func (c *Config) Validate() error {
	if len(c.Windows) == 0 {
		return fmt.Errorf("%w: no search windows", ErrInvalidConfig)
	}
	for i, p := range c.SearchParams() {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: window %d: %v", ErrInvalidConfig, i, err)
		}
	}
	switch {
	case c.History < 1:
		return fmt.Errorf("%w: history %d must be at least 1", ErrInvalidConfig, c.History)
	case c.ThreshLow < 0 || c.ThreshHigh < c.ThreshLow:
		return fmt.Errorf("%w: thresholds must satisfy 0 <= low (%v) <= high (%v)", ErrInvalidConfig, c.ThreshLow, c.ThreshHigh)
	case c.MaxFrameHeat < 0:
		return fmt.Errorf("%w: max frame heat %v is negative", ErrInvalidConfig, c.MaxFrameHeat)
	case c.FrameHeatCap() <= 0:
		return fmt.Errorf("%w: frame heat cap must be positive, set max_frame_heat or thresh_high", ErrInvalidConfig)
	case c.Connectivity != 4 && c.Connectivity != 8:
		return fmt.Errorf("%w: connectivity %d must be 4 or 8", ErrInvalidConfig, c.Connectivity)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	case c.Visualization != VizCars && c.Visualization != VizWindows:
		return fmt.Errorf("%w: visualization %q must be %q or %q", ErrInvalidConfig, c.Visualization, VizCars, VizWindows)
	}
	if _, err := c.Style(); err != nil {
		return err
	}
	return nil
}

// Load reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
