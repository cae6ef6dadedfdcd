package finder

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/car-finder/internal/classifier"
	"github.com/ironsheep/car-finder/internal/config"
	"github.com/ironsheep/car-finder/internal/features"
	"github.com/ironsheep/car-finder/internal/geometry"
	"github.com/ironsheep/car-finder/internal/heatmap"
	"github.com/ironsheep/car-finder/internal/label"
	"github.com/ironsheep/car-finder/internal/logging"
	"github.com/ironsheep/car-finder/internal/search"
	"github.com/ironsheep/car-finder/internal/visualize"
)

// ErrFrameSize is returned for a frame that does not fit the configured
// search bands or differs in size from earlier frames of the stream.
var ErrFrameSize = errors.New("frame size mismatch")

// Option configures a CarFinder.
type Option func(*CarFinder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *CarFinder) {
		f.logger = l
	}
}

// CarFinder runs the detection pipeline over one stream of frames.
type CarFinder struct {
	cfg      config.Config
	params   []search.Params
	searcher *search.Searcher
	history  *heatmap.History
	conn     label.Connectivity
	mode     visualize.Mode
	style    visualize.Style
	logger   *zap.SugaredLogger
}

// FrameResult is everything one frame produced.
type FrameResult struct {
	// Detections are the accepted region boxes, inclusive of their last pixel.
	Detections []geometry.Rectangle `json:"detections"`
	// Windows are the positive windows of every band, in band order.
	Windows []geometry.ScoredWindow `json:"windows"`
	// Candidates are all windows examined, positive or not.
	Candidates []geometry.Rectangle `json:"candidates"`
	// Heat is the fused heat map.
	Heat *heatmap.Heatmap `json:"-"`
	// Thresholded is Heat with cells below LowThreshold zeroed.
	Thresholded *heatmap.Heatmap `json:"-"`
	// Fused is the number of frame heat maps summed into Heat.
	Fused         int     `json:"fused"`
	LowThreshold  float64 `json:"low_threshold"`
	HighThreshold float64 `json:"high_threshold"`
	// Regions is the number of labeled regions before the center check.
	Regions int `json:"regions"`
}

// New returns a CarFinder. The configuration is copied and validated here,
// so frames never fail on configuration errors.
func New(cfg *config.Config, builder features.Builder, clf classifier.Classifier, opts ...Option) (*CarFinder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if builder == nil || clf == nil {
		return nil, errors.New("car finder needs a feature builder and a classifier")
	}
	conn, err := label.ParseConnectivity(cfg.Connectivity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	mode, err := visualize.ParseMode(cfg.Visualization)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}

	c := *cfg
	c.Windows = append([]config.SearchWindow(nil), cfg.Windows...)
	f := &CarFinder{
		cfg:      c,
		params:   c.SearchParams(),
		searcher: search.New(builder, clf),
		history:  heatmap.NewHistory(c.History),
		conn:     conn,
		mode:     mode,
		style:    style,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Config returns a copy of the finder's configuration.
func (f *CarFinder) Config() config.Config {
	c := f.cfg
	c.Windows = append([]config.SearchWindow(nil), f.cfg.Windows...)
	return c
}

// HistoryLen returns the number of frame heat maps currently retained.
func (f *CarFinder) HistoryLen() int {
	return f.history.Len()
}

// Reset drops the heat map history, as at the start of a new stream.
func (f *CarFinder) Reset() {
	f.history.Reset()
}

// FindCars runs the pipeline on one frame. With single set the frame is
// treated as an independent still image.
func (f *CarFinder) FindCars(frame image.Image, single bool) (*FrameResult, error) {
	if err := f.checkFrame(frame, single); err != nil {
		return nil, err
	}
	width, height := frame.Bounds().Dx(), frame.Bounds().Dy()

	windows, candidates, err := f.searchBands(frame)
	if err != nil {
		return nil, err
	}

	current := heatmap.FromWindows(windows, width, height).Clamp(f.cfg.FrameHeatCap())

	fused, n := current, 1
	if !single {
		f.history.Push(current)
		if fused, err = f.history.Fused(); err != nil {
			return nil, fmt.Errorf("fuse history: %w", err)
		}
		n = f.history.Len()
	}

	low := float64(n) * f.cfg.ThreshLow
	high := float64(n) * f.cfg.ThreshHigh
	thresholded := fused.Thresholded(low)

	detections, regions := ExtractRegions(thresholded, fused, high, f.conn)

	f.logger.Debugw("frame processed",
		"single", single,
		"candidates", len(candidates),
		"windows", len(windows),
		"regions", regions,
		"detections", len(detections),
		"fused", n,
	)

	return &FrameResult{
		Detections:    detections,
		Windows:       windows,
		Candidates:    candidates,
		Heat:          fused,
		Thresholded:   thresholded,
		Fused:         n,
		LowThreshold:  low,
		HighThreshold: high,
		Regions:       regions,
	}, nil
}

// Render draws res onto a copy of frame in the configured visualization mode.
func (f *CarFinder) Render(frame image.Image, res *FrameResult) *image.RGBA {
	return f.RenderMode(frame, res, f.mode)
}

// RenderMode draws res onto a copy of frame in the given mode, using the
// configured colors.
func (f *CarFinder) RenderMode(frame image.Image, res *FrameResult, mode visualize.Mode) *image.RGBA {
	return visualize.Render(frame, visualize.Input{
		Detections:    res.Detections,
		Candidates:    res.Candidates,
		Heat:          res.Heat,
		HighThreshold: res.HighThreshold,
	}, mode, f.style)
}

// Process runs FindCars and renders the result.
func (f *CarFinder) Process(frame image.Image, single bool) (*image.RGBA, *FrameResult, error) {
	res, err := f.FindCars(frame, single)
	if err != nil {
		return nil, nil, err
	}
	return f.Render(frame, res), res, nil
}

func (f *CarFinder) checkFrame(frame image.Image, single bool) error {
	b := frame.Bounds()
	if b.Min != (image.Point{}) {
		return fmt.Errorf("%w: frame origin is %v, search bands assume (0,0)", ErrFrameSize, b.Min)
	}
	minW, minH := f.cfg.MinFrameSize()
	if b.Dx() < minW || b.Dy() < minH {
		return fmt.Errorf("%w: frame is %dx%d, search bands need at least %dx%d", ErrFrameSize, b.Dx(), b.Dy(), minW, minH)
	}
	if single || f.history.Len() == 0 {
		return nil
	}
	if prev := f.history.At(0); prev.Width() != b.Dx() || prev.Height() != b.Dy() {
		return fmt.Errorf("%w: frame is %dx%d, stream frames are %dx%d", ErrFrameSize, b.Dx(), b.Dy(), prev.Width(), prev.Height())
	}
	return nil
}

// searchBands runs every band's search and concatenates the results in band order.
func (f *CarFinder) searchBands(frame image.Image) ([]geometry.ScoredWindow, []geometry.Rectangle, error) {
	results := make([]*search.Result, len(f.params))

	var g errgroup.Group
	if f.cfg.Workers > 0 {
		g.SetLimit(f.cfg.Workers)
	}
	for i, p := range f.params {
		i, p := i, p // per-iteration copies (go directive is 1.21)
		g.Go(func() error {
			res, err := f.searcher.Search(frame, p)
			if err != nil {
				return fmt.Errorf("search band %d (y %d-%d, scale %v): %w", i, p.YStart, p.YStop, p.Scale, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		windows    []geometry.ScoredWindow
		candidates []geometry.Rectangle
	)
	for _, res := range results {
		windows = append(windows, res.Windows...)
		candidates = append(candidates, res.Candidates...)
	}
	return windows, candidates, nil
}
