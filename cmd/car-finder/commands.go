package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/car-finder/internal/classifier"
	"github.com/ironsheep/car-finder/internal/config"
	"github.com/ironsheep/car-finder/internal/finder"
	"github.com/ironsheep/car-finder/internal/imaging"
	"github.com/ironsheep/car-finder/internal/server"
	"github.com/ironsheep/car-finder/internal/visualize"
)

// loadConfig returns the --config file, or the defaults, with command line
// overrides applied.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if m := c.String(flagModel); m != "" {
		cfg.Model = m
	}
	if c.IsSet(flagViz) {
		mode, err := visualize.ParseMode(c.String(flagViz))
		if err != nil {
			return nil, err
		}
		cfg.Visualization = string(mode)
	}
	if c.IsSet(flagBoxColor) {
		cfg.BoxColor = c.String(flagBoxColor)
	}
	if c.IsSet(flagWindowColor) {
		cfg.WindowColor = c.String(flagWindowColor)
	}
	return cfg, cfg.Validate()
}

// loadModel reads the classifier model named by the configuration.
func loadModel(cfg *config.Config) (*classifier.Model, error) {
	if cfg.Model == "" {
		return nil, errors.New("no classifier model: pass --model or set model in the config file")
	}
	return classifier.Load(cfg.Model)
}

func newFinder(c *cli.Context, logger *zap.SugaredLogger) (*finder.CarFinder, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	model, err := loadModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	builder, err := model.Builder()
	if err != nil {
		return nil, nil, err
	}
	f, err := finder.New(cfg, builder, model.Classifier(), finder.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return f, cfg, nil
}

// outputPath names the annotated copy of path in dir: frame.jpg becomes
// frame_cars.jpg in cars mode.
func outputPath(dir, path, viz string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"_"+viz+ext)
}

func runImages(c *cli.Context, logger *zap.SugaredLogger) error {
	if c.NArg() == 0 {
		return errors.New("images: at least one image glob is required")
	}
	f, cfg, err := newFinder(c, logger)
	if err != nil {
		return err
	}
	outDir := c.String(flagOutDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for _, pattern := range c.Args().Slice() {
		seq, err := imaging.Glob(pattern)
		if err != nil {
			return err
		}
		if err := processSequence(c.App.Writer, logger, f, seq, true, outDir, cfg.Visualization); err != nil {
			return err
		}
	}
	return nil
}

func runFrames(c *cli.Context, logger *zap.SugaredLogger) error {
	if c.NArg() != 1 {
		return errors.New("frames: exactly one frame glob is required")
	}
	f, cfg, err := newFinder(c, logger)
	if err != nil {
		return err
	}
	outDir := c.String(flagOutDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	seq, err := imaging.Glob(c.Args().First())
	if err != nil {
		return err
	}
	paths := seq.Range(c.Int(flagStart), c.Int(flagEnd)).Paths()
	if len(paths) == 0 {
		return fmt.Errorf("frames: no frames in range [%d, %d)", c.Int(flagStart), c.Int(flagEnd))
	}
	logger.Infow("processing frames", "frames", len(paths), "first", paths[0], "history", cfg.History)
	return processSequence(c.App.Writer, logger, f, seq, false, outDir, cfg.Visualization)
}

// processSequence runs every frame of seq through f and writes the annotated
// frames to outDir. Frames that fail to decode are logged and skipped.
func processSequence(w io.Writer, logger *zap.SugaredLogger, f *finder.CarFinder, seq *imaging.Sequence, single bool, outDir, viz string) error {
	for {
		frame, err := seq.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			logger.Warnw("skipping frame", "error", err)
			continue
		}

		rendered, res, err := f.Process(frame.Image, single)
		if err != nil {
			return fmt.Errorf("%s: %w", frame.Path, err)
		}
		out := outputPath(outDir, frame.Path, viz)
		if err := imaging.Save(out, rendered); err != nil {
			return err
		}
		logger.Debugw("frame written", "index", frame.Index, "output", out)
		fmt.Fprintf(w, "%s: %d cars -> %s\n", frame.Path, len(res.Detections), out)
	}
}

func runServe(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	model, err := loadModel(cfg)
	if err != nil {
		return err
	}
	builder, err := model.Builder()
	if err != nil {
		return err
	}

	logger.Infow("car-finder MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)
	srv, err := server.New(cfg, builder, model.Classifier(),
		server.WithLogger(logger.Named("server")),
		server.WithVersion(Version))
	if err != nil {
		return err
	}
	return srv.Run()
}

func runConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if out := c.String(flagOutput); out != "" {
		return cfg.Save(out)
	}
	enc := yaml.NewEncoder(c.App.Writer)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
