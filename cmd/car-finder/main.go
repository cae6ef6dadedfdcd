// Package main is the car-finder command: batch detection over still images
// and frame sequences, and an MCP server exposing the same detector.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/car-finder/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	// Flags.
	flagConfig      = "config"
	flagModel       = "model"
	flagLogLevel    = "log-level"
	flagViz         = "viz"
	flagBoxColor    = "box-color"
	flagWindowColor = "window-color"
	flagOutDir      = "out-dir"
	flagStart       = "start"
	flagEnd         = "end"
	flagOutput      = "output"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "car-finder: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var logger *zap.SugaredLogger

	return &cli.App{
		Name:    "car-finder",
		Usage:   "find vehicles in road images and video frames",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load detector configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:    flagModel,
				Aliases: []string{"m"},
				Usage:   "classifier model `FILE`, overrides the config's model",
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Value:   "info",
				EnvVars: []string{logging.EnvLevel},
				Usage:   "log level: debug, info, warn or error",
			},
		},
		Before: func(c *cli.Context) error {
			l, err := logging.New("car-finder", c.String(flagLogLevel))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				//nolint:errcheck
				logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "images",
				Usage:     "detect vehicles in independent still images",
				ArgsUsage: "<glob> [glob...]",
				Flags: []cli.Flag{
					vizFlag(),
					colorFlag(flagBoxColor, "detection box"),
					colorFlag(flagWindowColor, "candidate window"),
					outDirFlag("output_images"),
				},
				Action: func(c *cli.Context) error {
					return runImages(c, logger)
				},
			},
			{
				Name:      "frames",
				Usage:     "detect vehicles in an ordered frame sequence, fusing heat over time",
				ArgsUsage: "<glob>",
				Flags: []cli.Flag{
					vizFlag(),
					colorFlag(flagBoxColor, "detection box"),
					colorFlag(flagWindowColor, "candidate window"),
					outDirFlag("output_frames"),
					&cli.IntFlag{
						Name:  flagStart,
						Usage: "index of the first frame to process",
					},
					&cli.IntFlag{
						Name:  flagEnd,
						Usage: "index one past the last frame, 0 for all",
					},
				},
				Action: func(c *cli.Context) error {
					return runFrames(c, logger)
				},
			},
			{
				Name:  "serve",
				Usage: "run an MCP server over stdin/stdout",
				Action: func(c *cli.Context) error {
					return runServe(c, logger)
				},
			},
			{
				Name:  "config",
				Usage: "print the configuration in effect as YAML",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "write to `FILE` instead of stdout",
					},
				},
				Action: runConfig,
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "car-finder %s\n", Version)
					fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
					return nil
				},
			},
		},
	}
}

func vizFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagViz,
		Usage: "visualization mode, cars or windows; defaults to the config's",
	}
}

func colorFlag(name, what string) cli.Flag {
	return &cli.StringFlag{
		Name:  name,
		Usage: what + " outline color as `#rrggbb`; defaults to the config's",
	}
}

func outDirFlag(def string) cli.Flag {
	return &cli.StringFlag{
		Name:  flagOutDir,
		Value: def,
		Usage: "directory annotated images are written to",
	}
}
