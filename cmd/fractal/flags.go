package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/logging"
	"github.com/gogpu/fractal/viewport"
)

type config struct {
	width, height int
	controls      viewport.Controls
	output        string
	caption       bool
	animateDir    string
	timeout       time.Duration
	logLevel      slog.Level
	logJSON       bool
}

// parseFlags reads the command line. View flags that are set explicitly
// override the fields of -controls.
func parseFlags(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("fractal", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		width        = fs.Int("width", 800, "image width in pixels")
		height       = fs.Int("height", 600, "image height in pixels")
		controls     = fs.String("controls", "", "persisted view, as printed by a previous run")
		threads      = fs.Int("threads", viewport.DefaultThreads, "number of render workers")
		scale        = fs.Float64("scale", 0, "zoom in pixels per plane unit")
		dx           = fs.Float64("dx", 0, "horizontal view offset")
		dy           = fs.Float64("dy", 0, "vertical view offset")
		iterations   = fs.Int("iterations", 0, "escape-time iteration limit")
		colorMode    = fs.String("color", "", "color mode: gray-light, gray-dark, color-light or color")
		colorThreads = fs.Bool("color-threads", false, "tint pixels by the worker that rendered them")
		frames       = fs.Int("frames", 0, "animation frame target")
		output       = fs.String("output", "fractal.png", "output PNG file")
		caption      = fs.Bool("caption", false, "stamp the view parameters onto the image")
		animateDir   = fs.String("animate-dir", "", "write a zoom-out animation as PNG frames into this directory")
		timeout      = fs.Duration("timeout", 0, "give up after this long (0 for no limit)")
		logLevel     = fs.String("log-level", "info", "log level: debug, info, warn or error")
		logJSON      = fs.Bool("log-json", false, "write logs as JSON")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	c, err := viewport.ParseControls(*controls)
	if err != nil {
		return config{}, err
	}

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threads":
			c.Threads = *threads
		case "scale":
			c.Scale = *scale
		case "dx":
			c.OffsetX = *dx
		case "dy":
			c.OffsetY = *dy
		case "iterations":
			c.Iterations = *iterations
		case "color":
			m, err := fractal.ParseColorMode(*colorMode)
			if err != nil {
				visitErr = err
				return
			}
			c.ColorMode = m
		case "color-threads":
			c.ColorThreads = *colorThreads
		case "frames":
			c.AnimationFrames = *frames
		}
	})
	if visitErr != nil {
		return config{}, visitErr
	}
	if err := c.Validate(); err != nil {
		return config{}, err
	}
	if *width <= 0 || *height <= 0 {
		return config{}, fmt.Errorf("%w: %dx%d", fractal.ErrInvalidSize, *width, *height)
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return config{}, err
	}

	return config{
		width:      *width,
		height:     *height,
		controls:   c,
		output:     *output,
		caption:    *caption,
		animateDir: *animateDir,
		timeout:    *timeout,
		logLevel:   level,
		logJSON:    *logJSON,
	}, nil
}
