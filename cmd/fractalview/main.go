// Command fractalview is the interactive fractal viewer.
//
// Drag a box with the left mouse button to zoom into it, drag with the
// right button to pan. Thumbnails of earlier views are listed on the right;
// click one to walk back to it.
//
// Keys:
//
//	U        undo the last zoom
//	A        start or stop the zoom-out animation
//	C        toggle coloring by worker
//	M        next color mode
//	Up/Down  double or halve the iteration limit
//	T        next worker count (rebuilds the pool)
//	S        save the current frame as PNG
//	P        print the persisted controls
//	Esc      cancel the selection
//	Q        quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/logging"
	"github.com/gogpu/fractal/viewport"
)

func main() {
	var (
		width    = flag.Int("width", 1024, "initial window width")
		height   = flag.Int("height", 768, "initial window height")
		controls = flag.String("controls", "", "initial view, as printed with P")
		state    = flag.String("state", "", "file the view is restored from and saved to")
		logLevel = flag.String("log-level", "info", "log level: debug, info, warn or error")
		logJSON  = flag.Bool("log-json", false, "write logs as JSON")
	)
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fractalview:", err)
		os.Exit(2)
	}
	log := logging.New(logging.Options{Level: level, JSON: *logJSON})
	fractal.SetLogger(log)

	c := loadControls(*controls, *state, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v, err := newViewer(ctx, *width, *height, c, *state)
	if err != nil {
		log.Error("viewer startup failed", "error", err)
		os.Exit(1)
	}
	defer v.close()

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Fractal Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("viewer stopped", "error", err)
		os.Exit(1)
	}
}

// loadControls picks the initial view: -controls wins over the state file,
// which wins over the defaults.
func loadControls(flagValue, statePath string, log *slog.Logger) viewport.Controls {
	if flagValue != "" {
		return viewport.DecodeControls(flagValue)
	}
	if statePath == "" {
		return viewport.DefaultControls()
	}
	data, err := os.ReadFile(statePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("cannot read state file", "path", statePath, "error", err)
		}
		return viewport.DefaultControls()
	}
	return viewport.DecodeControls(strings.TrimSpace(string(data)))
}
