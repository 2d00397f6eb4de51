// Command fractal renders a fractal view to a PNG file without a window.
//
// The view is given either with individual flags or with the persisted
// controls string printed by previous runs and by the viewer:
//
//	fractal -output deep.png -scale 2e6 -dx 0.7436 -dy -0.1318 -iterations 2000
//	fractal -controls 'controls=%7B%22scale%22:610...%7D' -caption
//	fractal -animate-dir frames/ -scale 1e6 -frames 60
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/logging"
	"github.com/gogpu/fractal/viewport"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "fractal:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := logging.New(logging.Options{Level: cfg.logLevel, JSON: cfg.logJSON, Out: stderr})
	fractal.SetLogger(log)
	defer fractal.SetLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	pool, err := fractal.NewWorkerPool(cfg.controls.Threads)
	if err != nil {
		return err
	}
	defer pool.Close()

	scene, err := fractal.NewScene(cfg.width, cfg.height, cfg.controls.Threads,
		fractal.WithPreviewInterval(cfg.controls.PreviewInterval()))
	if err != nil {
		return err
	}

	if cfg.animateDir != "" {
		return animate(ctx, cfg, scene, pool, stdout, log)
	}
	return still(ctx, cfg, scene, pool, stdout, log)
}

// still renders one frame and writes it to cfg.output.
func still(ctx context.Context, cfg config, scene *fractal.Scene, pool *fractal.WorkerPool, stdout io.Writer, log *slog.Logger) error {
	job, err := scene.Start(pool, cfg.controls.Params)
	if err != nil {
		return err
	}

	err = scene.Watch(ctx, job, func(fractal.Image) {
		log.Debug("render progress", "generation", job.Generation(), "progress", job.Progress())
	})
	if err != nil {
		return err
	}

	img := scene.Buffer()
	if cfg.caption {
		img = withCaption(img, captionText(cfg.controls))
	}
	if err := img.SavePNG(cfg.output); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(stdout, "rendered %dx%d (%d pixels) with %d threads in %v\n",
		cfg.width, cfg.height, cfg.width*cfg.height, job.Threads(), job.Duration().Round(time.Microsecond))
	fmt.Fprintf(stdout, "saved %s\n%s\n", cfg.output, viewport.EncodeControls(cfg.controls))
	return nil
}

// animate writes the zoom-out animation as numbered PNG frames.
func animate(ctx context.Context, cfg config, scene *fractal.Scene, pool *fractal.WorkerPool, stdout io.Writer, log *slog.Logger) error {
	if err := os.MkdirAll(cfg.animateDir, 0o755); err != nil {
		return err
	}

	var (
		frame   int
		saveErr error
		total   time.Duration
	)
	binding := viewport.NewBinding(scene, pool)
	var nav *viewport.Navigator
	nav = viewport.NewNavigator(binding, cfg.controls, viewport.WithRenderHook(
		func(c viewport.Controls, elapsed time.Duration, err error) {
			if err != nil {
				return
			}
			frame++
			total += elapsed
			img := scene.Buffer()
			if cfg.caption {
				img = withCaption(img, captionText(c))
			}
			path := filepath.Join(cfg.animateDir, fmt.Sprintf("frame_%04d.png", frame))
			if err := img.SavePNG(path); err != nil {
				saveErr = err
				nav.StopAnimation()
				return
			}
			log.Debug("frame saved", "frame", frame, "scale", c.Scale, "path", path)
		}))

	if err := nav.Animate(ctx); err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(stdout, "rendered %d frames of %dx%d in %v\n", frame, cfg.width, cfg.height, total.Round(time.Millisecond))
	return nil
}
