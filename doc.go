// Package fractal renders zoomable escape-time fractals on a persistent pool
// of worker goroutines that share one frame buffer.
//
// # Overview
//
// A Scene owns the RGBA8 frame buffer of one canvas. Each call to
// Scene.Start or Scene.Render creates a Job: the canvas rows are split into
// one contiguous stripe per worker, every stripe is handed to its worker of
// a WorkerPool, and the job resolves when an atomic completion counter
// reaches the number of stripes. The buffer can be read at any time, so a
// display can show the image while it is being computed.
//
// # Quick Start
//
//	import "github.com/gogpu/fractal"
//
//	pool, err := fractal.NewWorkerPool(8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	scene, err := fractal.NewScene(800, 600, 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := scene.Render(ctx, pool, fractal.DefaultParams()); err != nil {
//	    log.Fatal(err)
//	}
//	_ = scene.Buffer().SavePNG("mandelbrot.png")
//
// # Determinism
//
// Every pixel is a pure function of the canvas size and Params, so the final
// image is byte-identical for any thread count and any completion order.
// Params.ColorThreads is the only exception: it tints pixels by worker index
// for diagnostics.
//
// # Concurrency
//
// Workers write disjoint stripes, so the buffer needs no locks. Pixels are
// stored as single atomic words, which makes progressive reads race-free.
// A scene runs at most one job at a time: a second Start while a job is in
// flight fails with ErrRenderInFlight and the running job is left alone.
//
// # Coordinate System
//
// Pixel (px, py) of a width x height canvas maps to the plane point
//
//	re = (px - width/2)/scale - offsetX
//	im = (py - height/2)/scale - offsetY
//
// Navigation (pan, box zoom, animated zoom, history) lives in the viewport
// sub-package.
package fractal

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
