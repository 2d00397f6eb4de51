package fractal

import "time"

// DefaultPreviewInterval is how often Scene.Watch samples the buffer while a
// job is in flight.
const DefaultPreviewInterval = 10 * time.Millisecond

// SceneOption configures a Scene during creation.
// Use functional options to customize Scene behavior.
//
// Example:
//
//	// Default Mandelbrot kernel, 10ms preview
//	s, err := fractal.NewScene(800, 600, 8)
//
//	// Custom kernel and slower preview
//	s, err := fractal.NewScene(800, 600, 8,
//	    fractal.WithKernel(myKernel),
//	    fractal.WithPreviewInterval(50*time.Millisecond))
type SceneOption func(*sceneOptions)

// sceneOptions holds optional configuration for Scene creation.
type sceneOptions struct {
	kernel   Kernel
	interval time.Duration
}

// defaultSceneOptions returns the default scene options.
func defaultSceneOptions() sceneOptions {
	return sceneOptions{
		kernel:   Mandelbrot{},
		interval: DefaultPreviewInterval,
	}
}

// WithKernel sets the per-pixel compute kernel. A nil kernel is ignored.
func WithKernel(k Kernel) SceneOption {
	return func(o *sceneOptions) {
		if k != nil {
			o.kernel = k
		}
	}
}

// WithPreviewInterval sets the buffer polling interval used by Watch.
// Non-positive values are ignored.
func WithPreviewInterval(d time.Duration) SceneOption {
	return func(o *sceneOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}
