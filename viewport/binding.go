package viewport

import (
	"context"
	"sync"

	"github.com/gogpu/fractal"
)

// Renderer is the render backend a Navigator drives.
type Renderer interface {
	// Render draws p and returns when the frame is complete.
	Render(ctx context.Context, p fractal.Params) error

	// Buffer returns the current frame.
	Buffer() fractal.Image

	// Size returns the canvas dimensions.
	Size() (width, height int)
}

// Binding renders on a scene with a pool. Both can be swapped with Rebind
// when the canvas is resized or the thread count changes.
//
// Thread safety: Binding is safe for concurrent use.
type Binding struct {
	mu      sync.RWMutex
	scene   *fractal.Scene
	pool    *fractal.WorkerPool
	preview func(fractal.Image)
	last    *fractal.Job
}

// NewBinding creates a Renderer for scene and pool.
func NewBinding(scene *fractal.Scene, pool *fractal.WorkerPool) *Binding {
	return &Binding{scene: scene, pool: pool}
}

// OnPreview sets a function that receives progressive frames while a render
// is in flight, sampled at the scene's preview interval, and the final
// frame once it completes. A nil fn disables previews.
func (b *Binding) OnPreview(fn func(fractal.Image)) {
	b.mu.Lock()
	b.preview = fn
	b.mu.Unlock()
}

// Rebind replaces the scene and pool. It returns the previous ones so the
// caller can close the old pool once its last job has completed.
func (b *Binding) Rebind(scene *fractal.Scene, pool *fractal.WorkerPool) (*fractal.Scene, *fractal.WorkerPool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	oldScene, oldPool := b.scene, b.pool
	b.scene, b.pool = scene, pool
	return oldScene, oldPool
}

// Scene returns the bound scene.
func (b *Binding) Scene() *fractal.Scene {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scene
}

// Last returns the most recent job started through b, or nil.
func (b *Binding) Last() *fractal.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Render implements Renderer.
func (b *Binding) Render(ctx context.Context, p fractal.Params) error {
	b.mu.Lock()
	scene, pool, preview := b.scene, b.pool, b.preview
	job, err := scene.Start(pool, p)
	if err == nil {
		b.last = job
	}
	b.mu.Unlock()
	if err != nil {
		return err
	}

	if preview != nil {
		return scene.Watch(ctx, job, preview)
	}
	return job.Wait(ctx)
}

// Buffer implements Renderer.
func (b *Binding) Buffer() fractal.Image {
	return b.Scene().Buffer()
}

// Size implements Renderer.
func (b *Binding) Size() (width, height int) {
	s := b.Scene()
	return s.Width(), s.Height()
}
