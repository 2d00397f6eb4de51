package fractal

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gogpu/fractal/internal/parallel"
)

// Scene coordinates render jobs for one canvas.
//
// A scene owns the shared FrameBuffer and a completion counter, and is bound
// per call to a WorkerPool. It partitions the canvas into one stripe per
// worker, publishes the job, and resolves when every stripe has reported.
//
// At most one job per scene is in flight: Start rejects a new request with
// ErrRenderInFlight until the previous job has completed, even if its
// waiter gave up. The buffer can be read at any time for progressive
// display.
//
// Thread safety: Scene methods are safe for concurrent use.
type Scene struct {
	threads  int
	kernel   Kernel
	interval time.Duration

	// fb is swapped by Resize; jobs keep the buffer they started with.
	fb atomic.Pointer[FrameBuffer]

	// counter is reused by every job; busy guarantees that Reset never
	// races with a previous job's Done calls.
	counter *parallel.Counter

	// busy is set from Start until the last stripe of the job reports.
	busy atomic.Bool

	generation atomic.Uint64
	current    atomic.Pointer[Job]
}

// NewScene creates a scene for a width x height canvas rendered by threads
// workers. If threads is 0 or negative, GOMAXPROCS is used.
// The buffer starts zeroed.
func NewScene(width, height, threads int, opts ...SceneOption) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	o := defaultSceneOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Scene{
		threads:  threads,
		kernel:   o.kernel,
		interval: o.interval,
		counter:  parallel.NewCounter(),
	}
	s.fb.Store(NewFrameBuffer(width, height))
	return s, nil
}

// Width returns the canvas width in pixels.
func (s *Scene) Width() int {
	return s.fb.Load().Width()
}

// Height returns the canvas height in pixels.
func (s *Scene) Height() int {
	return s.fb.Load().Height()
}

// Threads returns the number of workers each job is split across.
func (s *Scene) Threads() int {
	return s.threads
}

// PreviewInterval returns the polling interval used by Watch.
func (s *Scene) PreviewInterval() time.Duration {
	return s.interval
}

// Busy reports whether a job is in flight.
func (s *Scene) Busy() bool {
	return s.busy.Load()
}

// Generation returns the id of the most recently started job, or 0.
func (s *Scene) Generation() uint64 {
	return s.generation.Load()
}

// Current returns the most recently started job, or nil.
func (s *Scene) Current() *Job {
	return s.current.Load()
}

// Start publishes a render job for p and returns without waiting.
//
// The pool is grown to the scene's thread count if it is smaller. Start
// fails with ErrPoolClosed, ErrInvalidParams, a *RenderFault from a kernel
// that cannot build its shader, ErrRenderInFlight, or a pool growth error.
// In all of these cases nothing is dispatched and the scene is left as it
// was.
func (s *Scene) Start(pool *WorkerPool, p Params) (*Job, error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: nil pool", ErrPoolClosed)
	}
	if !pool.IsRunning() {
		return nil, fmt.Errorf("%w: pool not running", ErrPoolClosed)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	shade, err := s.shader(p)
	if err != nil {
		Logger().Warn("fractal: kernel setup failed", "error", err)
		return nil, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		Logger().Warn("fractal: render rejected, previous job in flight",
			"generation", s.generation.Load())
		return nil, ErrRenderInFlight
	}

	if pool.Size() < s.threads {
		if err := pool.Grow(s.threads); err != nil {
			s.busy.Store(false)
			return nil, err
		}
	}

	fb := s.fb.Load()
	job := &Job{
		generation: s.generation.Add(1),
		params:     p,
		width:      fb.Width(),
		height:     fb.Height(),
		stripes:    parallel.Stripes(fb.Height(), s.threads),
		counter:    s.counter,
		started:    time.Now(),
	}
	s.counter.Reset(s.threads, func() {
		job.finished.Store(time.Now().UnixNano())
		s.busy.Store(false)
	})
	job.done = s.counter.C()
	s.current.Store(job)

	Logger().Debug("fractal: render started",
		"generation", job.generation,
		"size", fmt.Sprintf("%dx%d", job.width, job.height),
		"threads", s.threads,
		"scale", p.Scale,
		"iterations", p.Iterations)

	for i := range job.stripes {
		if err := pool.Dispatch(i, job.task(fb, i, shade)); err != nil {
			// Stripes that never reached a worker fault the job; the ones
			// already dispatched still run to completion.
			for j := i; j < len(job.stripes); j++ {
				job.fail(j, job.stripes[j], err)
				job.finish(j)
			}
			break
		}
	}

	return job, nil
}

// shader builds the kernel's shader for p. It runs before the scene is
// marked busy, so a kernel that panics or returns nil fails the request
// without wedging the scene.
func (s *Scene) shader(p Params) (shade Shader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderFault{
				Worker: -1,
				Err:    fmt.Errorf("kernel setup panic: %v", r),
			}
		}
	}()
	shade = s.kernel.Shader(p)
	if shade == nil {
		return nil, &RenderFault{Worker: -1, Err: errNilShader}
	}
	return shade, nil
}

// Render starts a job for p and waits for it to complete or for ctx to be
// done. Completion carries no payload; read the pixels with Buffer.
//
// If ctx ends first, Render returns ctx.Err() and the job keeps running:
// the scene stays busy until its last stripe reports.
func (s *Scene) Render(ctx context.Context, pool *WorkerPool, p Params) error {
	job, err := s.Start(pool, p)
	if err != nil {
		return err
	}
	return job.Wait(ctx)
}

// Buffer returns a snapshot of the frame buffer. It never blocks and is safe
// during a render, when it shows the rows finished so far.
func (s *Scene) Buffer() Image {
	return s.fb.Load().Snapshot()
}

// CopyTo copies the frame buffer into dst as RGBA8 bytes without
// allocating, returning the number of bytes written.
func (s *Scene) CopyTo(dst []byte) int {
	return s.fb.Load().CopyTo(dst)
}

// Resize reallocates the frame buffer for a new canvas size. The new buffer
// is zeroed. Resize fails with ErrResizeRace while a job is in flight.
func (s *Scene) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrResizeRace
	}
	defer s.busy.Store(false)

	old := s.fb.Load()
	if old.Width() == width && old.Height() == height {
		return nil
	}
	s.fb.Store(NewFrameBuffer(width, height))

	Logger().Info("fractal: scene resized",
		"from", fmt.Sprintf("%dx%d", old.Width(), old.Height()),
		"to", fmt.Sprintf("%dx%d", width, height))
	return nil
}
