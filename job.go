package fractal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/fractal/internal/parallel"
)

// Job is one render of one parameter snapshot.
//
// A job is created by Scene.Start and resolves when every stripe has
// reported, successfully or not. It carries no pixels; read them from the
// scene.
type Job struct {
	generation uint64
	params     Params
	width      int
	height     int
	stripes    []Stripe

	counter *parallel.Counter
	done    <-chan struct{}

	started  time.Time
	finished atomic.Int64 // unix nanos, 0 while running

	fault atomic.Pointer[RenderFault]
}

// Generation returns the job id. Ids increase monotonically per scene.
func (j *Job) Generation() uint64 {
	return j.generation
}

// Params returns the parameters the job renders.
func (j *Job) Params() Params {
	return j.params
}

// Size returns the canvas dimensions the job renders.
func (j *Job) Size() (width, height int) {
	return j.width, j.height
}

// Threads returns the number of stripes (and workers) of the job.
func (j *Job) Threads() int {
	return len(j.stripes)
}

// Stripes returns a copy of the job's partition table.
func (j *Job) Stripes() []Stripe {
	return append([]Stripe(nil), j.stripes...)
}

// Done returns a channel that is closed when the job completes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job completes or ctx is done. It returns the job's
// fault, if any, or ctx.Err(). Abandoning the wait does not stop the job.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the first *RenderFault reported by a worker, or nil.
func (j *Job) Err() error {
	if f := j.fault.Load(); f != nil {
		return f
	}
	return nil
}

// Progress returns the fraction of stripes that have reported, in [0, 1].
func (j *Job) Progress() float64 {
	select {
	case <-j.done:
		return 1
	default:
	}
	return float64(j.counter.Count()) / float64(len(j.stripes))
}

// Duration returns the render time of a completed job, or the time elapsed
// so far for a running one.
func (j *Job) Duration() time.Duration {
	if end := j.finished.Load(); end != 0 {
		return time.Unix(0, end).Sub(j.started)
	}
	return time.Since(j.started)
}

// task returns the work of stripe i. The stripe always reports completion,
// even when the kernel panics, so that the job resolves.
func (j *Job) task(fb *FrameBuffer, i int, shade Shader) parallel.Task {
	st := j.stripes[i]
	return func(worker int) {
		defer j.finish(i)
		defer func() {
			if r := recover(); r != nil {
				j.fail(worker, st, fmt.Errorf("kernel panic: %v", r))
			}
		}()
		j.paint(fb, worker, st, shade)
	}
}

// paint renders the rows of st into fb.
func (j *Job) paint(fb *FrameBuffer, worker int, st Stripe, shade Shader) {
	p := j.params
	for py := st.Start; py < st.End; py++ {
		row := py * j.width
		for px := 0; px < j.width; px++ {
			re, im := p.PlanePoint(px, py, j.width, j.height)
			c := shade(re, im)
			if p.ColorThreads {
				c = tint(c, worker)
			}
			fb.setIndex(row+px, c)
		}
	}
}

// finish reports stripe i to the completion counter.
func (j *Job) finish(i int) {
	last, err := j.counter.Done(i)
	if err != nil {
		j.fail(i, j.stripes[i], err)
		return
	}
	if last {
		j.report()
	}
}

// fail records a fault; only the first one is kept.
func (j *Job) fail(worker int, st Stripe, err error) {
	f := &RenderFault{Generation: j.generation, Worker: worker, Stripe: st, Err: err}
	if j.fault.CompareAndSwap(nil, f) {
		Logger().Warn("fractal: render fault",
			"generation", j.generation,
			"worker", worker,
			"rows", fmt.Sprintf("%d-%d", st.Start, st.End),
			"error", err)
	}
}

func (j *Job) report() {
	Logger().Debug("fractal: render finished",
		"generation", j.generation,
		"duration", j.Duration(),
		"failed", j.fault.Load() != nil)
}
