package fractal

import (
	"errors"
	"fmt"

	"github.com/gogpu/fractal/internal/parallel"
)

// Errors returned by the render pipeline.
var (
	// ErrInvalidParams is returned for parameters that cannot be rendered.
	ErrInvalidParams = errors.New("fractal: invalid parameters")

	// ErrInvalidSize is returned for non-positive canvas dimensions.
	ErrInvalidSize = errors.New("fractal: invalid canvas size")

	// ErrRenderInFlight is returned by Scene.Start when the previous job has
	// not completed. The previous job is left running.
	ErrRenderInFlight = errors.New("fractal: render already in flight")

	// ErrResizeRace is returned by Scene.Resize while a job is in flight.
	ErrResizeRace = errors.New("fractal: resize during render")

	// ErrRenderFault matches every *RenderFault via errors.Is.
	ErrRenderFault = errors.New("fractal: render fault")

	// ErrPoolStartup is returned when a worker fails to initialize. The pool
	// must be closed and rebuilt.
	ErrPoolStartup = parallel.ErrPoolStartup

	// ErrPoolClosed is returned when rendering with a closed pool.
	ErrPoolClosed = parallel.ErrPoolClosed
)

var errNilShader = errors.New("kernel returned a nil shader")

// RenderFault reports a worker that trapped or left its stripe in an
// invalid state. The stripe's rows keep whatever bytes were written before
// the fault.
type RenderFault struct {
	// Generation is the id of the failed job, or 0 if no job was created.
	Generation uint64

	// Worker is the index of the faulting worker, or -1 when the kernel
	// failed before any stripe was dispatched.
	Worker int

	// Stripe is the row range the worker owned.
	Stripe Stripe

	// Err is the underlying cause.
	Err error
}

func (f *RenderFault) Error() string {
	if f.Worker < 0 {
		return fmt.Sprintf("fractal: render setup: %v", f.Err)
	}
	return fmt.Sprintf("fractal: render %d: worker %d (rows %d-%d): %v",
		f.Generation, f.Worker, f.Stripe.Start, f.Stripe.End, f.Err)
}

// Unwrap returns ErrRenderFault and the underlying cause.
func (f *RenderFault) Unwrap() []error {
	return []error{ErrRenderFault, f.Err}
}
