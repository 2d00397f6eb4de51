package parallel

import (
	"errors"
	"sync/atomic"
)

// ErrDuplicateSignal is returned by Counter.Done when a stripe reports
// completion more than once in the same job.
var ErrDuplicateSignal = errors.New("parallel: stripe signalled completion twice")

// Counter is the completion counter shared by the workers of one job.
//
// Each worker calls Done exactly once when its stripe is finished. The call
// that brings the count to the target runs the completion hook and closes
// the channel returned by C. Because completion is a closed channel, a
// waiter that arrives after the last worker still observes it: there is no
// lost wakeup.
type Counter struct {
	count    atomic.Int64
	target   int64
	seen     atomic.Pointer[Bitmap]
	done     chan struct{}
	complete func()
}

// NewCounter creates a counter with no job attached. Its channel is already
// closed so that waiting on an idle counter returns immediately.
func NewCounter() *Counter {
	c := &Counter{done: make(chan struct{})}
	c.seen.Store(NewBitmap(0))
	close(c.done)
	return c
}

// Reset prepares the counter for a job with target stripes. onComplete, if
// not nil, runs once in the goroutine of the last Done call, before the
// channel is closed.
//
// Reset must not be called while a previous job is still signalling.
func (c *Counter) Reset(target int, onComplete func()) {
	c.count.Store(0)
	c.target = int64(target)
	c.seen.Store(NewBitmap(max(target, 0)))
	c.done = make(chan struct{})
	c.complete = onComplete
	if target <= 0 {
		c.finish()
	}
}

// Done records completion of stripe idx. It reports whether this call
// completed the job. A second call for the same stripe is not counted and
// returns ErrDuplicateSignal.
func (c *Counter) Done(idx int) (bool, error) {
	// Load the job fields before counting: once the last stripe reports,
	// the next Reset may overwrite them.
	target, seen := c.target, c.seen.Load()
	if !seen.Set(idx) {
		return false, ErrDuplicateSignal
	}
	if c.count.Add(1) != target {
		return false, nil
	}
	c.finish()
	return true, nil
}

// finish runs the hook and then wakes waiters. The channel is captured
// first because the hook may allow the next Reset to replace it.
func (c *Counter) finish() {
	done, hook := c.done, c.complete
	if hook != nil {
		hook()
	}
	close(done)
}

// C returns a channel that is closed when the current job completes.
func (c *Counter) C() <-chan struct{} {
	return c.done
}

// Count returns the number of distinct stripes that have reported so far.
// It may be called while workers are signalling.
func (c *Counter) Count() int {
	return c.seen.Load().Count()
}
