package fractal

import (
	"context"
	"time"
)

// Watch samples the buffer every PreviewInterval while job is in flight and
// passes each snapshot to fn, then calls fn once more with the final frame
// when the job completes. It returns the job's error, or ctx.Err() if ctx
// ends first.
//
// Watch is independent of Job.Wait: it only reads the buffer, so several
// watchers and a waiter can observe the same job.
func (s *Scene) Watch(ctx context.Context, job *Job, fn func(Image)) error {
	if fn == nil {
		return job.Wait(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-job.Done():
			fn(s.Buffer())
			return job.Err()
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(s.Buffer())
		}
	}
}
