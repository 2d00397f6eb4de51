package fractal

import "github.com/gogpu/fractal/internal/parallel"

// WorkerPool is a grow-only set of persistent render workers.
//
// A pool may be shared by several scenes, but each scene dispatches to
// workers 0..threads-1, so scenes sharing a pool should not render at the
// same time. Change of thread count is handled by building a new pool and
// closing the old one.
type WorkerPool = parallel.Pool

// Stripe is the row range [Start, End) one worker renders in one job.
type Stripe = parallel.Stripe

// PoolOption configures a WorkerPool during creation.
type PoolOption = parallel.PoolOption

// WithWorkerInit sets a hook that every worker runs once before reporting
// ready. A non-nil error or a panic from the hook fails pool startup.
func WithWorkerInit(fn func(worker int) error) PoolOption {
	return parallel.WithInit(fn)
}

// NewWorkerPool starts n workers and waits for each to report ready. If n is
// 0 or negative, GOMAXPROCS is used.
//
// On failure the partial pool is discarded and an error wrapping
// ErrPoolStartup is returned.
func NewWorkerPool(n int, opts ...PoolOption) (*WorkerPool, error) {
	opts = append([]PoolOption{parallel.WithLogger(Logger())}, opts...)
	pool, err := parallel.NewPool(n, opts...)
	if err != nil {
		Logger().Warn("fractal: worker pool failed to start", "workers", n, "error", err)
		return nil, err
	}
	Logger().Info("fractal: worker pool started", "workers", pool.Size())
	return pool, nil
}

// Partition returns the stripes a scene of the given height uses with n
// workers. It is exposed for callers that display or test the partition.
func Partition(height, n int) []Stripe {
	return parallel.Stripes(height, n)
}
