package parallel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool errors.
var (
	// ErrPoolStartup is returned when a worker fails to initialize. A pool
	// that returned it is unusable and must be closed and rebuilt.
	ErrPoolStartup = errors.New("parallel: worker failed to start")

	// ErrPoolClosed is returned when dispatching to a closed pool.
	ErrPoolClosed = errors.New("parallel: pool is closed")

	// ErrNoWorker is returned when dispatching to a worker index the pool
	// does not hold.
	ErrNoWorker = errors.New("parallel: no such worker")
)

// Task is the work handed to one worker for one job. id is the index of the
// worker running it.
type Task func(id int)

// PoolOption configures a Pool during creation.
type PoolOption func(*Pool)

// WithInit sets a hook that every worker runs once before reporting ready.
// A non-nil error or a panic from the hook fails pool startup.
func WithInit(fn func(id int) error) PoolOption {
	return func(p *Pool) {
		p.init = fn
	}
}

// WithLogger sets the logger used for worker lifecycle events.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pool is a grow-only set of persistent worker goroutines.
//
// Each worker owns an inbox of capacity one, which is its per-job
// handshake: the coordinator hands a worker its stripe by sending a Task,
// and the worker blocks on nothing else. Workers are indexed 0..Size()-1
// and reused across jobs. No operation removes a worker; a smaller job
// simply dispatches to fewer of them.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	// mu guards workers. Dispatch holds a read lock while sending so that
	// Close cannot close an inbox under it.
	mu sync.RWMutex

	// workers holds the handles in index order.
	workers []*worker

	// broken is set once any worker failed to start.
	broken bool

	// closed indicates the pool no longer accepts work.
	closed atomic.Bool

	// wg waits for all worker goroutines to exit.
	wg sync.WaitGroup

	init   func(id int) error
	logger *slog.Logger
}

type worker struct {
	id    int
	inbox chan Task
}

// NewPool creates a pool and starts n workers, waiting for each one to
// report ready. If n is 0 or negative, GOMAXPROCS is used.
//
// If any worker fails to initialize, the partially started pool is closed
// and an error wrapping ErrPoolStartup is returned.
func NewPool(n int, opts ...PoolOption) (*Pool, error) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}

	p := &Pool{logger: slog.New(discardHandler{})}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.Grow(n); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Grow starts workers until the pool holds at least n. It never removes
// workers; if n <= Size() it is a no-op.
//
// Grow blocks until the new workers have completed their ready handshake.
// If any of them fails, the pool is marked broken: every later Dispatch
// returns ErrPoolStartup and the caller must rebuild the pool.
func (p *Pool) Grow(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}
	if p.broken {
		return ErrPoolStartup
	}

	start := len(p.workers)
	if n <= start {
		return nil
	}

	ready := make(chan error, n-start)
	for id := start; id < n; id++ {
		w := &worker{id: id, inbox: make(chan Task, 1)}
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go p.run(w, ready)
	}

	var errs []error
	for range n - start {
		if err := <-ready; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		p.broken = true
		p.logger.Warn("parallel: pool startup failed", "workers", n, "failed", len(errs))
		return fmt.Errorf("%w: %w", ErrPoolStartup, errors.Join(errs...))
	}

	p.logger.Debug("parallel: pool grown", "from", start, "to", n)
	return nil
}

// run is the main loop of one worker goroutine.
func (p *Pool) run(w *worker, ready chan<- error) {
	defer p.wg.Done()

	if err := p.start(w.id); err != nil {
		ready <- fmt.Errorf("worker %d: %w", w.id, err)
		return
	}
	ready <- nil

	for task := range w.inbox {
		p.exec(w.id, task)
	}
}

// start runs the init hook, converting a panic into an error.
func (p *Pool) start(id int) (err error) {
	if p.init == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("init panic: %v", r)
		}
	}()
	return p.init(id)
}

// exec runs one task. A panic escaping the task is logged and swallowed so
// that the worker survives for the next job; tasks that need to report
// faults recover on their own.
func (p *Pool) exec(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("parallel: task panicked", "worker", id, "panic", r)
		}
	}()
	task(id)
}

// Dispatch hands task to worker i. It blocks only while the worker's inbox
// is occupied by an earlier, not yet started task.
func (p *Pool) Dispatch(i int, task Task) error {
	if task == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}
	if p.broken {
		return ErrPoolStartup
	}
	if i < 0 || i >= len(p.workers) {
		return fmt.Errorf("%w: %d of %d", ErrNoWorker, i, len(p.workers))
	}

	p.workers[i].inbox <- task
	return nil
}

// Close stops accepting work, lets every queued task finish and waits for
// all workers to exit. Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed.CompareAndSwap(false, true) {
		p.mu.Unlock()
		return
	}
	for _, w := range p.workers {
		close(w.inbox)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debug("parallel: pool closed", "workers", len(p.workers))
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}

// IsRunning returns true if the pool is still accepting work. A pool that
// failed to grow is no longer running.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed.Load() && !p.broken
}

// discardHandler is a slog.Handler that drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
