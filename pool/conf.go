package pool

import (
	"golang.org/x/time/rate"
)

// DefaultMaxWorkers caps the number of worker threads a pool spawns when no
// WithMaxWorkers option is given.
const DefaultMaxWorkers = 5

// WorkerPoolOption is a functional option for configuring the worker pool.
type WorkerPoolOption func(*workerPoolConfig)

type workerPoolConfig struct {
	maxWorkers  int
	rateLimiter *rate.Limiter
	pinCPU      bool

	onJobStart func(workerID, pos int)
	onJobEnd   func(workerID, pos int, err error)
}

func newConfig(opts ...WorkerPoolOption) *workerPoolConfig {
	cfg := &workerPoolConfig{
		maxWorkers: DefaultMaxWorkers,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithMaxWorkers sets the upper bound on worker threads. The pool size is
// min(desired, max). Values below one are ignored.
func WithMaxWorkers(count int) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if count > 0 {
			cfg.maxWorkers = count
		}
	}
}

// WithRateLimit sets a rate limiter shared by all workers. Every job waits
// for a token before it starts.
// tasksPerSecond specifies the sustained rate, burst the number of jobs that
// may start back to back. Non-positive values disable rate limiting.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 jobs/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithCPUAffinity pins worker i to core i % NumCPU on platforms that support
// it. Workers are always locked to their own OS thread; this only narrows
// which core that thread may run on.
func WithCPUAffinity() WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.pinCPU = true
	}
}

// WithOnJobStart registers a hook called on the worker thread right before a
// job runs. It is called concurrently from different workers.
// If the hook panics the job is skipped and Result reports a *JobPanicError
// for its position.
func WithOnJobStart(fn func(workerID, pos int)) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.onJobStart = fn
	}
}

// WithOnJobEnd registers a hook called on the worker thread after a job
// returns or panics, before its result is published. err is a *JobPanicError
// when the job panicked. It is called concurrently from different workers.
// If the hook panics the position is reported as a *JobPanicError and its
// slot stays empty, even when the job itself succeeded.
func WithOnJobEnd(fn func(workerID, pos int, err error)) WorkerPoolOption {
	return func(cfg *workerPoolConfig) {
		cfg.onJobEnd = fn
	}
}
