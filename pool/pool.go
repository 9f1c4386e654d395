package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vsezanatodazheeto/threads-control/internal/queue"
	"github.com/vsezanatodazheeto/threads-control/internal/types"
)

// WorkerPool runs one batch of positioned jobs on a fixed set of worker
// threads and reassembles their results in position order.
//
// Jobs go onto a shared inbound queue that every worker pulls from. Each
// worker publishes positioned results to a shared outbound queue. Result sends
// one terminate message per worker after the last job, then drains the
// outbound queue until the last worker has released it.
//
// Type parameters:
//   - R: The result type produced by every job
type WorkerPool[R any] struct {
	conf    *workerPoolConfig
	workers []*worker[R]

	inbound  *queue.Queue[types.Message[R]]
	outbound *queue.Queue[types.Message[R]]

	// mu orders Execute against terminate so no work lands behind the
	// terminate messages.
	mu         sync.Mutex
	terminated bool

	collected atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

// NewWorkerPool creates a pool and starts its workers.
//
// The pool runs min(desired, max) workers, where max is DefaultMaxWorkers
// unless WithMaxWorkers says otherwise. A desired count of zero or less is
// rejected with ErrInvalidWorkerCount.
//
// Example:
//
//	wp, err := NewWorkerPool[string](len(inputs))
//	if err != nil {
//	    return err
//	}
//	defer wp.Close()
//
//	for i, s := range inputs {
//	    _ = wp.Execute(i, func() string { return strings.ToUpper(s) })
//	}
//
//	out := make([]Slot[string], len(inputs))
//	err = wp.Result(out)
func NewWorkerPool[R any](desired int, opts ...WorkerPoolOption) (*WorkerPool[R], error) {
	if desired <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, desired)
	}

	cfg := newConfig(opts...)
	size := min(desired, cfg.maxWorkers)

	wp := &WorkerPool[R]{
		conf:     cfg,
		workers:  make([]*worker[R], 0, size),
		inbound:  queue.New[types.Message[R]](1),
		outbound: queue.New[types.Message[R]](size),
	}

	for id := range size {
		wp.workers = append(wp.workers, spawnWorker(id, wp.inbound, wp.outbound, cfg))
	}

	debugLog("pool started with %d workers (desired %d, max %d)", size, desired, cfg.maxWorkers)
	return wp, nil
}

// Size returns the number of worker threads. It is fixed for the pool's life.
func (wp *WorkerPool[R]) Size() int {
	return len(wp.workers)
}

// Running returns the number of workers that have not stopped yet.
func (wp *WorkerPool[R]) Running() int {
	n := 0
	for _, w := range wp.workers {
		if w.currentState() != stateStopped {
			n++
		}
	}
	return n
}

// Execute queues job for the slot at pos. It never waits for a worker.
//
// Positions of one batch should be a permutation of 0..N-1 for an output
// collection of length N. Execute is safe for concurrent use, but fails with
// ErrPoolTerminated once Result or Close has been called.
func (wp *WorkerPool[R]) Execute(pos int, job Job[R]) error {
	if job == nil {
		return ErrNilJob
	}
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.terminated {
		return ErrPoolTerminated
	}

	if err := wp.inbound.Send(types.Work[R](pos, job)); err != nil {
		panic(invariantf("inbound queue closed while the pool is live: %v", err))
	}
	return nil
}

// Result stops accepting jobs, waits for every queued job to finish and
// writes each result into out at its position. It returns once all workers
// have exited and been joined.
//
// Slots whose position was never submitted are left untouched. The returned
// error joins a *JobPanicError for every job that panicked, an
// ErrPositionOutOfRange for every result that had no slot in out, and any
// worker failure. Result may only be called once.
func (wp *WorkerPool[R]) Result(out []Slot[R]) error {
	if !wp.collected.CompareAndSwap(false, true) {
		return ErrResultsCollected
	}

	wp.terminate()

	var errs []error
	received := 0
	for {
		msg, ok := wp.outbound.Recv()
		if !ok {
			break
		}

		if msg.Kind != types.KindResult {
			panic(invariantf("collector received a %s message on the outbound queue", msg.Kind))
		}
		received++

		if msg.Err != nil {
			errs = append(errs, msg.Err)
			continue
		}

		if msg.Pos >= len(out) {
			errs = append(errs, fmt.Errorf("%w: position %d, %d slots", ErrPositionOutOfRange, msg.Pos, len(out)))
			continue
		}

		out[msg.Pos] = Some(msg.Value)
	}

	debugLog("collected %d results", received)

	if err := wp.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Close terminates the workers if Result has not done so, and joins every
// worker exactly once. It is safe to call more than once and safe to call
// without Result; results that were never collected stay buffered until
// Result is called or the pool is dropped.
func (wp *WorkerPool[R]) Close() error {
	wp.closeOnce.Do(func() {
		wp.terminate()

		var errs []error
		for _, w := range wp.workers {
			if err := w.join(); err != nil {
				errs = append(errs, err)
			}
		}
		wp.closeErr = errors.Join(errs...)

		debugLog("pool closed, %d workers joined", len(wp.workers))
	})

	return wp.closeErr
}

// terminate appends one terminate message per worker behind all queued work
// and drops the pool's producer handle on the inbound queue. Every worker
// sees exactly one terminate because the queue is FIFO and no work can be
// queued afterwards.
func (wp *WorkerPool[R]) terminate() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.terminated {
		return
	}
	wp.terminated = true

	for range wp.workers {
		if err := wp.inbound.Send(types.Terminate[R]()); err != nil {
			panic(invariantf("inbound queue closed before terminate: %v", err))
		}
	}

	if err := wp.inbound.Release(); err != nil {
		panic(invariantf("inbound queue released twice: %v", err))
	}

	debugLog("sent terminate to %d workers", len(wp.workers))
}
