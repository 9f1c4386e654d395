// Package pool provides a bounded worker pool that runs one finite batch of
// independent jobs on a fixed number of OS threads and returns the results
// in the jobs' original order.
//
// The primary type is WorkerPool[R]. Each job is submitted together with its
// position in the input; workers complete jobs in any order, and the pool
// writes every result back into the slot for its position.
//
// # Basic Usage
//
//	out, err := pool.Map(inputs, strings.ToUpper)
//	if errors.Is(err, pool.ErrEmptyBatch) {
//	    // nothing to do
//	}
//	for i, slot := range out {
//	    fmt.Println(i, slot) // Some(TEST 1), Some(TEST 2), ...
//	}
//
// # Explicit Lifecycle
//
// Map is a thin wrapper around the pool's three operations:
//
//	wp, err := pool.NewWorkerPool[string](len(inputs))
//	if err != nil {
//	    return err
//	}
//	defer wp.Close()
//
//	for i, s := range inputs {
//	    if err := wp.Execute(i, func() string { return strings.ToUpper(s) }); err != nil {
//	        return err
//	    }
//	}
//
//	out := make([]pool.Slot[string], len(inputs))
//	err = wp.Result(out) // terminates, collects, joins
//
// # Shutdown
//
// Result sends exactly one terminate message per worker behind all queued
// jobs, collects until every worker has released the outbound queue, and
// joins every worker before returning. Close does the same without
// collecting and may be called any number of times. No worker outlives the
// pool once either has returned.
//
// # Failures
//
// A job that panics does not take its worker down: the panic is recovered,
// the slot stays empty and Result reports a *JobPanicError. Hooks are
// recovered the same way. A job that calls runtime.Goexit takes its worker
// with it; Result reports ErrJobExited for that position and ErrWorkerExited
// for the worker, and still returns. Broken internal assumptions panic with
// *InvariantError.
//
// # Configuration Options
//
//   - WithMaxWorkers(n): Cap on worker threads (default: DefaultMaxWorkers)
//   - WithRateLimit(rate, burst): Shared token bucket in front of every job
//   - WithCPUAffinity(): Pin worker threads to cores
//   - WithOnJobStart(fn), WithOnJobEnd(fn): Per-job hooks
//
// Not supported: resizing, work stealing, cancellation or timeouts,
// priorities, and reuse of a pool for a second batch.
package pool
