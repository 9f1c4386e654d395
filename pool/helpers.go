package pool

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrInvalidWorkerCount is returned by NewWorkerPool when the desired
	// worker count is not positive.
	ErrInvalidWorkerCount = errors.New("desired worker count must be positive")

	// ErrEmptyBatch is returned by Map when there is nothing to process.
	// No pool is started in that case.
	ErrEmptyBatch = errors.New("empty batch: no jobs to run")

	// ErrNilJob is returned by Execute for a nil job.
	ErrNilJob = errors.New("job is nil")

	// ErrInvalidPosition is returned by Execute for a negative position.
	ErrInvalidPosition = errors.New("job position must not be negative")

	// ErrPoolTerminated is returned by Execute once the pool has sent its
	// workers the terminate signal (after Result or Close).
	ErrPoolTerminated = errors.New("pool terminated: no more jobs accepted")

	// ErrResultsCollected is returned by a second call to Result.
	ErrResultsCollected = errors.New("results already collected")

	// ErrPositionOutOfRange is reported by Result for every result whose
	// position has no slot in the output collection. The value is dropped.
	ErrPositionOutOfRange = errors.New("result position out of range")

	// ErrChannelBroken is reported by a worker whose inbound queue closed
	// before it received a terminate signal.
	ErrChannelBroken = errors.New("inbound queue closed before terminate")

	// ErrJobExited is reported by Result for a job (or one of its hooks) that
	// called runtime.Goexit. Its slot stays empty.
	ErrJobExited = errors.New("job exited its goroutine")

	// ErrWorkerExited is reported when joining a worker that was lost to
	// ErrJobExited. The remaining workers keep serving the queue; with none
	// left, unserved positions stay empty.
	ErrWorkerExited = errors.New("worker exited without a terminate signal")
)

// JobPanicError reports a job, or a hook running for it, that panicked. The
// worker that ran it recovers and keeps serving the queue; the job's slot
// stays empty.
type JobPanicError struct {
	Pos   int
	Value any
	Stack []byte
}

func (e *JobPanicError) Error() string {
	return fmt.Sprintf("job %d panicked: %v\nstack trace:\n%s", e.Pos, e.Value, e.Stack)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *JobPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// InvariantError marks a broken internal assumption of the pool, such as an
// unexpected message kind on a queue. It is only ever raised with panic and
// cannot be triggered by caller input.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string {
	return "pool invariant violated: " + e.msg
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{msg: fmt.Sprintf(format, args...)}
}

// runJob executes job, converting a panic into a *JobPanicError.
func runJob[R any](pos int, job func() R) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = &JobPanicError{Pos: pos, Value: r, Stack: buf[:n]}
		}
	}()

	return job(), nil
}

// runHook calls a job hook, converting a panic into a *JobPanicError for pos.
func runHook(pos int, hook func()) error {
	_, err := runJob(pos, func() struct{} {
		hook()
		return struct{}{}
	})
	return err
}
