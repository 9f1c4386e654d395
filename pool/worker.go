package pool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vsezanatodazheeto/threads-control/internal/cpu"
	"github.com/vsezanatodazheeto/threads-control/internal/queue"
	"github.com/vsezanatodazheeto/threads-control/internal/types"
)

// workerState tracks a worker through Running -> Draining -> Stopped.
// There is no transition back.
type workerState int32

const (
	stateRunning workerState = iota
	stateDraining
	stateStopped
)

func (s workerState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateDraining:
		return "draining"
	case stateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// worker owns one goroutine, locked to its own OS thread, that services the
// pool's shared inbound queue until it receives a terminate message.
type worker[R any] struct {
	id    int
	state atomic.Int32

	// handle is taken by join; nil afterwards.
	handle *errgroup.Group

	inbound  *queue.Queue[types.Message[R]]
	outbound *queue.Queue[types.Message[R]]
	conf     *workerPoolConfig

	// inFlight is the position being executed, -1 between jobs. Only the
	// worker goroutine touches it.
	inFlight int
	// exitErr is set before the goroutine exits and read by join.
	exitErr error
}

// spawnWorker starts a worker wired to the given queues. The worker holds
// one of outbound's producer handles and releases it when it stops.
func spawnWorker[R any](
	id int,
	inbound, outbound *queue.Queue[types.Message[R]],
	conf *workerPoolConfig,
) *worker[R] {
	w := &worker[R]{
		id:       id,
		handle:   new(errgroup.Group),
		inbound:  inbound,
		outbound: outbound,
		conf:     conf,
		inFlight: -1,
	}
	w.state.Store(int32(stateRunning))
	w.handle.Go(w.run)
	return w
}

// run is the worker loop. It returns nil after a terminate message and an
// error wrapping ErrChannelBroken if the inbound queue closed first.
func (w *worker[R]) run() error {
	release := w.lockThread()
	defer release()

	// A job or hook calling runtime.Goexit unwinds past the loop without a
	// stop. The handle still has to be released or collection never ends.
	defer func() {
		if w.currentState() != stateStopped {
			w.abandon()
		}
	}()

	debugLog("worker %d started", w.id)

	for {
		msg, ok := w.inbound.Recv()
		if !ok {
			w.stop()
			return fmt.Errorf("worker %d: %w", w.id, ErrChannelBroken)
		}

		switch msg.Kind {
		case types.KindWork:
			w.execute(msg)

		case types.KindTerminate:
			w.stop()
			debugLog("worker %d stopped", w.id)
			return nil

		default:
			panic(invariantf("worker %d received a %s message on the inbound queue", w.id, msg.Kind))
		}
	}
}

// execute runs one job with its hooks and publishes its positioned result.
// A panic in the start hook skips the job; a panic in either hook fails the
// position like a panicking job would.
func (w *worker[R]) execute(msg types.Message[R]) {
	if w.conf.rateLimiter != nil {
		// Wait only fails for a cancelled context or a burst below one,
		// neither of which can happen here.
		if err := w.conf.rateLimiter.Wait(context.Background()); err != nil {
			debugLog("worker %d: rate limiter: %v", w.id, err)
		}
	}

	w.inFlight = msg.Pos

	var (
		value R
		err   error
	)
	if w.conf.onJobStart != nil {
		err = runHook(msg.Pos, func() { w.conf.onJobStart(w.id, msg.Pos) })
	}
	if err == nil {
		value, err = runJob(msg.Pos, msg.Job)
	}

	if w.conf.onJobEnd != nil {
		jobErr := err
		if hookErr := runHook(msg.Pos, func() { w.conf.onJobEnd(w.id, msg.Pos, jobErr) }); hookErr != nil {
			err = errors.Join(err, hookErr)
		}
	}

	w.publish(types.Result(msg.Pos, value, err))
	w.inFlight = -1
}

func (w *worker[R]) publish(msg types.Message[R]) {
	if err := w.outbound.Send(msg); err != nil {
		// This worker still holds a producer handle, so the queue cannot be closed.
		panic(invariantf("worker %d could not publish result %d: %v", w.id, msg.Pos, err))
	}
}

// abandon reports the job that exited the worker goroutine and gives up the
// outbound handle. The worker is lost; the others keep serving the queue.
func (w *worker[R]) abandon() {
	if w.inFlight >= 0 {
		var zero R
		w.publish(types.Result(w.inFlight, zero, fmt.Errorf("job %d: %w", w.inFlight, ErrJobExited)))
	}
	w.exitErr = fmt.Errorf("worker %d: %w", w.id, ErrWorkerExited)
	w.stop()
	debugLog("worker %d exited during job %d", w.id, w.inFlight)
}

// stop drops this worker's producer handle on the outbound queue. The last
// worker to stop closes it, which ends the pool's collection loop.
func (w *worker[R]) stop() {
	w.state.Store(int32(stateDraining))
	if err := w.outbound.Release(); err != nil {
		panic(invariantf("worker %d released the outbound queue twice: %v", w.id, err))
	}
	w.state.Store(int32(stateStopped))
}

func (w *worker[R]) lockThread() func() {
	if !w.conf.pinCPU {
		return cpu.LockThread()
	}

	release, err := cpu.PinWorker(w.id)
	if err != nil {
		debugLog("worker %d: %v", w.id, err)
	}
	return release
}

// join waits for the worker goroutine to exit. The handle is consumed on the
// first call; later calls return nil immediately. A worker that exited
// without a terminate reports ErrWorkerExited.
func (w *worker[R]) join() error {
	h := w.handle
	if h == nil {
		return nil
	}
	w.handle = nil
	if err := h.Wait(); err != nil {
		return err
	}
	return w.exitErr
}

func (w *worker[R]) currentState() workerState {
	return workerState(w.state.Load())
}
