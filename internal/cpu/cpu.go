// Package cpu ties pool workers to operating system threads.
//
// Every worker calls LockThread (or PinWorker when CPU affinity is enabled)
// at the top of its loop and defers the returned release. Locking gives each
// worker a dedicated OS thread for its whole life; pinning additionally
// restricts that thread to a single core where the platform allows it.
package cpu

import (
	"errors"
	"runtime"
)

// ErrPinUnsupported is returned by PinWorker on platforms without a thread
// affinity API. The thread is still locked.
var ErrPinUnsupported = errors.New("cpu: thread pinning is not supported on this platform")

// LockThread locks the calling goroutine to its current OS thread.
// The returned function undoes the lock and must run on the same goroutine.
func LockThread() func() {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}

// coreFor maps a worker index onto a valid core index.
func coreFor(workerID int) int {
	n := NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
