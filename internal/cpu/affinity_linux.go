//go:build linux

package cpu

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PinWorker locks the calling goroutine to an OS thread and restricts that
// thread to core workerID % NumCPU. The release function is always usable,
// even when pinning fails.
//
// Release restores the thread's previous mask before unlocking it. If the
// mask cannot be restored the thread stays locked, and the runtime retires
// it once the goroutine exits.
func PinWorker(workerID int) (func(), error) {
	unlock := LockThread()

	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return unlock, fmt.Errorf("cpu: read affinity of worker %d: %w", workerID, err)
	}

	core := coreFor(workerID)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return unlock, fmt.Errorf("cpu: pin worker %d to core %d: %w", workerID, core, err)
	}

	release := func() {
		if err := unix.SchedSetaffinity(0, &prev); err != nil {
			return
		}
		unlock()
	}
	return release, nil
}
