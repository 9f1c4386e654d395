//go:build windows

package cpu

import (
	"fmt"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// PinWorker locks the calling goroutine to an OS thread and restricts that
// thread to core workerID % NumCPU.
//
// Release restores the thread's previous mask before unlocking it. If the
// mask cannot be restored the thread stays locked, and the runtime retires
// it once the goroutine exits.
func PinWorker(workerID int) (func(), error) {
	unlock := LockThread()

	core := coreFor(workerID)
	handle, _, _ := getCurrentThread.Call()

	// Bit N selects CPU N. The return value is the previous mask.
	prev, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<core)
	if prev == 0 {
		return unlock, fmt.Errorf("cpu: pin worker %d to core %d: %w", workerID, core, err)
	}

	release := func() {
		if restored, _, _ := setThreadAffinityMask.Call(handle, prev); restored == 0 {
			return
		}
		unlock()
	}
	return release, nil
}
