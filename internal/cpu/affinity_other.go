//go:build !linux && !darwin && !windows

package cpu

// PinWorker locks the calling goroutine to an OS thread.
func PinWorker(workerID int) (func(), error) {
	return LockThread(), ErrPinUnsupported
}
