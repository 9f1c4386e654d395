//go:build darwin

package cpu

// PinWorker locks the calling goroutine to an OS thread.
// macOS exposes no thread-to-core affinity, so ErrPinUnsupported is returned.
func PinWorker(workerID int) (func(), error) {
	return LockThread(), ErrPinUnsupported
}
