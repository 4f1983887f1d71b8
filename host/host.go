package host

import "runtime"

func lockOSThread() {
	runtime.LockOSThread()
}

// UnpinCurrentThread releases the OS thread lock taken by
// PinCurrentThread. It does not undo the affinity mask; the thread is
// simply returned to the Go scheduler's pool.
func UnpinCurrentThread() {
	runtime.UnlockOSThread()
}
