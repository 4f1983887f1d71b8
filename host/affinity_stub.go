//go:build !linux

package host

import "errors"

// PinCurrentThread is unsupported outside Linux; SchedSetaffinity has no
// portable equivalent. It locks the OS thread (which is supported
// everywhere) and reports an error for the affinity mask itself.
func PinCurrentThread(cpu int) error {
	lockOSThread()
	return errors.New("host: CPU affinity is only supported on linux")
}
