//go:build linux

// Package host provides optional OS-thread pinning for the simulated
// dispatch loop. On a real microcontroller target there is exactly one
// core and one thread, so this has no embedded analogue; it exists so a
// hosted simulation (cmd/rtcsim) can approximate dedicating a core to
// the scheduler, the same way the reference queue runner pins its I/O
// loop to a CPU.
package host

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PinCurrentThread locks the calling goroutine to its current OS thread
// and sets that thread's CPU affinity to cpu. Call it from the goroutine
// that will run System.Run, before calling Run. Callers must keep the
// goroutine alive for as long as the pinning should hold; unlocking is
// the caller's responsibility via UnpinCurrentThread.
func PinCurrentThread(cpu int) error {
	lockOSThread()
	var mask unix.CPUSet
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("host: set affinity to cpu %d: %w", cpu, err)
	}
	return nil
}
