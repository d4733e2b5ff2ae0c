//go:build linux

package runner

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// pin binds the calling goroutine to an OS thread running only on cpu. The
// thread stays locked, so it is discarded when the goroutine exits.
func pin(cpu int) error {
	runtime.LockOSThread()
	cpu %= runtime.NumCPU()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.Wrapf(err, "failed to pin to cpu %d", cpu)
	}
	return nil
}
