//go:build !linux

package runner

import "runtime"

// pin only locks the OS thread; CPU affinity is not available here.
func pin(int) error {
	runtime.LockOSThread()
	return nil
}
