//go:build unix

package runner

import (
	"time"

	"golang.org/x/sys/unix"
)

// processCPUTime is the user plus system time consumed by this process.
func processCPUTime() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}
