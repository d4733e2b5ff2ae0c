package shm

import "runtime"

// spinUntil busy-waits until f holds want. The first budget polls are
// separated by a CPU pause hint; after that every poll yields.
func spinUntil(f *senseFlag, want uint32, budget int) {
	for i := 0; f.observe() != want; i++ {
		if i < budget {
			cpuRelax()
			continue
		}
		runtime.Gosched()
	}
}
