//go:build amd64 && !noasm

// relax_amd64.go
//
// Go declaration for cpuRelax on amd64. The body lives in relax_amd64.s and
// issues a single PAUSE so spin loops back off without leaving userspace.

package shm

// cpuRelax executes the x86_64 PAUSE instruction.
//
//go:noescape
func cpuRelax()
