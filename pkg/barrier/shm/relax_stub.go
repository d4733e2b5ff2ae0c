//go:build !amd64 || noasm

// relax_stub.go
//
// Portable fallback for non-amd64 builds or when assembly is disabled.

package shm

// cpuRelax is a no-op on unsupported targets.
func cpuRelax() {}
