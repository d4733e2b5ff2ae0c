// Package shm implements barriers for goroutines sharing memory.
//
// Two algorithms are provided:
//
//   - SenseReversing: a single shared arrival counter and a global sense
//     flag. O(1) state per participant, but every arrival serializes on the
//     counter.
//   - CombiningTree: a binary fan-in tree with one leaf per participant.
//     Arrivals contend only with their sibling at each level, giving
//     O(log n) depth.
//
// # Memory ordering
//
// Both algorithms use exactly three atomic operations (see memory.go):
//
//	arrive   increment/decrement of an arrival counter  relaxed
//	publish  write of a wake condition (sense flag)     release
//	observe  read of a wake condition                   acquire
//
// Only exactly one participant must observe the trigger transition of an
// arrival counter, so arrivals need no ordering with respect to other
// memory. The publish/observe pair carries the happens-before edge that
// makes everything written before a participant's arrival visible to every
// participant leaving the round. Go's sync/atomic operations are
// sequentially consistent, which satisfies each of these requirements.
//
// # Waiting
//
// Participants busy-wait (see spin.go). The wait is expected to be short,
// bounded by the slowest co-arriving participant, so no blocking primitive
// is involved. After a spin budget is exhausted the waiter yields with
// runtime.Gosched so that more participants than GOMAXPROCS can still make
// progress.
package shm
