// Package dist implements barriers across the ranks of a transport.Transport.
//
// Ring passes an arrival token from rank 0 up to rank n-1, which then
// releases everyone with a broadcast. Butterfly pairs ranks by XOR-ing their
// rank with a doubling mask: the arrival phase folds the group onto rank 0 in
// log2(n) steps and the release phase unfolds it in reverse. Butterfly needs
// a power-of-two group.
//
// Wait takes a context. With context.Background a lost rank blocks the
// others forever; cancellation only lets callers abandon a stalled run.
package dist
