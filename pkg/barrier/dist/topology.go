package dist

// ringTopology is fixed when the barrier is built.
type ringTopology struct {
	successor   int
	predecessor int
	root        int
}

func newRingTopology(rank, size int) ringTopology {
	return ringTopology{
		successor:   (rank + 1) % size,
		predecessor: (rank - 1 + size) % size,
		root:        size - 1,
	}
}

// partner returns the rank paired with rank at mask, and whether it exists.
func partner(rank, mask, size int) (int, bool) {
	p := rank ^ mask
	return p, p < size
}
