package shm

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"

	"github.com/bacalhau-project/gtbarrier/pkg/barrier"
)

const noNode = -1

// treeNode is one fan-in point of the combining tree. Links are indices
// into the arena; parent is only ever followed upward.
type treeNode struct {
	count  arrivalCounter
	sense  senseFlag
	k      int32
	parent int
	left   int
	right  int
	_      cpu.CacheLinePad
}

// CombiningTree is a hierarchical barrier. Each participant owns one leaf;
// internal nodes have fan-in two. A participant decrements nodes on its
// path toward the root for as long as it is the last arrival at each node,
// and spins at the first node where it is not. The participant that
// completes the root walks back down its path resetting counters and
// flipping senses, which releases the participants spinning on those nodes,
// each of which then wakes the rest of its own path.
type CombiningTree struct {
	n    int
	opts options

	nodes  []treeNode
	root   int
	leaves []int
	paths  [][]int

	local  []localSense
	closed atomic.Bool
}

// NewCombiningTree builds a tree with n leaves. The tree is not restricted
// to powers of two: a subtree of n leaves splits into floor(n/2) on the left
// and ceil(n/2) on the right.
func NewCombiningTree(n int, opts ...Option) (*CombiningTree, error) {
	if n < 1 {
		return nil, errors.Wrapf(barrier.ErrInvalidParticipants, "combining tree barrier with %d participants", n)
	}
	t := &CombiningTree{
		n:      n,
		opts:   newOptions(opts...),
		nodes:  make([]treeNode, 0, 2*n-1), // a full binary tree with n leaves
		leaves: make([]int, 0, n),
		local:  newLocalSenses(n),
	}
	t.root = t.build(n, noNode)
	t.paths = make([][]int, n)
	for id, leaf := range t.leaves {
		var path []int
		for idx := leaf; idx != noNode; idx = t.nodes[idx].parent {
			path = append(path, idx)
		}
		t.paths[id] = path
	}
	return t, nil
}

// build appends the subtree for n leaves and returns its arena index.
// Nodes are initialized in place since they hold atomics.
func (t *CombiningTree) build(n, parent int) int {
	idx := len(t.nodes)
	t.nodes = t.nodes[:idx+1]
	node := &t.nodes[idx]
	node.parent = parent
	node.left, node.right = noNode, noNode

	if n == 1 {
		node.k = 1
		node.count.reset(1)
		t.leaves = append(t.leaves, idx)
		return idx
	}

	node.k = 2
	node.count.reset(2)
	left := t.build(n/2, idx)
	right := t.build(n-n/2, idx)
	// t.nodes never reallocates: its capacity is the final node count
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

// Wait blocks participant id until all participants have called Wait for
// this round.
func (t *CombiningTree) Wait(id int) {
	if t == nil || t.local == nil {
		if t != nil && t.closed.Load() {
			panic(barrier.ErrClosed)
		}
		panic(barrier.ErrNotInitialized)
	}

	slot := &t.local[id]
	sense := slot.v
	path := t.paths[id]

	// arrival: climb while we are the last to arrive at each node
	climbed := 0
	for climbed < len(path) {
		node := &t.nodes[path[climbed]]
		if node.count.arrive(-1) != 0 {
			spinUntil(&node.sense, sense, t.opts.spinBudget)
			break
		}
		climbed++
	}

	// wake: every node we completed, from the highest back down to our leaf
	for i := climbed - 1; i >= 0; i-- {
		node := &t.nodes[path[i]]
		node.count.reset(node.k)
		node.sense.publish(sense)
	}

	slot.v = 1 - sense
}

// Size returns the participant count.
func (t *CombiningTree) Size() int {
	return t.n
}

// Depth returns the number of nodes on the longest leaf-to-root path.
func (t *CombiningTree) Depth() int {
	depth := 0
	for _, path := range t.paths {
		depth = max(depth, len(path))
	}
	return depth
}

// Close releases the tree and the per-participant senses.
func (t *CombiningTree) Close() error {
	if t.local == nil && !t.closed.Load() {
		panic(barrier.ErrNotInitialized)
	}
	if !t.closed.CompareAndSwap(false, true) {
		return barrier.ErrClosed
	}
	t.local = nil
	t.nodes = nil
	t.leaves = nil
	t.paths = nil
	return nil
}

// NodeInfo is a read-only view of one tree node.
type NodeInfo struct {
	Fanin  int
	Parent int
	Left   int
	Right  int
}

// TreeShape is a copy of the tree topology, indexed like the arena.
type TreeShape struct {
	Root   int
	Nodes  []NodeInfo
	Leaves []int
}

// Shape returns a copy of the topology. Negative link values mean no node.
func (t *CombiningTree) Shape() TreeShape {
	shape := TreeShape{
		Root:   t.root,
		Nodes:  make([]NodeInfo, len(t.nodes)),
		Leaves: append([]int(nil), t.leaves...),
	}
	for i := range t.nodes {
		node := &t.nodes[i]
		shape.Nodes[i] = NodeInfo{
			Fanin:  int(node.k),
			Parent: node.parent,
			Left:   node.left,
			Right:  node.right,
		}
	}
	return shape
}

// LeafCount returns the number of leaves below idx.
func (s TreeShape) LeafCount(idx int) int {
	if idx == noNode {
		return 0
	}
	node := s.Nodes[idx]
	if node.Left == noNode && node.Right == noNode {
		return 1
	}
	return s.LeafCount(node.Left) + s.LeafCount(node.Right)
}

// compile-time check that CombiningTree implements barrier.Local
var _ barrier.Local = (*CombiningTree)(nil)
