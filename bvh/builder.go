package bvh

import (
	"time"

	"github.com/achilleasa/hitmiss/log"
)

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list. Leaves occupy the first
	// len(elements) slots; interior nodes are appended as their subtrees
	// complete.
	nodes []Node

	// Memoized element extents.
	bounds *boundsCache

	// The amount by which interior node boxes are widened.
	epsilon float32

	// Stats
	stats Stats
}

// Construct the node array for the elements described by cache.
//
// The builder recursively splits the element index range at its median along
// the principal axis of the range's bounding box. The upper half is built
// first so that the lower half can link its hit chain to the upper subtree's
// root.
func buildNodes(cache *boundsCache, epsilon float32, logger log.Logger) ([]Node, Stats) {
	count := cache.len()
	b := &builder{
		logger: logger,
		// Reserve exactly 2N-1 slots; the first N are the leaves.
		nodes:   make([]Node, count, 2*count-1),
		bounds:  cache,
		epsilon: epsilon,
		stats: Stats{
			Elements: count,
		},
	}

	indices := make([]int, count)
	for index := range indices {
		indices[index] = index
	}

	start := time.Now()
	b.partition(indices, NullNode, NullNode, 0)
	b.stats.BuildTime = time.Since(start)
	b.stats.Nodes = len(b.nodes)

	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leaves,
	)
	return b.nodes, b.stats
}

// Partition the element index range and return the index of the node that
// roots it. The miss argument is the node to continue with once the range has
// been fully resolved; rightSibling, when known, is the root of the subtree
// built for the range immediately to the right of this one.
func (b *builder) partition(indices []int, miss, rightSibling NodeIndex, depth int) NodeIndex {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	if len(indices) == 1 {
		return b.createLeaf(indices[0], miss, rightSibling)
	}

	box := boundingBox(indices, b.bounds, b.epsilon)
	axis := principalAxis(box)
	b.stats.SplitAxes[axis]++

	// Order the range by the lower extent along the split axis just enough
	// to separate the lower half from the upper half.
	split := len(indices) / 2
	selectNth(indices, split, func(index int) float32 {
		return b.bounds.lookup(axis, true, index)
	})

	right := b.partition(indices[split:], miss, NullNode, depth+1)
	left := b.partition(indices[:split], right, right, depth+1)

	nodeIndex := NodeIndex(len(b.nodes))
	b.nodes = append(b.nodes, interiorNode(box, left, miss))
	b.stats.Interior++
	return nodeIndex
}

// Setup the leaf slot for an element. A left leaf continues with its right
// sibling after a successful test; a right leaf has no sibling so both links
// lead to the inherited miss node.
func (b *builder) createLeaf(element int, miss, rightSibling NodeIndex) NodeIndex {
	hit := rightSibling
	if hit == NullNode {
		hit = miss
	}

	b.nodes[element] = leafNode(element, hit, miss)
	b.stats.Leaves++
	return NodeIndex(element)
}
