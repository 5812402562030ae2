// Package bvh implements a bounding volume hierarchy that accelerates ray
// intersection queries over a fixed list of elements.
//
// The hierarchy is stored as a flat array of 2N-1 nodes. The first N nodes are
// leaves indexed by element; the remaining nodes are interior boxes with the
// root stored last. Each node carries a hit and a miss link so that queries
// walk the tree in depth-first order without recursion or an explicit stack.
//
// A hierarchy is immutable once built and may be queried concurrently. It
// keeps a reference to the element slice passed to Build; the caller must not
// modify that slice for as long as the hierarchy is in use.
package bvh

import (
	"unsafe"

	"github.com/achilleasa/hitmiss/types"
)

// A Hierarchy indexes a list of elements of type T.
type Hierarchy[T any] struct {
	elements []T
	nodes    []Node
	bounds   *boundsCache
	extent   types.AABB
	stats    Stats
}

// Build a hierarchy for elems using bound to obtain element extents. The
// provider is invoked exactly 6 times per element before partitioning starts.
func Build[T any](elems []T, bound BoundingProvider[T], opts ...Option) (*Hierarchy[T], error) {
	if len(elems) == 0 {
		return nil, ErrNoElements
	}
	if bound == nil {
		return nil, ErrNoBoundingProvider
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	cache := newBoundsCache(elems, bound)
	nodes, stats := buildNodes(cache, options.Epsilon, options.Logger)
	stats.MemoryBytes = len(nodes) * int(unsafe.Sizeof(Node{}))

	h := &Hierarchy[T]{
		elements: elems,
		nodes:    nodes,
		bounds:   cache,
		extent:   cache.union(),
		stats:    stats,
	}

	if debugChecks {
		assertValid(h)
	}
	return h, nil
}

// Len returns the number of indexed elements.
func (h *Hierarchy[T]) Len() int {
	return len(h.elements)
}

// Elements returns the indexed element slice.
func (h *Hierarchy[T]) Elements() []T {
	return h.elements
}

// Nodes returns the flat node array. The returned slice is shared with the
// hierarchy and must be treated as read-only.
func (h *Hierarchy[T]) Nodes() []Node {
	return h.nodes
}

// Node returns a copy of the node at index.
func (h *Hierarchy[T]) Node(index NodeIndex) Node {
	return h.nodes[index]
}

// Root returns the index of the root node; always the last node.
func (h *Hierarchy[T]) Root() NodeIndex {
	return NodeIndex(len(h.nodes) - 1)
}

// Bounds returns the unpadded box enclosing all elements.
func (h *Hierarchy[T]) Bounds() types.AABB {
	return h.extent
}

// ElementBounds returns the cached, unpadded box of the element at index.
func (h *Hierarchy[T]) ElementBounds(index int) types.AABB {
	return h.bounds.elementBox(index)
}

// Stats returns the build statistics.
func (h *Hierarchy[T]) Stats() Stats {
	return h.stats
}

// Returns true if index addresses a leaf. Leaves are stored before all
// interior nodes so the check only needs the element count.
func (h *Hierarchy[T]) isLeaf(index NodeIndex) bool {
	return int(index) < len(h.elements)
}
