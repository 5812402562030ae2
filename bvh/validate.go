package bvh

import "fmt"

// Validate checks the structural invariants of the hierarchy:
//
// - the node array holds exactly 2N-1 nodes
// - nodes [0, N) are leaves for the element with the same index and the
//   remaining nodes are interior nodes
// - every link either addresses a node or is NullNode
// - following only miss links from the root terminates within 2N-1 steps
// - following only hit links from the root visits every node exactly once
// - every interior box encloses the boxes of all nodes in its subtree and the
//   extents of all elements in its subtree
//
// A hierarchy returned by Build always validates; this method exists for
// diagnostics and tests.
func (h *Hierarchy[T]) Validate() error {
	count := len(h.elements)
	if len(h.nodes) != 2*count-1 {
		return fmt.Errorf("bvh: expected %d nodes for %d elements; got %d", 2*count-1, count, len(h.nodes))
	}

	for index := range h.nodes {
		node := &h.nodes[index]
		if index < count {
			if node.Kind != LeafNode || node.Element != index {
				return fmt.Errorf("bvh: expected node %d to be a leaf for element %d; got %v", index, index, *node)
			}
		} else if node.Kind != InteriorNode {
			return fmt.Errorf("bvh: expected node %d to be an interior node; got %v", index, *node)
		}

		for _, link := range [2]NodeIndex{node.Hit, node.Miss} {
			if link != NullNode && (link < 0 || int(link) >= len(h.nodes)) {
				return fmt.Errorf("bvh: node %d links to out of range node %d", index, link)
			}
		}
	}

	if miss := h.nodes[h.Root()].Miss; miss != NullNode {
		return fmt.Errorf("bvh: expected root miss link to be NullNode; got %d", miss)
	}

	if steps, ok := h.walk(h.Root(), NullNode, false, nil); !ok {
		return fmt.Errorf("bvh: miss chain from root did not terminate after %d steps", steps)
	}

	visited := make([]bool, len(h.nodes))
	steps, ok := h.walk(h.Root(), NullNode, true, func(index NodeIndex) bool {
		if visited[index] {
			return false
		}
		visited[index] = true
		return true
	})
	if !ok || steps != len(h.nodes) {
		return fmt.Errorf("bvh: hit chain from root visited %d nodes; expected each of the %d nodes exactly once", steps, len(h.nodes))
	}

	for index := count; index < len(h.nodes); index++ {
		if err := h.validateSubtree(NodeIndex(index)); err != nil {
			return err
		}
	}

	return nil
}

// Check that the box of an interior node encloses everything reachable
// through its hit chain before control returns to its miss link.
func (h *Hierarchy[T]) validateSubtree(index NodeIndex) error {
	parent := &h.nodes[index]

	var err error
	h.walk(parent.Hit, parent.Miss, true, func(cur NodeIndex) bool {
		node := &h.nodes[cur]
		if node.IsLeaf() {
			if elemBox := h.bounds.elementBox(node.Element); !parent.Box.Encloses(elemBox) {
				err = fmt.Errorf("bvh: box %v of node %d does not enclose element %d extents %v", parent.Box, index, node.Element, elemBox)
			}
		} else if !parent.Box.Encloses(node.Box) {
			err = fmt.Errorf("bvh: box %v of node %d does not enclose box %v of node %d", parent.Box, index, node.Box, cur)
		}
		return err == nil
	})

	return err
}

// Follow the hit (or miss) links from start until stop is reached, invoking
// visit for each node. The walk gives up after 2N-1 steps or when visit
// returns false. It returns the number of visited nodes and whether stop was
// reached.
func (h *Hierarchy[T]) walk(start, stop NodeIndex, followHit bool, visit func(NodeIndex) bool) (int, bool) {
	steps := 0
	for cur := start; cur != stop; steps++ {
		if cur == NullNode || steps >= len(h.nodes) {
			return steps, false
		}
		if visit != nil && !visit(cur) {
			return steps, false
		}

		if followHit {
			cur = h.nodes[cur].Hit
		} else {
			cur = h.nodes[cur].Miss
		}
	}
	return steps, true
}

func assertValid[T any](h *Hierarchy[T]) {
	if err := h.Validate(); err != nil {
		panic(err)
	}
}
