package bvh

import (
	"fmt"

	"github.com/achilleasa/hitmiss/types"
)

// NodeIndex addresses a node inside the hierarchy's flat node array.
type NodeIndex int32

// NullNode is the successor of the last node visited by a traversal.
const NullNode NodeIndex = -1

type NodeKind uint8

const (
	LeafNode NodeKind = iota
	InteriorNode
)

func (k NodeKind) String() string {
	if k == LeafNode {
		return "leaf"
	}
	return "interior"
}

// Bvh node definition. Traversal is driven entirely by the Hit and Miss links:
// Hit is followed when the node test succeeds and Miss otherwise.
//
// - Leaf nodes reference exactly one element via Element and carry no box.
// - Interior nodes carry the box enclosing every element of their subtree.
type Node struct {
	Kind NodeKind

	Hit  NodeIndex
	Miss NodeIndex

	// Interior nodes only.
	Box types.AABB

	// Leaf nodes only. The element index always equals the leaf's own index.
	Element int
}

// IsLeaf returns true for leaf nodes.
func (n *Node) IsLeaf() bool {
	return n.Kind == LeafNode
}

func (n Node) String() string {
	if n.Kind == LeafNode {
		return fmt.Sprintf("leaf{element: %d, hit: %d, miss: %d}", n.Element, n.Hit, n.Miss)
	}
	return fmt.Sprintf("interior{box: %v, hit: %d, miss: %d}", n.Box, n.Hit, n.Miss)
}

func leafNode(element int, hit, miss NodeIndex) Node {
	return Node{
		Kind:    LeafNode,
		Hit:     hit,
		Miss:    miss,
		Element: element,
	}
}

func interiorNode(box types.AABB, hit, miss NodeIndex) Node {
	return Node{
		Kind: InteriorNode,
		Hit:  hit,
		Miss: miss,
		Box:  box,
	}
}
