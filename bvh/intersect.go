package bvh

import (
	"fmt"

	"github.com/achilleasa/hitmiss/types"
)

// Interval is the [min, max] parametric range of a ray query.
type Interval [2]float32

// DefaultInterval returns the [0, 1] range used when no interval is supplied.
func DefaultInterval() Interval {
	return Interval{0, 1}
}

// Contains returns true if min < t < max.
func (i Interval) Contains(t float32) bool {
	return i[0] < t && t < i[1]
}

// The Intersector interface tests a ray against a single element.
//
// On entry t holds the current upper bound of the query interval. If the ray
// hits the element, implementations store the hit distance in t and return
// true. The traversal only accepts hits that fall strictly inside the query
// interval.
type Intersector[T any] interface {
	Intersect(index int, elem T, origin, dir types.Vec3, t *float32) bool
}

// IntersectorFunc adapts a plain function to the Intersector interface.
type IntersectorFunc[T any] func(index int, elem T, origin, dir types.Vec3, t *float32) bool

// Intersect calls f(index, elem, origin, dir, t).
func (f IntersectorFunc[T]) Intersect(index int, elem T, origin, dir types.Vec3, t *float32) bool {
	return f(index, elem, origin, dir, t)
}

// The Intersectable interface is implemented by elements that know how to
// intersect themselves with a ray. It has the same output contract as
// Intersector.
type Intersectable interface {
	Intersect(origin, dir types.Vec3, t *float32) bool
}

type elementIntersector[T any] struct{}

func (elementIntersector[T]) Intersect(_ int, elem T, origin, dir types.Vec3, t *float32) bool {
	target, ok := any(elem).(Intersectable)
	if !ok {
		panic(fmt.Sprintf("bvh: element type %T does not implement Intersectable; supply an Intersector", elem))
	}
	return target.Intersect(origin, dir, t)
}

// ElementIntersector returns the default Intersector which delegates to the
// element's own Intersect method. It panics if T does not implement
// Intersectable.
func ElementIntersector[T any]() Intersector[T] {
	return elementIntersector[T]{}
}

// Intersect tests the ray defined by origin and dir against the indexed
// elements and returns true if any element is hit inside interval.
//
// Every accepted hit shrinks interval[1] to the hit distance so once the call
// returns interval[1] holds the distance to the closest hit. Nodes are visited
// in build order rather than front-to-back; the shrinking interval prunes
// boxes beyond the best hit found so far.
//
// A nil interval selects DefaultInterval and a nil isect selects
// ElementIntersector. Intersect does not modify the hierarchy and is safe for
// concurrent use.
func (h *Hierarchy[T]) Intersect(origin, dir types.Vec3, interval *Interval, isect Intersector[T]) bool {
	if interval == nil {
		defInterval := DefaultInterval()
		interval = &defInterval
	}
	if isect == nil {
		isect = elementIntersector[T]{}
	}

	invDir := dir.Inverse()

	var hit, result bool
	var t float32
	for cur := h.Root(); cur != NullNode; {
		node := &h.nodes[cur]
		if !h.isLeaf(cur) {
			hit = intersectBox(origin, invDir, &node.Box, interval)
		} else {
			t = interval[1]
			hit = isect.Intersect(node.Element, h.elements[node.Element], origin, dir, &t) && interval.Contains(t)
			if hit {
				result = true
				interval[1] = t
			}
		}

		if hit {
			cur = node.Hit
		} else {
			cur = node.Miss
		}
	}

	return result
}
