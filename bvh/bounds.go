package bvh

import "github.com/achilleasa/hitmiss/types"

// The BoundingProvider interface reports the extent of an element along an
// axis. When wantMin is true it returns the lower bound, otherwise the upper
// bound.
type BoundingProvider[T any] interface {
	Bound(axis types.Axis, wantMin bool, elem T) float32
}

// BoundFunc adapts a plain function to the BoundingProvider interface.
type BoundFunc[T any] func(axis types.Axis, wantMin bool, elem T) float32

// Bound calls f(axis, wantMin, elem).
func (f BoundFunc[T]) Bound(axis types.Axis, wantMin bool, elem T) float32 {
	return f(axis, wantMin, elem)
}

// BBoxBounds returns a BoundingProvider for elements that can report their
// own bounding box. The box is queried once per call so elements with
// expensive BBox implementations should be cached by the caller.
func BBoxBounds[T interface{ BBox() types.AABB }]() BoundingProvider[T] {
	return BoundFunc[T](func(axis types.Axis, wantMin bool, elem T) float32 {
		bbox := elem.BBox()
		if wantMin {
			return bbox.Min[axis]
		}
		return bbox.Max[axis]
	})
}

// boundsCache memoizes the per-axis extents of every element so that the
// builder never calls back into the BoundingProvider while recursing.
type boundsCache struct {
	min [types.NumAxes][]float32
	max [types.NumAxes][]float32
}

// Evaluate the provider exactly once for each (axis, bound, element) triple.
func newBoundsCache[T any](elems []T, bound BoundingProvider[T]) *boundsCache {
	c := &boundsCache{}
	for axis := 0; axis < types.NumAxes; axis++ {
		c.min[axis] = make([]float32, len(elems))
		c.max[axis] = make([]float32, len(elems))
	}

	for index, elem := range elems {
		for axis := types.XAxis; axis <= types.ZAxis; axis++ {
			c.min[axis][index] = bound.Bound(axis, true, elem)
			c.max[axis][index] = bound.Bound(axis, false, elem)
		}
	}

	return c
}

// Lookup the cached lower or upper extent of an element.
func (c *boundsCache) lookup(axis types.Axis, wantMin bool, index int) float32 {
	if wantMin {
		return c.min[axis][index]
	}
	return c.max[axis][index]
}

// Get the unpadded box of a single element.
func (c *boundsCache) elementBox(index int) types.AABB {
	return types.AABB{
		Min: types.Vec3{c.min[0][index], c.min[1][index], c.min[2][index]},
		Max: types.Vec3{c.max[0][index], c.max[1][index], c.max[2][index]},
	}
}

// Get the unpadded box enclosing every cached element.
func (c *boundsCache) union() types.AABB {
	box := types.EmptyAABB()
	for index := 0; index < c.len(); index++ {
		box = box.Union(c.elementBox(index))
	}
	return box
}

// The number of cached elements.
func (c *boundsCache) len() int {
	return len(c.min[0])
}
