package types

import (
	"fmt"
	"math"
)

// Axis selects one of the three coordinate axes.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The number of supported axes.
	NumAxes = 3
)

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "X"
	case YAxis:
		return "Y"
	case ZAxis:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// An axis-aligned bounding box defined by its min and max corners.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create an empty box that can be grown via Extend/Union. An empty box has
// Min > Max on every axis.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Returns true if Min > Max along any axis.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Get the box side lengths.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Grow the box so that it contains point p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Get the smallest box containing both b and b2.
func (b AABB) Union(b2 AABB) AABB {
	return AABB{Min: MinVec3(b.Min, b2.Min), Max: MaxVec3(b.Max, b2.Max)}
}

// Returns true if b2 lies inside b. Boxes sharing a face are considered enclosed.
func (b AABB) Encloses(b2 AABB) bool {
	for axis := 0; axis < NumAxes; axis++ {
		if b2.Min[axis] < b.Min[axis] || b2.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Returns true if b2 lies strictly inside b on every face.
func (b AABB) StrictlyEncloses(b2 AABB) bool {
	for axis := 0; axis < NumAxes; axis++ {
		if !(b.Min[axis] < b2.Min[axis]) || !(b2.Max[axis] < b.Max[axis]) {
			return false
		}
	}
	return true
}

func (b AABB) String() string {
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}
