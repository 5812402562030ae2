package bvh

import (
	"math"

	"github.com/achilleasa/hitmiss/types"
)

// DefaultEpsilon is the machine epsilon for float32. Node boxes are widened
// by this amount unless overridden with WithEpsilon.
var DefaultEpsilon = math.Nextafter32(1, 2) - 1

// Select the axis along which box has the largest extent. Axes are scanned in
// X, Y, Z order and only a strictly larger extent replaces the current pick so
// ties resolve to the lower axis and a degenerate box selects the X axis.
func principalAxis(box types.AABB) types.Axis {
	axis := types.XAxis
	maxLength := float32(math.Inf(-1))
	for i := types.XAxis; i <= types.ZAxis; i++ {
		length := box.Max[i] - box.Min[i]
		if length > maxLength {
			maxLength = length
			axis = i
		}
	}
	return axis
}

// Calculate the box enclosing the cached extents of every element in indices
// and widen it by epsilon on each side. The widening keeps axis-aligned
// elements lying on a box face strictly inside the box. A positive epsilon
// always moves each bound by at least one ulp, even when adding it to a
// large coordinate rounds back to the same value.
func boundingBox(indices []int, cache *boundsCache, epsilon float32) types.AABB {
	box := types.EmptyAABB()
	for _, index := range indices {
		for axis := types.XAxis; axis <= types.ZAxis; axis++ {
			if x := cache.lookup(axis, true, index); x < box.Min[axis] {
				box.Min[axis] = x
			}
			if x := cache.lookup(axis, false, index); x > box.Max[axis] {
				box.Max[axis] = x
			}
		}
	}

	for axis := 0; axis < types.NumAxes; axis++ {
		box.Min[axis], box.Max[axis] = widen(box.Min[axis], box.Max[axis], epsilon)
	}
	return box
}

func widen(lo, hi, epsilon float32) (float32, float32) {
	wlo, whi := lo-epsilon, hi+epsilon
	if epsilon > 0 {
		if wlo >= lo {
			wlo = math.Nextafter32(lo, float32(math.Inf(-1)))
		}
		if whi <= hi {
			whi = math.Nextafter32(hi, float32(math.Inf(1)))
		}
	}
	return wlo, whi
}

// Slab test a ray against a box. The per-axis near/far ordering makes the test
// independent of the direction sign. A zero direction component yields an
// infinite reciprocal; when the origin also lies on that slab plane the slab
// term is NaN and the outcome depends on where minf/maxf meet it. Widening the
// boxes by epsilon keeps such origins off the plane.
func intersectBox(origin, invDir types.Vec3, box *types.AABB, interval *Interval) bool {
	var tNear3, tFar3 [types.NumAxes]float32
	for i := 0; i < types.NumAxes; i++ {
		tMin := (box.Min[i] - origin[i]) * invDir[i]
		tMax := (box.Max[i] - origin[i]) * invDir[i]
		tNear3[i] = minf(tMin, tMax)
		tFar3[i] = maxf(tMin, tMax)
	}

	tNear := maxf(maxf(tNear3[0], tNear3[1]), tNear3[2])
	tFar := minf(minf(tFar3[0], tFar3[1]), tFar3[2])

	return tNear <= tFar && interval[0] <= tFar && tNear <= interval[1]
}

// minf and maxf return a unless b compares strictly smaller/larger. Unlike
// math.Min/math.Max a NaN in b is discarded.
func minf(a, b float32) float32 {
	if b < a {
		return b
	}
	return a
}

func maxf(a, b float32) float32 {
	if a < b {
		return b
	}
	return a
}
