package bvh

import (
	"math"
	"math/rand"

	"github.com/achilleasa/hitmiss/types"
)

// Randomized comparisons against brute force use a margin that survives
// float32 rounding at the generated coordinate magnitudes.
const testEpsilon = 1e-3

// An axis-aligned box element used by the tests.
type testBox struct {
	min, max types.Vec3
}

func (b *testBox) BBox() types.AABB {
	return types.AABB{Min: b.min, Max: b.max}
}

// Slab test that treats rays parallel to a slab as hitting when the origin
// lies inside the slab (faces included).
func (b *testBox) Intersect(origin, dir types.Vec3, t *float32) bool {
	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < b.min[axis] || origin[axis] > b.max[axis] {
				return false
			}
			continue
		}

		t0 := (b.min[axis] - origin[axis]) / dir[axis]
		t1 := (b.max[axis] - origin[axis]) / dir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return false
		}
	}

	tHit := tNear
	if tHit <= 0 {
		tHit = tFar
	}
	if tHit <= 0 || tHit >= *t {
		return false
	}
	*t = tHit
	return true
}

func box(minX, minY, minZ, maxX, maxY, maxZ float32) *testBox {
	return &testBox{min: types.XYZ(minX, minY, minZ), max: types.XYZ(maxX, maxY, maxZ)}
}

// Generate count random boxes inside the [-50, 50] cube.
func randomBoxes(rng *rand.Rand, count int) []*testBox {
	out := make([]*testBox, count)
	for index := range out {
		var minC, maxC types.Vec3
		for axis := 0; axis < 3; axis++ {
			minC[axis] = rng.Float32()*100 - 50
			maxC[axis] = minC[axis] + rng.Float32()*4 + 0.01
		}
		out[index] = &testBox{min: minC, max: maxC}
	}
	return out
}

// Generate a random ray starting outside the [-60, 60] cube and aimed at a
// random point inside the [-50, 50] cube.
func randomRay(rng *rand.Rand) (origin, dir types.Vec3) {
	for axis := 0; axis < 3; axis++ {
		origin[axis] = rng.Float32()*240 - 120
	}
	origin[rng.Intn(3)] = 120
	var target types.Vec3
	for axis := 0; axis < 3; axis++ {
		target[axis] = rng.Float32()*100 - 50
	}
	return origin, target.Sub(origin).Normalize()
}

// Find the closest hit by testing every element.
func bruteForce(elems []*testBox, origin, dir types.Vec3, interval Interval) (float32, bool) {
	found := false
	for _, elem := range elems {
		t := interval[1]
		if elem.Intersect(origin, dir, &t) && interval.Contains(t) {
			interval[1] = t
			found = true
		}
	}
	return interval[1], found
}

func mustBuild(elems []*testBox, opts ...Option) *Hierarchy[*testBox] {
	h, err := Build(elems, BBoxBounds[*testBox](), opts...)
	if err != nil {
		panic(err)
	}
	return h
}
