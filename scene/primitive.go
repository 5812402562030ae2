package scene

import (
	"math"

	"github.com/achilleasa/hitmiss/bvh"
	"github.com/achilleasa/hitmiss/types"
)

// Triangles whose determinant falls below this value are treated as
// parallel to the ray.
const triDetEpsilon float32 = 1e-8

// The Primitive interface is implemented by all scene primitives.
//
// Intersect follows the bvh.Intersectable contract: on entry t holds the
// current upper bound of the query; on a hit closer than that bound the hit
// distance is stored in t and true is returned.
type Primitive interface {
	BBox() types.AABB
	Intersect(origin, dir types.Vec3, t *float32) bool
}

// PrimitiveBounds returns the bounding provider used for indexing primitives.
func PrimitiveBounds() bvh.BoundingProvider[Primitive] {
	return bvh.BBoxBounds[Primitive]()
}

// A sphere primitive.
type Sphere struct {
	Center types.Vec3
	Radius float32
}

// Create new sphere primitive.
func NewSphere(center types.Vec3, radius float32) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

func (s *Sphere) BBox() types.AABB {
	r := types.XYZ(s.Radius, s.Radius, s.Radius)
	return types.AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s *Sphere) Intersect(origin, dir types.Vec3, t *float32) bool {
	oc := origin.Sub(s.Center)
	a := dir.Dot(dir)
	if a == 0 {
		return false
	}
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - a*c
	if disc < 0 {
		return false
	}

	sq := float32(math.Sqrt(float64(disc)))
	tHit := (-b - sq) / a
	if tHit <= 0 {
		// Origin inside the sphere
		tHit = (-b + sq) / a
	}
	return accept(tHit, t)
}

// An axis-aligned box primitive.
type Box struct {
	Min types.Vec3
	Max types.Vec3
}

// Create new box primitive from its center and side lengths.
func NewBox(center, dims types.Vec3) *Box {
	half := dims.Mul(0.5)
	return &Box{Min: center.Sub(half), Max: center.Add(half)}
}

func (b *Box) BBox() types.AABB {
	return types.AABB{Min: b.Min, Max: b.Max}
}

// Slab test. A ray parallel to a slab only hits if its origin lies between
// the slab planes (inclusive).
func (b *Box) Intersect(origin, dir types.Vec3, t *float32) bool {
	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))
	for axis := 0; axis < types.NumAxes; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return false
			}
			continue
		}

		invDir := 1 / dir[axis]
		t0 := (b.Min[axis] - origin[axis]) * invDir
		t1 := (b.Max[axis] - origin[axis]) * invDir
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
	return accept(tHit, t)
}

// A triangle primitive.
type Triangle struct {
	Vertices [3]types.Vec3
}

// Create new triangle primitive.
func NewTriangle(v0, v1, v2 types.Vec3) *Triangle {
	return &Triangle{Vertices: [3]types.Vec3{v0, v1, v2}}
}

func (tri *Triangle) BBox() types.AABB {
	return types.EmptyAABB().
		Extend(tri.Vertices[0]).
		Extend(tri.Vertices[1]).
		Extend(tri.Vertices[2])
}

// Get the unit normal assuming counter-clockwise winding.
func (tri *Triangle) Normal() types.Vec3 {
	e1 := tri.Vertices[1].Sub(tri.Vertices[0])
	e2 := tri.Vertices[2].Sub(tri.Vertices[0])
	return e1.Cross(e2).Normalize()
}

// Moller-Trumbore intersection. Both faces are hit.
func (tri *Triangle) Intersect(origin, dir types.Vec3, t *float32) bool {
	e1 := tri.Vertices[1].Sub(tri.Vertices[0])
	e2 := tri.Vertices[2].Sub(tri.Vertices[0])

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -triDetEpsilon && det < triDetEpsilon {
		return false
	}
	invDet := 1 / det

	s := origin.Sub(tri.Vertices[0])
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return false
	}

	q := s.Cross(e1)
	v := dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return false
	}

	return accept(e2.Dot(q)*invDet, t)
}

// Store tHit in t if it lies in front of the ray origin and is closer than
// the current bound. NaN distances are rejected.
func accept(tHit float32, t *float32) bool {
	if !(tHit > 0 && tHit < *t) {
		return false
	}
	*t = tHit
	return true
}
