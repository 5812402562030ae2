package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/hitmiss/bvh"
	"github.com/achilleasa/hitmiss/types"
)

var (
	// Hit was invoked before Compile.
	ErrNotCompiled = errors.New("scene: scene has not been compiled")
)

type Scene struct {
	Camera *Camera

	// Primitives is shared with the compiled hierarchy and must only grow
	// through AddPrimitive. Code that edits the slice directly must call
	// Compile again before querying the scene.
	Primitives []Primitive

	// Set by Compile; cleared whenever the primitive list changes.
	hierarchy *bvh.Hierarchy[Primitive]
}

// The result of a successful scene query.
type Hit struct {
	// Index of the hit primitive in Scene.Primitives.
	Primitive int

	// Distance along the ray direction.
	Distance float32

	// The hit point (origin + Distance * dir).
	Point types.Vec3
}

func NewScene() *Scene {
	return &Scene{
		Primitives: make([]Primitive, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a primitive to the scene. Adding primitives discards any previously
// compiled hierarchy. Primitives whose bounds are not finite are rejected.
func (s *Scene) AddPrimitive(primitive Primitive) error {
	if primitive == nil {
		return fmt.Errorf("scene: nil primitive")
	}
	if !hasFiniteBounds(primitive) {
		return fmt.Errorf("scene: primitive bounds %v are not finite", primitive.BBox())
	}
	s.Primitives = append(s.Primitives, primitive)
	s.hierarchy = nil
	return nil
}

// Build the acceleration hierarchy for the scene primitives.
func (s *Scene) Compile(opts ...bvh.Option) error {
	hierarchy, err := bvh.Build(s.Primitives, PrimitiveBounds(), opts...)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	s.hierarchy = hierarchy
	return nil
}

// Get the compiled hierarchy or nil if the scene has not been compiled or
// primitives were appended to Primitives after the last Compile.
func (s *Scene) Hierarchy() *bvh.Hierarchy[Primitive] {
	if s.hierarchy == nil || s.hierarchy.Len() != len(s.Primitives) {
		return nil
	}
	return s.hierarchy
}

// Find the closest primitive hit by the ray within (tMin, tMax). A
// primitive whose nearest intersection lies at or before tMin is skipped.
func (s *Scene) Hit(origin, dir types.Vec3, tMin, tMax float32) (Hit, bool, error) {
	hierarchy := s.Hierarchy()
	if hierarchy == nil {
		return Hit{}, false, ErrNotCompiled
	}

	hit := Hit{Primitive: -1}
	interval := bvh.Interval{tMin, tMax}
	isect := bvh.IntersectorFunc[Primitive](func(index int, prim Primitive, origin, dir types.Vec3, t *float32) bool {
		if !prim.Intersect(origin, dir, t) {
			return false
		}
		if *t > tMin {
			hit.Primitive = index
		}
		return true
	})

	if !hierarchy.Intersect(origin, dir, &interval, isect) {
		return Hit{}, false, nil
	}

	hit.Distance = interval[1]
	hit.Point = origin.Add(dir.Mul(hit.Distance))
	return hit, true, nil
}

// Triangle bounds skip NaN vertices so those are checked directly.
func hasFiniteBounds(primitive Primitive) bool {
	if tri, ok := primitive.(*Triangle); ok {
		for _, v := range tri.Vertices {
			if !isFinite(v) {
				return false
			}
		}
	}
	box := primitive.BBox()
	return isFinite(box.Min) && isFinite(box.Max)
}

func isFinite(v types.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
