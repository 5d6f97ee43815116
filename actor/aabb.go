package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint reports whether point lies inside the bounds, borders included
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if point[i] < a.Min[i] || point[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the bounds intersect; touching bounds overlap.
// This is the cheap reject run before any narrow-phase work.
func (a AABB) Overlaps(other AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < other.Min[i] || a.Min[i] > other.Max[i] {
			return false
		}
	}
	return true
}

// Expand grows the box by margin on every side
func (a AABB) Expand(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// aabbFromPoints builds the bounds of local points placed by transform.
func aabbFromPoints(transform Transform, points []mgl64.Vec3) AABB {
	if len(points) == 0 {
		return AABB{Min: transform.Position, Max: transform.Position}
	}

	first := transform.TransformPoint(points[0])
	min, max := first, first
	for _, p := range points[1:] {
		w := transform.TransformPoint(p)
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], w[i])
			max[i] = math.Max(max[i], w[i])
		}
	}

	return AABB{Min: min, Max: max}
}
