package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is a segment swept by a sphere. The segment runs along the local Y
// axis from -HalfHeight to +HalfHeight. A zero HalfHeight makes a sphere.
type Capsule struct {
	HalfHeight float64
	Radius     float64
}

func (c *Capsule) Kind() Kind { return KindCapsule }

func (c *Capsule) sealed() {}

// Segment returns the end points of the core segment in local space.
func (c *Capsule) Segment() (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{0, -c.HalfHeight, 0}, mgl64.Vec3{0, c.HalfHeight, 0}
}

// IsSphere reports whether the core segment is degenerate.
func (c *Capsule) IsSphere() bool {
	return c.HalfHeight <= 1e-9
}

// CoreSupport is the support function of the core segment (radius excluded).
func (c *Capsule) CoreSupport(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.Y() < 0 {
		return mgl64.Vec3{0, -c.HalfHeight, 0}
	}
	return mgl64.Vec3{0, c.HalfHeight, 0}
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	dir := SafeNormalize(direction, mgl64.Vec3{0, 1, 0})
	return c.CoreSupport(direction).Add(dir.Mul(c.Radius))
}

func (c *Capsule) ComputeAABB(transform Transform) AABB {
	p0, p1 := c.Segment()
	w0 := transform.TransformPoint(p0)
	w1 := transform.TransformPoint(p1)

	var min, max mgl64.Vec3
	for i := 0; i < 3; i++ {
		min[i] = math.Min(w0[i], w1[i]) - c.Radius
		max[i] = math.Max(w0[i], w1[i]) + c.Radius
	}
	return AABB{Min: min, Max: max}
}
