package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle of the polytope. Indices are wound counter-clockwise
// seen from outside, so Normal points away from the polytope interior.
type Face struct {
	Indices  [3]int
	Normal   mgl64.Vec3
	Distance float64 // signed distance from the origin to the face plane
}

// degenerate faces have no usable normal; they are never visible nor closest.
func (f *Face) degenerate() bool {
	return math.IsInf(f.Distance, 1)
}

func newFace(i, j, k int, a, b, c mgl64.Vec3) Face {
	face := Face{Indices: [3]int{i, j, k}}

	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < minFaceArea {
		face.Distance = math.Inf(1)
		return face
	}

	face.Normal = normal.Mul(1.0 / length)
	face.Distance = face.Normal.Dot(a)
	return face
}

// barycentric computes the weights of p with respect to triangle abc.
// p is assumed to lie in the triangle plane. ok is false for a sliver triangle.
func barycentric(p, a, b, c mgl64.Vec3) (u, v, w float64, ok bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-24 {
		return 1, 0, 0, false
	}

	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w, true
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to exactly zero
// and renormalizes, which keeps axis-aligned contacts free of tangential noise.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	length := normal.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Mul(1.0 / length)
}
