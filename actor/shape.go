package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind identifies a collision shape in the closed set of supported shapes.
type Kind uint8

const (
	KindBox Kind = iota
	KindConvexHull
	KindCapsule
	KindTriangle

	// KindCount is the number of shape kinds, used to size dispatch tables.
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindConvexHull:
		return "convex_hull"
	case KindCapsule:
		return "capsule"
	case KindTriangle:
		return "triangle"
	}
	return "unknown"
}

// Shape is implemented by every collision shape.
// The set is closed: only the shapes of this package satisfy it.
type Shape interface {
	Kind() Kind
	// Support returns the furthest point of the shape in direction, in local space
	Support(direction mgl64.Vec3) mgl64.Vec3
	// ComputeAABB returns the world bounds of the shape placed at transform
	ComputeAABB(transform Transform) AABB

	sealed()
}

// Plane is the set of points p with Normal·p = Offset.
type Plane struct {
	Normal mgl64.Vec3
	Offset float64
}

// Distance returns the signed distance of p to the plane, positive in front.
func (p Plane) Distance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) - p.Offset
}

// Face is a convex polygon of a polytope. Indices wind counter-clockwise
// when seen from outside, so that (v1-v0)×(v2-v0) points along Plane.Normal.
type Face struct {
	Plane   Plane
	Indices []int
}

// Polytope is a shape described by vertices and planar faces (box, hull, triangle).
type Polytope interface {
	Shape
	VertexCount() int
	Vertex(index int) mgl64.Vec3
	FaceCount() int
	Face(index int) Face
	// MostAlignedFace returns the face whose normal has the largest dot product
	// with direction. The first face wins ties.
	MostAlignedFace(direction mgl64.Vec3) int
}

const (
	// MaxHullVertices bounds the number of vertices of a convex hull.
	MaxHullVertices = 64
	// MaxHullFaces bounds the number of faces of a convex hull.
	MaxHullFaces = 64
	// MaxFaceVertices bounds the number of vertices of a single face.
	MaxFaceVertices = 32
)

// TangentBasis returns two unit vectors orthogonal to normal and to each other.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// SafeNormalize returns v normalized, or fallback when v is too short.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return fallback
	}
	return v.Mul(1.0 / l)
}

func mostAligned(p Polytope, direction mgl64.Vec3) int {
	best := 0
	bestDot := math.Inf(-1)
	for i := 0; i < p.FaceCount(); i++ {
		dot := p.Face(i).Plane.Normal.Dot(direction)
		if dot > bestDot {
			bestDot = dot
			best = i
		}
	}
	return best
}
