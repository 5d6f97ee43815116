package actor

import "github.com/go-gl/mathgl/mgl64"

var triangleFaceIndices = [2][3]int{
	{0, 1, 2}, // front
	{0, 2, 1}, // back
}

// Triangle is a two-sided planar triangle, typically a piece of static
// geometry. Face 0 faces along (B-A)×(C-A), face 1 the opposite way.
type Triangle struct {
	A, B, C mgl64.Vec3
}

func (t *Triangle) Kind() Kind { return KindTriangle }

func (t *Triangle) sealed() {}

// Normal returns the unit front normal, or +Y for a degenerate triangle.
func (t *Triangle) Normal() mgl64.Vec3 {
	return SafeNormalize(t.B.Sub(t.A).Cross(t.C.Sub(t.A)), mgl64.Vec3{0, 1, 0})
}

// IsDegenerate reports whether the triangle has (almost) no area.
func (t *Triangle) IsDegenerate() bool {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).LenSqr() < 1e-18
}

func (t *Triangle) ComputeAABB(transform Transform) AABB {
	return aabbFromPoints(transform, []mgl64.Vec3{t.A, t.B, t.C})
}

func (t *Triangle) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := t.A
	bestDot := t.A.Dot(direction)
	if d := t.B.Dot(direction); d > bestDot {
		best, bestDot = t.B, d
	}
	if d := t.C.Dot(direction); d > bestDot {
		best = t.C
	}
	return best
}

func (t *Triangle) VertexCount() int { return 3 }

func (t *Triangle) Vertex(index int) mgl64.Vec3 {
	switch index {
	case 0:
		return t.A
	case 1:
		return t.B
	}
	return t.C
}

func (t *Triangle) FaceCount() int { return 2 }

func (t *Triangle) Face(index int) Face {
	n := t.Normal()
	if index == 1 {
		n = n.Mul(-1)
	}
	return Face{
		Plane:   Plane{Normal: n, Offset: n.Dot(t.A)},
		Indices: triangleFaceIndices[index][:],
	}
}

func (t *Triangle) MostAlignedFace(direction mgl64.Vec3) int {
	if t.Normal().Dot(direction) < 0 {
		return 1
	}
	return 0
}
