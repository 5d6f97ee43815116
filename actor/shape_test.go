package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxSupport(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"positive octant", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 2, 3}},
		{"negative octant", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{-1, -2, -3}},
		{"mixed", mgl64.Vec3{1, -0.5, 0.2}, mgl64.Vec3{1, -2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, box.Support(tt.direction))
		})
	}
}

// Every polytope face must wind counter-clockwise around its outward normal
// and every vertex must lie on or behind every face plane.
func checkPolytope(t *testing.T, p Polytope) {
	t.Helper()

	for f := 0; f < p.FaceCount(); f++ {
		face := p.Face(f)
		require.GreaterOrEqual(t, len(face.Indices), 3)

		v0 := p.Vertex(face.Indices[0])
		v1 := p.Vertex(face.Indices[1])
		v2 := p.Vertex(face.Indices[2])
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		assert.InDelta(t, 1.0, n.Dot(face.Plane.Normal), 1e-9, "face %d winding", f)

		for _, idx := range face.Indices {
			assert.InDelta(t, 0.0, face.Plane.Distance(p.Vertex(idx)), 1e-9, "face %d vertex %d on plane", f, idx)
		}
		for v := 0; v < p.VertexCount(); v++ {
			assert.LessOrEqual(t, face.Plane.Distance(p.Vertex(v)), 1e-9)
		}
	}
}

func TestBoxFaces(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{0.5, 1, 2}}
	checkPolytope(t, box)

	assert.Equal(t, 0, box.MostAlignedFace(mgl64.Vec3{1, 0.2, 0}))
	assert.Equal(t, 1, box.MostAlignedFace(mgl64.Vec3{-1, 0.2, 0}))
	assert.Equal(t, 4, box.MostAlignedFace(mgl64.Vec3{0.1, 0.2, 0.9}))
	assert.Equal(t, 3, box.MostAlignedFace(mgl64.Vec3{0, -1, 0}))
	assert.Equal(t, 5, BoxFaceIndex(2, false))
}

func TestConvexHull(t *testing.T) {
	t.Run("box hull", func(t *testing.T) {
		hull := NewBoxHull(mgl64.Vec3{1, 1, 1})
		checkPolytope(t, hull)
		assert.Equal(t, 8, hull.VertexCount())
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, hull.Support(mgl64.Vec3{1, 1, 1}))
		assert.Equal(t, 4, hull.MostAlignedFace(mgl64.Vec3{0, 0, 1}))
	})

	t.Run("tetrahedron", func(t *testing.T) {
		vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		faces := [][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
		hull, err := NewConvexHull(vertices, faces)
		require.NoError(t, err)
		checkPolytope(t, hull)
	})

	t.Run("too many vertices", func(t *testing.T) {
		vertices := make([]mgl64.Vec3, MaxHullVertices+1)
		_, err := NewConvexHull(vertices, [][]int{{0, 1, 2}})
		assert.ErrorIs(t, err, ErrTooManyVertices)
	})

	t.Run("inverted face is not convex", func(t *testing.T) {
		vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		faces := [][]int{{0, 1, 2}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
		_, err := NewConvexHull(vertices, faces)
		assert.ErrorIs(t, err, ErrNotConvex)
	})

	t.Run("out of range index", func(t *testing.T) {
		vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		faces := [][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 9}}
		_, err := NewConvexHull(vertices, faces)
		assert.ErrorIs(t, err, ErrInvalidFace)
	})

	t.Run("zero area face", func(t *testing.T) {
		vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {0, 0, 1}}
		faces := [][]int{{0, 1, 2}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
		_, err := NewConvexHull(vertices, faces)
		assert.ErrorIs(t, err, ErrInvalidFace)
	})
}

func TestCapsule(t *testing.T) {
	c := &Capsule{HalfHeight: 1, Radius: 0.5}

	assert.False(t, c.IsSphere())
	assert.True(t, vec3Equal(c.Support(mgl64.Vec3{0, 1, 0}), mgl64.Vec3{0, 1.5, 0}, 1e-12))
	assert.True(t, vec3Equal(c.Support(mgl64.Vec3{1, 0, 0}), mgl64.Vec3{0.5, 1, 0}, 1e-12))
	assert.True(t, vec3Equal(c.CoreSupport(mgl64.Vec3{0, -1, 0}), mgl64.Vec3{0, -1, 0}, 1e-12))

	sphere := &Capsule{Radius: 2}
	assert.True(t, sphere.IsSphere())
	assert.True(t, vec3Equal(sphere.Support(mgl64.Vec3{0, 0, -3}), mgl64.Vec3{0, 0, -2}, 1e-12))

	// zero direction must not produce NaN
	s := sphere.Support(mgl64.Vec3{})
	assert.False(t, math.IsNaN(s.X()) || math.IsNaN(s.Y()) || math.IsNaN(s.Z()))
}

func TestTriangle(t *testing.T) {
	tri := &Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{0, 0, 1}, C: mgl64.Vec3{1, 0, 0}}
	checkPolytope(t, tri)

	assert.True(t, vec3Equal(tri.Normal(), mgl64.Vec3{0, 1, 0}, 1e-12))
	assert.Equal(t, 0, tri.MostAlignedFace(mgl64.Vec3{0, 1, 0}))
	assert.Equal(t, 1, tri.MostAlignedFace(mgl64.Vec3{0, -1, 0}))
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, tri.Support(mgl64.Vec3{1, 0, 0}))

	degenerate := &Triangle{A: mgl64.Vec3{0, 0, 0}, B: mgl64.Vec3{1, 0, 0}, C: mgl64.Vec3{2, 0, 0}}
	assert.True(t, degenerate.IsDegenerate())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, degenerate.Normal())
}

func TestTransform(t *testing.T) {
	a := Transform{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})}
	b := Transform{Position: mgl64.Vec3{-1, 0, 4}, Rotation: mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})}
	p := mgl64.Vec3{0.5, -0.25, 2}

	t.Run("round trip", func(t *testing.T) {
		assert.True(t, vec3Equal(a.InverseTransformPoint(a.TransformPoint(p)), p, 1e-12))
		assert.True(t, vec3Equal(a.Inverse().TransformPoint(a.TransformPoint(p)), p, 1e-12))
	})

	t.Run("rotation of X by 90 around Z", func(t *testing.T) {
		assert.True(t, vec3Equal(a.RotateVector(mgl64.Vec3{1, 0, 0}), mgl64.Vec3{0, 1, 0}, 1e-12))
	})

	t.Run("relative transform", func(t *testing.T) {
		rel := a.Relative(b)
		// b's local point, seen from a's frame, maps back to the same world point
		world := b.TransformPoint(p)
		assert.True(t, vec3Equal(a.TransformPoint(rel.TransformPoint(p)), world, 1e-12))
	})
}

func TestCollider(t *testing.T) {
	c := NewCollider(7, &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, Transform{Position: mgl64.Vec3{0, 5, 0}})

	assert.Equal(t, mgl64.QuatIdent(), c.Transform.Rotation)
	assert.Equal(t, mgl64.Vec3{1, 6, 1}, c.SupportWorld(mgl64.Vec3{1, 1, 1}))
	assert.True(t, c.AABB().ContainsPoint(mgl64.Vec3{0, 5.5, 0}))
}

func TestTangentBasis(t *testing.T) {
	normals := []mgl64.Vec3{
		{0, 0, 1},
		{0, 0, -1},
		{1, 0, 0},
		{0, 1, 0},
		mgl64.Vec3{1, 2, 3}.Normalize(),
		mgl64.Vec3{0.577, -0.577, 0.577}.Normalize(),
	}

	for _, n := range normals {
		t1, t2 := TangentBasis(n)
		assert.InDelta(t, 1, t1.Len(), 1e-9, "normal %v", n)
		assert.InDelta(t, 1, t2.Len(), 1e-9, "normal %v", n)
		assert.InDelta(t, 0, t1.Dot(n), 1e-9, "normal %v", n)
		assert.InDelta(t, 0, t2.Dot(n), 1e-9, "normal %v", n)
		assert.InDelta(t, 0, t1.Dot(t2), 1e-9, "normal %v", n)
	}
}

func TestSafeNormalize(t *testing.T) {
	fallback := mgl64.Vec3{0, 1, 0}
	assert.Equal(t, fallback, SafeNormalize(mgl64.Vec3{}, fallback))
	assert.Equal(t, fallback, SafeNormalize(mgl64.Vec3{1e-20, 0, 0}, fallback))
	assert.InDelta(t, 1, SafeNormalize(mgl64.Vec3{3, 0, 4}, fallback).Len(), 1e-12)
}
