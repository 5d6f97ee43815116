package manifold

import (
	"math"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/akmonengine/oneshot/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clipFeature = constraint.FeatureID{TypeA: constraint.FeatureEdge, IndexA: 7, TypeB: constraint.FeatureEdge, IndexB: 1}

func vec3Near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

func bufferOf(points ...mgl64.Vec3) *VertexBuffer {
	b := &VertexBuffer{}
	for i, p := range points {
		b.Add(p, constraint.FeatureID{TypeB: constraint.FeatureVertex, IndexB: uint8(i)})
	}
	return b
}

// randomConvexPolygon samples vertices on an ellipse at sorted random angles.
func randomConvexPolygon(rng *rand.Rand, n int) *VertexBuffer {
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = rng.Float64() * 2 * math.Pi
	}
	sort.Float64s(angles)

	rx := 0.5 + rng.Float64()*2
	ry := 0.5 + rng.Float64()*2
	center := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}

	b := &VertexBuffer{}
	for i, a := range angles {
		p := center.Add(mgl64.Vec3{rx * math.Cos(a), ry * math.Sin(a), 0})
		b.Add(p, constraint.FeatureID{TypeB: constraint.FeatureVertex, IndexB: uint8(i)})
	}
	return b
}

func TestClipVerticesAgainstAxis(t *testing.T) {
	square := bufferOf(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{1, 1, 0},
		mgl64.Vec3{0, 1, 0},
	)

	tests := []struct {
		name     string
		sign     float64
		distance float64
		expected []mgl64.Vec3
	}{
		{
			name:     "half plane x <= 0.5",
			sign:     1,
			distance: 0.5,
			expected: []mgl64.Vec3{{0, 0, 0}, {0.5, 0, 0}, {0.5, 1, 0}, {0, 1, 0}},
		},
		{
			name:     "half plane x >= 0.5",
			sign:     -1,
			distance: -0.5,
			expected: []mgl64.Vec3{{0.5, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0.5, 1, 0}},
		},
		{
			name:     "fully inside copies through",
			sign:     1,
			distance: 2,
			expected: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		},
		{
			name:     "fully outside is empty",
			sign:     1,
			distance: -1,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out VertexBuffer
			ClipVerticesAgainstAxis(&out, square, 0, tt.sign, tt.distance, clipFeature)

			require.Equal(t, len(tt.expected), out.Count)
			for i, p := range tt.expected {
				assert.True(t, vec3Near(out.Vertices[i].Position, p, 1e-12), "vertex %d: %v != %v", i, out.Vertices[i].Position, p)
			}
		})
	}
}

func TestClipFeatures(t *testing.T) {
	square := bufferOf(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{1, 1, 0},
		mgl64.Vec3{0, 1, 0},
	)

	var out VertexBuffer
	ClipVerticesAgainstAxis(&out, square, 0, 1, 0.5, clipFeature)
	require.Equal(t, 4, out.Count)

	// Kept vertices keep their feature, new ones pair the plane with the clipped edge
	assert.Equal(t, square.Vertices[0].Feature, out.Vertices[0].Feature)
	assert.Equal(t, constraint.FeatureID{TypeA: constraint.FeatureEdge, IndexA: 7, TypeB: constraint.FeatureEdge, IndexB: 0}, out.Vertices[1].Feature)
	assert.Equal(t, constraint.FeatureID{TypeA: constraint.FeatureEdge, IndexA: 7, TypeB: constraint.FeatureEdge, IndexB: 2}, out.Vertices[2].Feature)
	assert.Equal(t, square.Vertices[3].Feature, out.Vertices[3].Feature)
	assert.NotEqual(t, out.Vertices[1].Feature.Key(), out.Vertices[2].Feature.Key())
}

func TestClipVertexOnPlane(t *testing.T) {
	triangle := bufferOf(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{1, 1, 0},
	)

	var out VertexBuffer
	ClipVerticesAgainstAxis(&out, triangle, 0, 1, 0, clipFeature)

	require.Equal(t, 1, out.Count, "touching vertex must not be duplicated")
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, out.Vertices[0].Position)
	assert.Equal(t, triangle.Vertices[0].Feature, out.Vertices[0].Feature)
}

func TestClipWrapAroundDuplicate(t *testing.T) {
	in := &VertexBuffer{}
	for _, p := range []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0, 0, 1e-9}} {
		in.Vertices[in.Count] = ClipVertex{Position: p}
		in.Count++
	}

	var out VertexBuffer
	ClipVerticesAgainstAxis(&out, in, 0, 1, 5, clipFeature)
	assert.Equal(t, 4, out.Count)
}

func TestClipVerticesAgainstPlane(t *testing.T) {
	square := bufferOf(
		mgl64.Vec3{-1, -1, 0},
		mgl64.Vec3{1, -1, 0},
		mgl64.Vec3{1, 1, 0},
		mgl64.Vec3{-1, 1, 0},
	)

	// Diagonal cut keeping x + y <= 0
	normal := mgl64.Vec3{1, 1, 0}.Normalize()
	var out VertexBuffer
	ClipVerticesAgainstPlane(&out, square, normal, mgl64.Vec3{}, clipFeature)

	require.Equal(t, 3, out.Count)
	for _, v := range out.Slice() {
		assert.LessOrEqual(t, v.Position.Dot(normal), 1e-12)
	}

	// Horizontal cut keeping y <= 0
	var axisOut VertexBuffer
	ClipVerticesAgainstAxis(&axisOut, square, 1, 1, 0, clipFeature)
	assert.Equal(t, 4, axisOut.Count)
}

func TestClipSegment(t *testing.T) {
	segment := bufferOf(mgl64.Vec3{-2, 0, 0}, mgl64.Vec3{2, 0, 0})

	var a, b VertexBuffer
	ClipVerticesAgainstAxis(&a, segment, 0, 1, 1, clipFeature)
	ClipVerticesAgainstAxis(&b, &a, 0, -1, 1, clipFeature)

	require.Equal(t, 2, b.Count)
	assert.True(t, vec3Near(b.Vertices[0].Position, mgl64.Vec3{-1, 0, 0}, 1e-12) || vec3Near(b.Vertices[1].Position, mgl64.Vec3{-1, 0, 0}, 1e-12))
	assert.True(t, vec3Near(b.Vertices[0].Position, mgl64.Vec3{1, 0, 0}, 1e-12) || vec3Near(b.Vertices[1].Position, mgl64.Vec3{1, 0, 0}, 1e-12))
}

func TestClipCapacity(t *testing.T) {
	in := &VertexBuffer{}
	for i := 0; i < MaxClipVertices+10; i++ {
		a := float64(i) / float64(MaxClipVertices+10) * 2 * math.Pi
		in.Add(mgl64.Vec3{math.Cos(a), math.Sin(a), 0}, constraint.FeatureID{})
	}
	assert.Equal(t, MaxClipVertices, in.Count)

	var out VertexBuffer
	ClipVerticesAgainstAxis(&out, in, 0, 1, 0.3, clipFeature)
	assert.LessOrEqual(t, out.Count, MaxClipVertices)
}

// Clipping against a half-space and its complement partitions the polygon:
// every input vertex survives on one side, and every new vertex lies on the plane.
func TestClipComplementUnion(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iteration := 0; iteration < 200; iteration++ {
		in := randomConvexPolygon(rng, 3+rng.Intn(12))
		axis := rng.Intn(2)
		distance := rng.Float64()*3 - 1.5

		var keep, complement VertexBuffer
		ClipVerticesAgainstAxis(&keep, in, axis, 1, distance, clipFeature)
		ClipVerticesAgainstAxis(&complement, in, axis, -1, -distance, clipFeature)

		union := slices.Concat(keep.Slice(), complement.Slice())
		for i := 0; i < in.Count; i++ {
			p := in.Vertices[i].Position
			found := false
			for _, v := range union {
				if vec3Near(v.Position, p, 2*DefaultClipTolerance) {
					found = true
					break
				}
			}
			assert.True(t, found, "iteration %d: vertex %v lost", iteration, p)
		}

		for _, out := range []*VertexBuffer{&keep, &complement} {
			for _, v := range out.Slice() {
				original := false
				for i := 0; i < in.Count; i++ {
					if vec3Near(in.Vertices[i].Position, v.Position, 2*DefaultClipTolerance) {
						original = true
						break
					}
				}
				if !original {
					assert.InDelta(t, distance, v.Position[axis], 1e-9, "iteration %d: new vertex off the plane", iteration)
					assert.Equal(t, clipFeature.IndexA, v.Feature.IndexA)
					assert.Equal(t, constraint.FeatureEdge, v.Feature.TypeB)
				}
			}
		}
	}
}
