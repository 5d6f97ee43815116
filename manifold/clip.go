// Package manifold turns raw contact candidates into small, stable contact
// manifolds: Sutherland-Hodgman polygon clipping into fixed buffers, exact
// maximum-area reduction to four points, and pruning of noisy edge contacts.
package manifold

import (
	"math"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxClipVertices bounds a clipped polygon: a face of MaxFaceVertices
	// vertices clipped by MaxFaceVertices side planes plus the near and far planes.
	MaxClipVertices = 2*actor.MaxFaceVertices + 2

	// DefaultClipTolerance is the distance under which two consecutive
	// clipped vertices are merged.
	DefaultClipTolerance = 1e-6

	// parallelEpsilon guards the intersection division.
	parallelEpsilon = 1e-12
)

// ClipVertex is a polygon vertex together with the feature pair it comes from.
type ClipVertex struct {
	Position mgl64.Vec3
	Feature  constraint.FeatureID
}

// VertexBuffer is a polygon stored in a fixed array. Writes beyond capacity
// are dropped.
type VertexBuffer struct {
	Vertices [MaxClipVertices]ClipVertex
	Count    int
	// Tolerance used to merge coincident consecutive vertices, DefaultClipTolerance when zero
	Tolerance float64
}

func (b *VertexBuffer) Reset() {
	b.Count = 0
}

// Slice returns a view over the live vertices.
func (b *VertexBuffer) Slice() []ClipVertex {
	return b.Vertices[:b.Count]
}

// Add appends a vertex unless it coincides with the previous one or the
// buffer is full. It reports whether the vertex was stored.
func (b *VertexBuffer) Add(position mgl64.Vec3, feature constraint.FeatureID) bool {
	if b.Count > 0 && b.coincident(b.Vertices[b.Count-1].Position, position) {
		return false
	}
	if b.Count == MaxClipVertices {
		return false
	}
	b.Vertices[b.Count] = ClipVertex{Position: position, Feature: feature}
	b.Count++
	return true
}

func (b *VertexBuffer) tolerance() float64 {
	if b.Tolerance > 0 {
		return b.Tolerance
	}
	return DefaultClipTolerance
}

func (b *VertexBuffer) coincident(p, q mgl64.Vec3) bool {
	tol := b.tolerance()
	return p.Sub(q).LenSqr() <= tol*tol
}

// closeLoop drops the last vertex when it wraps around onto the first one.
func (b *VertexBuffer) closeLoop() {
	if b.Count > 1 && b.coincident(b.Vertices[b.Count-1].Position, b.Vertices[0].Position) {
		b.Count--
	}
}

// ClipVerticesAgainstAxis keeps the part of the polygon in satisfying
// sign*p[axis] <= distance and writes it to out. Kept vertices keep their
// feature. Intersection vertices take the A side of feature (the clipping
// plane) and name the clipped edge on the B side, see edgeFeature.
func ClipVerticesAgainstAxis(out, in *VertexBuffer, axis int, sign, distance float64, feature constraint.FeatureID) {
	var normal mgl64.Vec3
	normal[axis] = sign
	clipPolygon(out, in, normal, distance, feature)
}

// ClipVerticesAgainstPlane keeps the part of the polygon in behind the plane
// through point with the given normal, i.e. dot(p-point, normal) <= 0.
func ClipVerticesAgainstPlane(out, in *VertexBuffer, normal, point mgl64.Vec3, feature constraint.FeatureID) {
	clipPolygon(out, in, normal, normal.Dot(point), feature)
}

// clipPolygon is the Sutherland-Hodgman step against the half-space n.p <= offset.
func clipPolygon(out, in *VertexBuffer, normal mgl64.Vec3, offset float64, feature constraint.FeatureID) {
	out.Reset()
	if in.Count == 0 {
		return
	}

	previous := in.Vertices[in.Count-1]
	previousDist := normal.Dot(previous.Position) - offset

	for i := 0; i < in.Count; i++ {
		current := in.Vertices[i]
		currentDist := normal.Dot(current.Position) - offset

		// Edge previous -> current crosses the plane. A current vertex lying
		// on the plane is emitted as itself below.
		if (previousDist <= 0) != (currentDist <= 0) && currentDist != 0 {
			denom := previousDist - currentDist
			if math.Abs(denom) > parallelEpsilon {
				t := previousDist / denom
				position := previous.Position.Add(current.Position.Sub(previous.Position).Mul(t))
				out.Add(position, edgeFeature(feature, previous.Feature))
			}
		}

		if currentDist <= 0 {
			out.Add(current.Position, current.Feature)
		}

		previous = current
		previousDist = currentDist
	}

	out.closeLoop()
}

// edgeFeature tags an intersection of the clip plane with the edge starting
// at a vertex whose B side is start.
func edgeFeature(plane, start constraint.FeatureID) constraint.FeatureID {
	return constraint.FeatureID{
		TypeA:  plane.TypeA,
		IndexA: plane.IndexA,
		TypeB:  constraint.FeatureEdge,
		IndexB: start.IndexB,
	}
}
