package oneshot

import (
	"math"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/akmonengine/oneshot/manifold"
	"github.com/go-gl/mathgl/mgl64"
)

// satAxis is a candidate separating axis of the box-box test.
type satAxis struct {
	// gap along the axis, positive when separated
	gap float64
	// normal in A's frame, oriented from A toward B
	normal mgl64.Vec3
	// face axes: box (0 for A, 1 for B) and axis index; edge axes: both axis indices
	box, i, j int
	edge      bool
}

// boxBox runs the separating axis test over the 15 axes of two boxes and
// builds the manifold of the winning axis. Everything happens in A's frame.
func (g *Generator) boxBox(a, b *actor.Collider, cull float64, c *candidates) {
	boxA := a.Shape.(*actor.Box)
	boxB := b.Shape.(*actor.Box)
	relB := a.Transform.Relative(b.Transform)

	hA, hB := boxA.HalfExtents, boxB.HalfExtents
	t := relB.Position
	var axesB [3]mgl64.Vec3
	for j := 0; j < 3; j++ {
		var e mgl64.Vec3
		e[j] = 1
		axesB[j] = relB.RotateVector(e)
	}

	project := func(axis mgl64.Vec3) (float64, mgl64.Vec3) {
		if axis.Dot(t) < 0 {
			axis = axis.Mul(-1)
		}
		rA := hA[0]*math.Abs(axis[0]) + hA[1]*math.Abs(axis[1]) + hA[2]*math.Abs(axis[2])
		rB := hB[0]*math.Abs(axis.Dot(axesB[0])) + hB[1]*math.Abs(axis.Dot(axesB[1])) + hB[2]*math.Abs(axis.Dot(axesB[2]))
		return axis.Dot(t) - rA - rB, axis
	}

	// Face axes of A, then B. B only wins by more than FaceBias.
	best := satAxis{gap: math.Inf(-1)}
	for i := 0; i < 3; i++ {
		var e mgl64.Vec3
		e[i] = 1
		gap, normal := project(e)
		if gap > cull {
			return
		}
		if gap > best.gap {
			best = satAxis{gap: gap, normal: normal, box: 0, i: i}
		}
	}
	for j := 0; j < 3; j++ {
		gap, normal := project(axesB[j])
		if gap > cull {
			return
		}
		if gap > best.gap+g.settings.FaceBias {
			best = satAxis{gap: gap, normal: normal, box: 1, i: j}
		}
	}

	// Edge axes must beat the best face axis by EdgeAxisBias
	bestEdge := satAxis{gap: math.Inf(-1), edge: true}
	for i := 0; i < 3; i++ {
		var e mgl64.Vec3
		e[i] = 1
		for j := 0; j < 3; j++ {
			axis := e.Cross(axesB[j])
			length := axis.Len()
			if length < 1e-6 {
				// Parallel edges, covered by the face axes
				continue
			}
			gap, normal := project(axis.Mul(1 / length))
			if gap > cull {
				return
			}
			if gap > bestEdge.gap {
				bestEdge = satAxis{gap: gap, normal: normal, i: i, j: j, edge: true}
			}
		}
	}

	if bestEdge.gap > best.gap+g.settings.EdgeAxisBias {
		g.boxEdgeContact(boxA, boxB, relB, axesB, bestEdge, c)
		return
	}

	if best.box == 0 {
		g.boxFaceContact(boxA, best.i, best.normal, boxB, relB, cull, c)
		c.normal = best.normal
		return
	}

	// Reference face on B: clip in B's frame and flip the result back
	relA := relB.Inverse()
	normalB := relB.InverseRotateVector(best.normal.Mul(-1))
	g.boxFaceContact(boxB, best.i, normalB, boxA, relA, cull, c)
	c.flip()
	c.normal = best.normal
}

// boxFaceContact clips the incident face of inc against the reference face of
// ref along axis. normal is the reference face normal in ref's frame, pointing
// toward inc; incTransform places inc in ref's frame. Points are written with
// ref on the A side.
func (g *Generator) boxFaceContact(ref *actor.Box, axis int, normal mgl64.Vec3, inc *actor.Box, incTransform actor.Transform, cull float64, c *candidates) {
	sign := 1.0
	if normal[axis] < 0 {
		sign = -1
	}
	refFace := actor.BoxFaceIndex(axis, sign > 0)
	h := ref.HalfExtents

	// Incident face: the face of inc most opposed to the reference normal
	incFace := inc.MostAlignedFace(incTransform.InverseRotateVector(normal.Mul(-1)))

	var bufA, bufB manifold.VertexBuffer
	bufA.Tolerance = g.settings.ClipTolerance
	bufB.Tolerance = g.settings.ClipTolerance
	for _, idx := range inc.Face(incFace).Indices {
		bufA.Add(incTransform.TransformPoint(inc.Vertex(idx)), constraint.FeatureID{
			TypeA:  constraint.FeatureFace,
			IndexA: uint8(refFace),
			TypeB:  constraint.FeatureVertex,
			IndexB: uint8(idx),
		})
	}

	in, out := &bufA, &bufB
	clip := func(k int, s, distance float64, face int) {
		manifold.ClipVerticesAgainstAxis(out, in, k, s, distance, constraint.FeatureID{
			TypeA:  constraint.FeatureFace,
			IndexA: uint8(face),
		})
		in, out = out, in
	}

	// Side planes
	for k := 0; k < 3; k++ {
		if k == axis {
			continue
		}
		clip(k, 1, h[k], actor.BoxFaceIndex(k, true))
		clip(k, -1, h[k], actor.BoxFaceIndex(k, false))
	}
	// Near plane at the cull distance above the face, far plane at the back face
	clip(axis, sign, h[axis]+cull, refFace)
	clip(axis, -sign, h[axis], actor.BoxFaceIndex(axis, sign < 0))

	for _, v := range in.Slice() {
		separation := sign*v.Position[axis] - h[axis]
		onFace := v.Position
		onFace[axis] = sign * h[axis]
		c.add(constraint.ContactPoint{
			LocalA:     onFace,
			LocalB:     incTransform.InverseTransformPoint(v.Position),
			Separation: separation,
			Feature:    v.Feature,
		})
	}

	c.set(manifold.RemoveCoincidentContactPoints(c.slice(), g.settings.MinContactSpacing))
}

// boxEdge returns the end points of the edge of a box (centered at the origin
// of its frame) parallel to axis and furthest along direction, with its index.
func boxEdge(h mgl64.Vec3, axis int, direction func(k int) float64) (mgl64.Vec3, mgl64.Vec3, uint8) {
	var center mgl64.Vec3
	index := axis * 4
	bit := 1
	for k := 0; k < 3; k++ {
		if k == axis {
			continue
		}
		if direction(k) >= 0 {
			center[k] = h[k]
			index |= bit
		} else {
			center[k] = -h[k]
		}
		bit <<= 1
	}

	var half mgl64.Vec3
	half[axis] = h[axis]
	return center.Sub(half), center.Add(half), uint8(index)
}

// boxEdgeContact builds the single point of an edge-edge contact, at the
// closest points of the two support edges.
func (g *Generator) boxEdgeContact(boxA, boxB *actor.Box, relB actor.Transform, axesB [3]mgl64.Vec3, axis satAxis, c *candidates) {
	n := axis.normal

	// A's edge furthest along n, B's edge furthest along -n
	a0, a1, edgeA := boxEdge(boxA.HalfExtents, axis.i, func(k int) float64 { return n[k] })
	b0, b1, edgeB := boxEdge(boxB.HalfExtents, axis.j, func(k int) float64 { return -n.Dot(axesB[k]) })
	b0 = relB.TransformPoint(b0)
	b1 = relB.TransformPoint(b1)

	_, _, pA, pB := closestPointsSegments(a0, a1, b0, b1)

	c.normal = n
	c.add(constraint.ContactPoint{
		LocalA:     pA,
		LocalB:     relB.InverseTransformPoint(pB),
		Separation: pB.Sub(pA).Dot(n),
		Feature: constraint.FeatureID{
			TypeA:  constraint.FeatureEdge,
			IndexA: edgeA,
			TypeB:  constraint.FeatureEdge,
			IndexB: edgeB,
		},
	})
}
