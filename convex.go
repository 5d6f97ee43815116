package oneshot

import (
	"math"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/akmonengine/oneshot/gjk"
	"github.com/akmonengine/oneshot/manifold"
	"github.com/go-gl/mathgl/mgl64"
)

// convexConvex handles every pair of polytopes (box, hull, triangle) with
// GJK/EPA. The normal picks a reference face on either shape: a well aligned
// face gives a clipped face contact, otherwise an edge contact is built.
func (g *Generator) convexConvex(a, b *actor.Collider, cull float64, c *candidates) {
	polyA, okA := a.Shape.(actor.Polytope)
	polyB, okB := b.Shape.(actor.Polytope)
	if !okA || !okB {
		return
	}

	relB := a.Transform.Relative(b.Transform)
	pair := gjk.Pair{A: a.Shape, B: b.Shape, Transform: relB}

	q, ok := g.separate(PairConvexConvex, &pair, cull)
	if !ok {
		return
	}
	n := q.normal

	faceA := polyA.MostAlignedFace(n)
	alignA := polyA.Face(faceA).Plane.Normal.Dot(n)
	nB := relB.InverseRotateVector(n.Mul(-1))
	faceB := polyB.MostAlignedFace(nB)
	alignB := polyB.Face(faceB).Plane.Normal.Dot(nB)

	if math.Max(alignA, alignB) >= g.settings.FaceContactCos {
		if alignA+g.settings.FaceBias >= alignB {
			g.clipFaces(polyA, faceA, polyB, relB, cull, c)
			c.normal = polyA.Face(faceA).Plane.Normal
		} else {
			g.clipFaces(polyB, faceB, polyA, relB.Inverse(), cull, c)
			c.flip()
			c.normal = relB.RotateVector(polyB.Face(faceB).Plane.Normal).Mul(-1)
		}
		if c.count > 0 {
			return
		}
	}

	c.count = 0
	c.normal = n
	g.edgeContact(polyA, faceA, polyB, faceB, relB, q, cull, c)
}

// clipFaces clips the incident face of inc (the face most opposed to the
// reference face) against the side planes of the reference face of ref.
// incTransform places inc in ref's frame. Points are written with ref on the
// A side and projected onto the reference face.
func (g *Generator) clipFaces(ref actor.Polytope, refFace int, inc actor.Polytope, incTransform actor.Transform, cull float64, c *candidates) {
	face := ref.Face(refFace)
	n := face.Plane.Normal
	incFace := inc.MostAlignedFace(incTransform.InverseRotateVector(n.Mul(-1)))

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
	m := len(face.Indices)
	for i := 0; i < m; i++ {
		v0 := ref.Vertex(face.Indices[i])
		v1 := ref.Vertex(face.Indices[(i+1)%m])

		// Side plane normal points out of the face polygon
		side := v1.Sub(v0).Cross(n)
		if side.LenSqr() < geometryEpsilon {
			continue
		}
		manifold.ClipVerticesAgainstPlane(out, in, side.Normalize(), v0, constraint.FeatureID{
			TypeA:  constraint.FeatureEdge,
			IndexA: uint8(face.Indices[i]),
		})
		in, out = out, in
		if in.Count == 0 {
			return
		}
	}

	for _, v := range in.Slice() {
		separation := face.Plane.Distance(v.Position)
		if separation > cull {
			continue
		}
		c.add(constraint.ContactPoint{
			LocalA:     v.Position.Sub(n.Mul(separation)),
			LocalB:     incTransform.InverseTransformPoint(v.Position),
			Separation: separation,
			Feature:    v.Feature,
		})
	}

	c.set(manifold.RemoveCoincidentContactPoints(c.slice(), g.settings.MinContactSpacing))
}

// edgePair is a candidate pair of edges for an edge contact.
type edgePair struct {
	a0, a1, b0, b1 mgl64.Vec3
	// vertex indices of the edge starts
	ia, ib int
	// next vertex indices of the edges
	ja, jb int
}

// edgeContact picks the edges of the two support faces whose closest points
// best match the GJK/EPA normal and depth. Crossing edges give one point,
// near-parallel edges the two ends of their overlap. Without a matching edge
// pair the witness points are used.
func (g *Generator) edgeContact(polyA actor.Polytope, faceA int, polyB actor.Polytope, faceB int, relB actor.Transform, q query, cull float64, c *candidates) {
	n := q.normal
	expected := n.Mul(q.separation)

	indicesA := polyA.Face(faceA).Indices
	indicesB := polyB.Face(faceB).Indices

	var best edgePair
	bestScore := math.Inf(1)
	for i := range indicesA {
		ia, ja := indicesA[i], indicesA[(i+1)%len(indicesA)]
		a0, a1 := polyA.Vertex(ia), polyA.Vertex(ja)
		for j := range indicesB {
			ib, jb := indicesB[j], indicesB[(j+1)%len(indicesB)]
			b0 := relB.TransformPoint(polyB.Vertex(ib))
			b1 := relB.TransformPoint(polyB.Vertex(jb))

			_, _, pA, pB := closestPointsSegments(a0, a1, b0, b1)
			if score := pB.Sub(pA).Sub(expected).Len(); score < bestScore {
				bestScore = score
				best = edgePair{a0: a0, a1: a1, b0: b0, b1: b1, ia: ia, ib: ib, ja: ja, jb: jb}
			}
		}
	}

	if bestScore > g.settings.EdgePruneTolerance {
		if q.separation <= cull {
			c.add(constraint.ContactPoint{
				LocalA:     q.pointA,
				LocalB:     relB.InverseTransformPoint(q.pointB),
				Separation: q.separation,
				Feature: constraint.FeatureID{
					TypeA:  constraint.FeatureFace,
					IndexA: uint8(faceA),
					TypeB:  constraint.FeatureFace,
					IndexB: uint8(faceB),
				},
			})
		}
		return
	}

	g.edgePairPoints(best, n, relB, cull, c)

	points := manifold.PruneEdgeContactPointsUnordered(c.slice(), g.settings.EdgePruneTolerance)
	c.set(manifold.RemoveCoincidentContactPoints(points, g.settings.MinContactSpacing))
}

// edgePairPoints writes the contact points of an edge pair expressed in A's
// frame. relB maps B's local frame into A's.
func (g *Generator) edgePairPoints(e edgePair, n mgl64.Vec3, relB actor.Transform, cull float64, c *candidates) {
	edgeFeature := constraint.FeatureID{
		TypeA:  constraint.FeatureEdge,
		IndexA: uint8(e.ia),
		TypeB:  constraint.FeatureEdge,
		IndexB: uint8(e.ib),
	}

	add := func(pA, pB mgl64.Vec3, feature constraint.FeatureID) {
		separation := pB.Sub(pA).Dot(n)
		if separation > cull {
			return
		}
		c.add(constraint.ContactPoint{
			LocalA:     pA,
			LocalB:     relB.InverseTransformPoint(pB),
			Separation: separation,
			Feature:    feature,
		})
	}

	dirA := e.a1.Sub(e.a0)
	lengthA := dirA.Len()
	dirB := e.b1.Sub(e.b0)
	lengthB := dirB.Len()

	parallel := lengthA > geometryEpsilon && lengthB > geometryEpsilon &&
		dirA.Cross(dirB).Len() < g.settings.ParallelTolerance*lengthA*lengthB
	if !parallel {
		_, _, pA, pB := closestPointsSegments(e.a0, e.a1, e.b0, e.b1)
		add(pA, pB, edgeFeature)
		return
	}

	// Overlap of B's edge projected on A's edge, in A's edge parameter
	u := dirA.Mul(1 / lengthA)
	t0 := e.b0.Sub(e.a0).Dot(u)
	t1 := e.b1.Sub(e.a0).Dot(u)
	startB, endB := e.ib, e.jb
	if t0 > t1 {
		t0, t1 = t1, t0
		startB, endB = endB, startB
	}

	lo, loFeature := t0, constraint.FeatureID{TypeA: constraint.FeatureEdge, IndexA: uint8(e.ia), TypeB: constraint.FeatureVertex, IndexB: uint8(startB)}
	if lo <= 0 {
		lo, loFeature = 0, constraint.FeatureID{TypeA: constraint.FeatureVertex, IndexA: uint8(e.ia), TypeB: constraint.FeatureEdge, IndexB: uint8(e.ib)}
	}
	hi, hiFeature := t1, constraint.FeatureID{TypeA: constraint.FeatureEdge, IndexA: uint8(e.ia), TypeB: constraint.FeatureVertex, IndexB: uint8(endB)}
	if hi >= lengthA {
		hi, hiFeature = lengthA, constraint.FeatureID{TypeA: constraint.FeatureVertex, IndexA: uint8(e.ja), TypeB: constraint.FeatureEdge, IndexB: uint8(e.ib)}
	}

	if hi-lo <= g.settings.MinContactSpacing {
		_, _, pA, pB := closestPointsSegments(e.a0, e.a1, e.b0, e.b1)
		add(pA, pB, edgeFeature)
		return
	}

	for _, end := range [2]struct {
		t       float64
		feature constraint.FeatureID
	}{{lo, loFeature}, {hi, hiFeature}} {
		pA := e.a0.Add(u.Mul(end.t))
		add(pA, closestPointSegment(pA, e.b0, e.b1), end.feature)
	}
}
