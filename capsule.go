package oneshot

import (
	"math"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/akmonengine/oneshot/gjk"
	"github.com/akmonengine/oneshot/manifold"
	"github.com/go-gl/mathgl/mgl64"
)

// capsuleConvex collides the core segment of the capsule a with the polytope
// b, then inflates the result by the radius. A capsule lying flat on a face
// is clipped against the face for two points, otherwise one point is made.
func (g *Generator) capsuleConvex(a, b *actor.Collider, cull float64, c *candidates) {
	capsule := a.Shape.(*actor.Capsule)
	poly, ok := b.Shape.(actor.Polytope)
	if !ok {
		return
	}

	relB := a.Transform.Relative(b.Transform)
	pair := gjk.Pair{A: capsuleCore{capsule}, B: b.Shape, Transform: relB}

	q, ok := g.separate(PairCapsuleConvex, &pair, cull+capsule.Radius)
	if !ok {
		return
	}
	n := q.normal
	c.normal = n

	face := poly.MostAlignedFace(relB.InverseRotateVector(n.Mul(-1)))
	if !capsule.IsSphere() {
		p0, p1 := capsule.Segment()
		axis := p1.Sub(p0).Normalize()
		faceNormal := relB.RotateVector(poly.Face(face).Plane.Normal)

		if -faceNormal.Dot(n) >= g.settings.FaceContactCos && math.Abs(axis.Dot(faceNormal)) < g.settings.ParallelTolerance {
			g.clipSegment(capsule, poly, face, relB, cull, c)
			if c.count > 0 {
				// Separations are measured along the face normal
				c.normal = faceNormal.Mul(-1)
				return
			}
		}
	}

	separation := q.separation - capsule.Radius
	if separation > cull {
		return
	}

	typeA := constraint.FeatureEdge
	if capsule.IsSphere() {
		typeA = constraint.FeatureVertex
	}
	c.add(constraint.ContactPoint{
		LocalA:     q.pointA.Add(n.Mul(capsule.Radius)),
		LocalB:     relB.InverseTransformPoint(q.pointB),
		Separation: separation,
		Feature: constraint.FeatureID{
			TypeA:  typeA,
			TypeB:  constraint.FeatureFace,
			IndexB: uint8(face),
		},
	})
}

// clipSegment clips the capsule core against the side planes of a face of
// poly, in the capsule's frame. The face is the reference, so features are
// built with poly on the A side and flipped at the end.
func (g *Generator) clipSegment(capsule *actor.Capsule, poly actor.Polytope, faceIndex int, relB actor.Transform, cull float64, c *candidates) {
	face := poly.Face(faceIndex)
	normal := relB.RotateVector(face.Plane.Normal)
	origin := relB.TransformPoint(poly.Vertex(face.Indices[0]))

	var bufA, bufB manifold.VertexBuffer
	bufA.Tolerance = g.settings.ClipTolerance
	bufB.Tolerance = g.settings.ClipTolerance
	p0, p1 := capsule.Segment()
	for i, p := range [2]mgl64.Vec3{p0, p1} {
		bufA.Add(p, constraint.FeatureID{
			TypeA:  constraint.FeatureFace,
			IndexA: uint8(faceIndex),
			TypeB:  constraint.FeatureVertex,
			IndexB: uint8(i),
		})
	}

	in, out := &bufA, &bufB
	m := len(face.Indices)
	for i := 0; i < m; i++ {
		v0 := relB.TransformPoint(poly.Vertex(face.Indices[i]))
		v1 := relB.TransformPoint(poly.Vertex(face.Indices[(i+1)%m]))
		side := v1.Sub(v0).Cross(normal)
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

	start := c.count
	for _, v := range in.Slice() {
		distance := normal.Dot(v.Position.Sub(origin))
		separation := distance - capsule.Radius
		if separation > cull {
			continue
		}
		c.add(constraint.ContactPoint{
			LocalA:     v.Position.Sub(normal.Mul(capsule.Radius)),
			LocalB:     relB.InverseTransformPoint(v.Position.Sub(normal.Mul(distance))),
			Separation: separation,
			Feature:    v.Feature.Flip(),
		})
	}

	// A clipped segment collapsing to a point is a single contact
	points := manifold.RemoveCoincidentContactPoints(c.points[start:c.count], g.settings.MinContactSpacing)
	c.count = start + len(points)
}

// capsuleCapsule works on the closest points of the two core segments.
// Parallel overlapping capsules get a point at each end of the overlap.
func (g *Generator) capsuleCapsule(a, b *actor.Collider, cull float64, c *candidates) {
	capA := a.Shape.(*actor.Capsule)
	capB := b.Shape.(*actor.Capsule)
	relB := a.Transform.Relative(b.Transform)

	p0, p1 := capA.Segment()
	q0, q1 := capB.Segment()
	q0 = relB.TransformPoint(q0)
	q1 = relB.TransformPoint(q1)
	radius := capA.Radius + capB.Radius

	_, _, c1, c2 := closestPointsSegments(p0, p1, q0, q1)
	d := c2.Sub(c1)
	distance := d.Len()
	if distance-radius > cull {
		return
	}

	dirA := p1.Sub(p0)
	dirB := q1.Sub(q0)
	parallel := !capA.IsSphere() && !capB.IsSphere() &&
		dirA.Cross(dirB).Len() < g.settings.ParallelTolerance*dirA.Len()*dirB.Len()

	// Overlap of B's core projected on A's core, in A's segment parameter
	var lo, hi float64
	var u mgl64.Vec3
	if parallel {
		lengthA := dirA.Len()
		u = dirA.Mul(1 / lengthA)
		t0 := q0.Sub(p0).Dot(u)
		t1 := q1.Sub(p0).Dot(u)
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		lo = math.Max(t0, 0)
		hi = math.Min(t1, lengthA)
		parallel = hi-lo > g.settings.MinContactSpacing
	}

	var n mgl64.Vec3
	switch {
	case parallel:
		// Common perpendicular, not the tilted vector between clamped ends
		n = actor.SafeNormalize(d.Sub(u.Mul(d.Dot(u))), anyPerpendicular(u))
	case distance > geometryEpsilon:
		n = d.Mul(1 / distance)
	case !capA.IsSphere() && !capB.IsSphere():
		n = actor.SafeNormalize(dirA.Cross(dirB), anyPerpendicular(dirA))
	case !capA.IsSphere():
		n = anyPerpendicular(dirA)
	case !capB.IsSphere():
		n = anyPerpendicular(dirB)
	default:
		n = mgl64.Vec3{0, 1, 0}
	}
	c.normal = n

	add := func(pA, pB mgl64.Vec3, feature constraint.FeatureID) {
		separation := pB.Sub(pA).Dot(n) - radius
		if separation > cull {
			return
		}
		c.add(constraint.ContactPoint{
			LocalA:     pA.Add(n.Mul(capA.Radius)),
			LocalB:     relB.InverseTransformPoint(pB.Sub(n.Mul(capB.Radius))),
			Separation: separation,
			Feature:    feature,
		})
	}

	if parallel {
		for i, t := range [2]float64{lo, hi} {
			pA := p0.Add(u.Mul(t))
			add(pA, closestPointSegment(pA, q0, q1), constraint.FeatureID{
				TypeA:  constraint.FeatureVertex,
				IndexA: uint8(i),
				TypeB:  constraint.FeatureEdge,
			})
		}
		return
	}

	add(c1, c2, constraint.FeatureID{TypeA: constraint.FeatureEdge, TypeB: constraint.FeatureEdge})
}
