// Package oneshot generates contact manifolds for pairs of convex colliders in
// a single pass. Each evaluation writes at most four contact points into a
// caller owned constraint and never keeps a reference to it.
//
// Conventions:
//   - The manifold normal is in world space and points from A toward B.
//   - Separation is positive when the shapes are apart, negative when they overlap.
//   - Contact points are stored in the local frame of both colliders.
package oneshot

import (
	"math"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/akmonengine/oneshot/epa"
	"github.com/akmonengine/oneshot/gjk"
	"github.com/akmonengine/oneshot/manifold"
	"github.com/go-gl/mathgl/mgl64"
)

// maxCandidates bounds the points gathered before reduction.
const maxCandidates = manifold.MaxClipVertices

// pairRoute selects the generator of a shape pair. Swapped pairs are
// generated with A and B exchanged, then flipped back.
type pairRoute struct {
	kind PairKind
	swap bool
}

var pairTable = [actor.KindCount][actor.KindCount]pairRoute{
	actor.KindBox: {
		actor.KindBox:        {kind: PairBoxBox},
		actor.KindConvexHull: {kind: PairConvexConvex},
		actor.KindCapsule:    {kind: PairCapsuleConvex, swap: true},
		actor.KindTriangle:   {kind: PairConvexConvex},
	},
	actor.KindConvexHull: {
		actor.KindBox:        {kind: PairConvexConvex},
		actor.KindConvexHull: {kind: PairConvexConvex},
		actor.KindCapsule:    {kind: PairCapsuleConvex, swap: true},
		actor.KindTriangle:   {kind: PairConvexConvex},
	},
	actor.KindCapsule: {
		actor.KindBox:        {kind: PairCapsuleConvex},
		actor.KindConvexHull: {kind: PairCapsuleConvex},
		actor.KindCapsule:    {kind: PairCapsuleCapsule},
		actor.KindTriangle:   {kind: PairCapsuleConvex},
	},
	actor.KindTriangle: {
		actor.KindBox:        {kind: PairConvexConvex},
		actor.KindConvexHull: {kind: PairConvexConvex},
		actor.KindCapsule:    {kind: PairCapsuleConvex, swap: true},
		actor.KindTriangle:   {kind: PairConvexConvex},
	},
}

// candidates collects contact points in the local frame of A before reduction.
type candidates struct {
	// normal in A's local frame, from A toward B
	normal mgl64.Vec3
	points [maxCandidates]constraint.ContactPoint
	count  int
}

func (c *candidates) add(p constraint.ContactPoint) {
	if c.count == maxCandidates {
		return
	}
	c.points[c.count] = p
	c.count++
}

func (c *candidates) slice() []constraint.ContactPoint {
	return c.points[:c.count]
}

// set replaces the points with the first n points of points.
func (c *candidates) set(points []constraint.ContactPoint) {
	c.count = copy(c.points[:], points)
}

// flip exchanges the A and B sides of the points, for generators working in B's frame.
func (c *candidates) flip() {
	for i := 0; i < c.count; i++ {
		c.points[i].Flip()
	}
}

// Generator produces contact manifolds. It is immutable once built and safe
// for concurrent use.
type Generator struct {
	settings Settings
	tracer   Tracer
	stats    *Stats
}

type Option func(*Generator)

// WithTracer installs a tracer receiving the profiling hooks.
func WithTracer(tracer Tracer) Option {
	return func(g *Generator) {
		g.tracer = combineTracers(g.tracer, tracer)
	}
}

// NewGenerator validates settings and builds a generator.
func NewGenerator(settings Settings, opts ...Option) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{settings: settings}
	if settings.EnableStats {
		g.stats = &Stats{}
		g.tracer = g.stats
	}
	if debugBuild && settings.TraceDegenerate {
		g.tracer = combineTracers(g.tracer, NewLogTracer(nil))
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.tracer == nil {
		g.tracer = nopTracer{}
	}

	return g, nil
}

func (g *Generator) Settings() Settings {
	return g.settings
}

// Stats returns the counters installed by Settings.EnableStats, or nil.
func (g *Generator) Stats() *Stats {
	return g.stats
}

// Generate computes the manifold of a and b and writes it into out.
// Shapes further apart than cullDistance produce an empty manifold.
func (g *Generator) Generate(a, b *actor.Collider, dt, cullDistance float64, out *constraint.ContactConstraint) {
	out.Reset()
	out.A, out.B = a, b
	out.Dt = dt
	if a == nil || b == nil || a.Shape == nil || b.Shape == nil {
		return
	}

	route := pairTable[a.Shape.Kind()][b.Shape.Kind()]
	g.tracer.BeginPair(route.kind)

	// Cheap reject on the bounds
	if !a.AABB().Expand(cullDistance).Overlaps(b.AABB()) {
		g.tracer.EndPair(route.kind, 0)
		return
	}

	if route.swap {
		a, b = b, a
	}

	var c candidates
	switch route.kind {
	case PairBoxBox:
		g.boxBox(a, b, cullDistance, &c)
	case PairConvexConvex:
		g.convexConvex(a, b, cullDistance, &c)
	case PairCapsuleConvex:
		g.capsuleConvex(a, b, cullDistance, &c)
	case PairCapsuleCapsule:
		g.capsuleCapsule(a, b, cullDistance, &c)
	}

	g.emit(a, b, &c, out)
	if route.swap {
		out.Flip()
	}

	g.tracer.EndPair(route.kind, out.Len())
}

// emit reduces the candidates to a manifold and writes it into out.
func (g *Generator) emit(a, b *actor.Collider, c *candidates, out *constraint.ContactConstraint) {
	out.A, out.B = a, b
	if c.count == 0 {
		return
	}

	points := c.slice()
	if len(points) > constraint.MaxManifoldPoints {
		points = manifold.ReduceManifoldContactPoints(points, c.normal)
	}

	normal := a.Transform.RotateVector(c.normal)
	out.Normal = normal
	for i := range points {
		points[i].Normal = normal
		out.AddPoint(points[i])
	}
}

// query is the outcome of the GJK/EPA stage, in the frame of A.
type query struct {
	// normal from A toward B
	normal mgl64.Vec3
	// separation is negative when penetrating
	separation     float64
	pointA, pointB mgl64.Vec3
}

// separate runs GJK and falls back to EPA when the shapes overlap. It returns
// false when the shapes are further apart than cull or when EPA fails.
func (g *Generator) separate(kind PairKind, pair *gjk.Pair, cull float64) (query, bool) {
	result := gjk.Distance(pair, g.settings.GJKMaxIterations)
	if !result.Overlap {
		if result.Distance > cull {
			return query{}, false
		}
		if result.Distance > touchingDistance {
			d := result.PointB.Sub(result.PointA)
			return query{
				normal:     d.Mul(1 / result.Distance),
				separation: result.Distance,
				pointA:     result.PointA,
				pointB:     result.PointB,
			}, true
		}
	}

	// EPA needs a tetrahedron; the boolean GJK usually provides one directly
	simplex := result.Simplex
	if simplex.Count < 4 {
		var full gjk.Simplex
		if gjk.Intersect(pair, result.PointB.Sub(result.PointA), &full) && full.Count == 4 {
			simplex = full
		}
	}

	penetration, err := epa.EPA(pair, &simplex, g.settings.EPAMaxIterations, g.settings.EPATolerance)
	if err != nil {
		g.tracer.Degenerate(kind, err.Error())
		return query{}, false
	}
	if math.Abs(penetration.Normal.LenSqr()-1) > 1e-6 {
		g.tracer.Degenerate(kind, "epa: invalid normal")
		return query{}, false
	}

	return query{
		normal:     penetration.Normal,
		separation: -penetration.Depth,
		pointA:     penetration.PointA,
		pointB:     penetration.PointB,
	}, true
}

// touchingDistance is the gap under which GJK cannot give a reliable normal
// and EPA takes over.
const touchingDistance = 1e-9
