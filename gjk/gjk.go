// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) distance algorithm.
//
// GJK computes the closest points between two convex shapes by searching the
// point of their Minkowski difference (A - B) closest to the origin. The
// simplex is refined incrementally and typically converges in 3-8 iterations.
// When the origin is enclosed the shapes overlap, and the final simplex seeds
// the expanding polytope algorithm (package epa).
//
// Shapes only need to expose a support function in their local frame. A Pair
// places B into the frame of A, in which every result is expressed.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Ericson: "Real-Time Collision Detection" (2004), closest point queries
package gjk

import (
	"math"

	"github.com/akmonengine/oneshot/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations bounds the number of support queries.
	DefaultMaxIterations = 32

	// relativeTolerance stops the search when a new support point improves the
	// squared distance by less than this fraction.
	relativeTolerance = 1e-10

	// overlapTolerance is the distance under which the shapes are considered touching.
	overlapTolerance = 1e-9
)

// Support is a convex shape seen through its support mapping.
type Support interface {
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// Vertex is a point of the Minkowski difference with the two support points
// that produced it, W = A - B.
type Vertex struct {
	W, A, B mgl64.Vec3
	bary    float64
}

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// Size progression: 1 point → 2 points (line) → 3 points (triangle) → 4 points (tetrahedron)
type Simplex struct {
	Vertices [4]Vertex
	Count    int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// Result is the outcome of a distance query.
type Result struct {
	// PointA and PointB are the closest points on A and B (witness points)
	PointA, PointB mgl64.Vec3
	// Distance between the witness points, zero when Overlap is set
	Distance float64
	// Overlap is set when the origin is inside (or on) the Minkowski difference
	Overlap    bool
	Iterations int
	Simplex    Simplex
}

// Pair is the Minkowski difference (A - B) of two shapes. Transform maps the
// local frame of B into the frame of A.
// Queries take a *Pair, so placing B needs no heap allocation.
type Pair struct {
	A, B      Support
	Transform actor.Transform
}

// NewPair returns the pair of two shapes sharing the same frame.
func NewPair(a, b Support) Pair {
	return Pair{A: a, B: b, Transform: actor.NewTransform()}
}

// Support computes a support vertex of the Minkowski difference, in the frame of A.
func (p *Pair) Support(direction mgl64.Vec3) Vertex {
	supportA := p.A.Support(direction)
	supportB := p.Transform.TransformPoint(p.B.Support(p.Transform.InverseRotateVector(direction.Mul(-1))))
	return Vertex{W: supportA.Sub(supportB), A: supportA, B: supportB}
}

// MinkowskiSupport computes a support vertex of the Minkowski difference (A - B)
// of two shapes sharing the same frame.
func MinkowskiSupport(a, b Support, direction mgl64.Vec3) Vertex {
	pair := NewPair(a, b)
	return pair.Support(direction)
}

// Distance runs GJK on the pair. The result is expressed in the frame of A.
func Distance(pair *Pair, maxIterations int) Result {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	var result Result
	simplex := &result.Simplex

	// Start from an arbitrary support point of the difference
	simplex.Vertices[0] = pair.Support(mgl64.Vec3{1, 0, 0})
	simplex.Vertices[0].bary = 1
	simplex.Count = 1

	closest := simplex.Vertices[0].W
	for result.Iterations < maxIterations {
		distSqr := closest.LenSqr()
		if distSqr < overlapTolerance*overlapTolerance {
			result.Overlap = true
			break
		}

		// Search toward the origin from the current closest point
		vertex := pair.Support(closest.Mul(-1))
		result.Iterations++

		// No progress toward the origin: closest point found
		if distSqr-closest.Dot(vertex.W) <= relativeTolerance*distSqr {
			break
		}
		if simplex.contains(vertex.W) {
			break
		}

		simplex.Vertices[simplex.Count] = vertex
		simplex.Count++

		next, enclosed := simplex.solve()
		if enclosed {
			result.Overlap = true
			break
		}
		// GJK must strictly decrease the distance, otherwise numerical noise loops
		if next.LenSqr() >= distSqr {
			break
		}
		closest = next
	}

	result.PointA, result.PointB = simplex.witnessPoints()
	if result.Overlap {
		result.Distance = 0
	} else {
		result.Distance = result.PointA.Sub(result.PointB).Len()
	}
	return result
}

func (s *Simplex) contains(w mgl64.Vec3) bool {
	for i := 0; i < s.Count; i++ {
		if s.Vertices[i].W.Sub(w).LenSqr() < 1e-24 {
			return true
		}
	}
	return false
}

func (s *Simplex) witnessPoints() (mgl64.Vec3, mgl64.Vec3) {
	var pA, pB mgl64.Vec3
	for i := 0; i < s.Count; i++ {
		v := &s.Vertices[i]
		pA = pA.Add(v.A.Mul(v.bary))
		pB = pB.Add(v.B.Mul(v.bary))
	}
	return pA, pB
}

// solve reduces the simplex to the smallest sub-simplex supporting the point
// closest to the origin, updates barycentric weights, and returns that point.
// enclosed is set when the tetrahedron contains the origin.
func (s *Simplex) solve() (closest mgl64.Vec3, enclosed bool) {
	switch s.Count {
	case 1:
		s.Vertices[0].bary = 1
		return s.Vertices[0].W, false
	case 2:
		return s.line(0, 1), false
	case 3:
		return s.triangle(0, 1, 2), false
	case 4:
		return s.tetrahedron()
	}
	return mgl64.Vec3{}, false
}

// set replaces the simplex with the given vertices and weights.
func (s *Simplex) set(vertices [4]Vertex, weights [4]float64, count int) mgl64.Vec3 {
	var closest mgl64.Vec3
	for i := 0; i < count; i++ {
		vertices[i].bary = weights[i]
		closest = closest.Add(vertices[i].W.Mul(weights[i]))
	}
	s.Vertices = vertices
	s.Count = count
	return closest
}

// line handles the segment case (vertices i, j).
func (s *Simplex) line(i, j int) mgl64.Vec3 {
	a, b := s.Vertices[i], s.Vertices[j]
	ab := b.W.Sub(a.W)

	denom := ab.LenSqr()
	if denom < 1e-24 {
		// Degenerate segment: keep the newest point
		return s.set([4]Vertex{b}, [4]float64{1}, 1)
	}

	t := -a.W.Dot(ab) / denom
	if t <= 0 {
		return s.set([4]Vertex{a}, [4]float64{1}, 1)
	}
	if t >= 1 {
		return s.set([4]Vertex{b}, [4]float64{1}, 1)
	}
	return s.set([4]Vertex{a, b}, [4]float64{1 - t, t}, 2)
}

// triangle handles the triangle case using Voronoi regions of the origin.
func (s *Simplex) triangle(i, j, k int) mgl64.Vec3 {
	a, b, c := s.Vertices[i], s.Vertices[j], s.Vertices[k]
	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)

	// Collinear points: the closest feature is one of the edges
	if ab.Cross(ac).LenSqr() < 1e-24 {
		return s.bestEdge(a, b, c)
	}

	ap := a.W.Mul(-1)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return s.set([4]Vertex{a}, [4]float64{1}, 1)
	}

	bp := b.W.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return s.set([4]Vertex{b}, [4]float64{1}, 1)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return s.set([4]Vertex{a, b}, [4]float64{1 - v, v}, 2)
	}

	cp := c.W.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return s.set([4]Vertex{c}, [4]float64{1}, 1)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return s.set([4]Vertex{a, c}, [4]float64{1 - w, w}, 2)
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return s.set([4]Vertex{b, c}, [4]float64{1 - w, w}, 2)
	}

	denom := va + vb + vc
	if math.Abs(denom) < 1e-24 {
		return s.bestEdge(a, b, c)
	}
	v := vb / denom
	w := vc / denom
	return s.set([4]Vertex{a, b, c}, [4]float64{1 - v - w, v, w}, 3)
}

func (s *Simplex) bestEdge(a, b, c Vertex) mgl64.Vec3 {
	var best Simplex
	var bestPoint mgl64.Vec3
	bestDist := math.Inf(1)

	edges := [3][2]Vertex{{a, b}, {a, c}, {b, c}}
	for _, e := range edges {
		candidate := Simplex{Vertices: [4]Vertex{e[0], e[1]}, Count: 2}
		p := candidate.line(0, 1)
		if d := p.LenSqr(); d < bestDist {
			bestDist = d
			bestPoint = p
			best = candidate
		}
	}

	*s = best
	return bestPoint
}

// tetrahedron tests the origin against the four faces. Face normals are
// oriented away from the opposite vertex, so the origin is outside a face when
// it lies on the other side of it than the opposite vertex.
func (s *Simplex) tetrahedron() (mgl64.Vec3, bool) {
	a, b, c, d := s.Vertices[0], s.Vertices[1], s.Vertices[2], s.Vertices[3]

	faces := [4][4]Vertex{
		{a, b, c, d},
		{a, c, d, b},
		{a, d, b, c},
		{b, d, c, a},
	}

	var best Simplex
	var bestPoint mgl64.Vec3
	bestDist := math.Inf(1)
	outside := false

	for _, f := range faces {
		if !originOutsideFace(f[0].W, f[1].W, f[2].W, f[3].W) {
			continue
		}
		outside = true

		candidate := Simplex{Vertices: [4]Vertex{f[0], f[1], f[2]}, Count: 3}
		p := candidate.triangle(0, 1, 2)
		if dist := p.LenSqr(); dist < bestDist {
			bestDist = dist
			bestPoint = p
			best = candidate
		}
	}

	if !outside {
		return mgl64.Vec3{}, true
	}

	*s = best
	return bestPoint, false
}

// originOutsideFace reports whether the origin and opposite lie on different
// sides of the plane through a, b, c. A flat tetrahedron counts as outside so
// the simplex is always reduced.
func originOutsideFace(a, b, c, opposite mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signOrigin := a.Mul(-1).Dot(n)
	signOpposite := opposite.Sub(a).Dot(n)

	if signOpposite*signOpposite < 1e-24 {
		return true
	}
	return signOrigin*signOpposite < 0
}
