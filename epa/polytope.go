package epa

import (
	"fmt"
	"math"

	"github.com/akmonengine/oneshot/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	maxPolytopeVertices = 64
	// a closed triangulated polytope with V vertices has 2V-4 faces
	maxPolytopeFaces = 2*maxPolytopeVertices - 4
	maxHorizonEdges  = maxPolytopeVertices

	minFaceArea     = 1e-12
	visibilityEps   = 1e-10
	blowUpTolerance = 1e-8
)

type edge struct {
	from, to int
}

// Polytope is the expanding polytope. All buffers are fixed arrays so that a
// Polytope lives on the caller's stack.
type Polytope struct {
	vertices    [maxPolytopeVertices]gjk.Vertex
	vertexCount int

	faces     [maxPolytopeFaces]Face
	faceCount int

	horizon      [maxHorizonEdges]edge
	horizonCount int
}

// Reset empties the polytope for reuse.
func (p *Polytope) Reset() {
	p.vertexCount = 0
	p.faceCount = 0
	p.horizonCount = 0
}

func (p *Polytope) addVertex(v gjk.Vertex) (int, error) {
	if p.vertexCount == maxPolytopeVertices {
		return -1, fmt.Errorf("%d vertices: %w", p.vertexCount, ErrPolytopeOverflow)
	}
	p.vertices[p.vertexCount] = v
	p.vertexCount++
	return p.vertexCount - 1, nil
}

func (p *Polytope) addFace(i, j, k int) error {
	if p.faceCount == maxPolytopeFaces {
		return fmt.Errorf("%d faces: %w", p.faceCount, ErrPolytopeOverflow)
	}
	p.faces[p.faceCount] = newFace(i, j, k, p.vertices[i].W, p.vertices[j].W, p.vertices[k].W)
	p.faceCount++
	return nil
}

// Seed builds the initial polytope from a GJK simplex. A simplex with fewer
// than 4 vertices (shapes touching) is first blown up into a tetrahedron by
// additional support queries.
func (p *Polytope) Seed(pair *gjk.Pair, simplex *gjk.Simplex) error {
	p.Reset()
	for i := 0; i < simplex.Count; i++ {
		p.vertices[i] = simplex.Vertices[i]
	}
	p.vertexCount = simplex.Count

	if p.vertexCount < 4 {
		if err := p.blowUp(pair); err != nil {
			return err
		}
	}

	return p.buildTetrahedron()
}

// buildTetrahedron creates the four faces with outward winding.
func (p *Polytope) buildTetrahedron() error {
	w := [4]mgl64.Vec3{p.vertices[0].W, p.vertices[1].W, p.vertices[2].W, p.vertices[3].W}

	volume := w[1].Sub(w[0]).Cross(w[2].Sub(w[0])).Dot(w[3].Sub(w[0]))
	if math.Abs(volume) < minFaceArea {
		return fmt.Errorf("flat tetrahedron (volume %g): %w", volume, ErrDegenerate)
	}

	centroid := w[0].Add(w[1]).Add(w[2]).Add(w[3]).Mul(0.25)
	tris := [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
	for _, t := range tris {
		i, j, k := t[0], t[1], t[2]
		n := w[j].Sub(w[i]).Cross(w[k].Sub(w[i]))
		if n.Dot(w[i].Sub(centroid)) < 0 {
			j, k = k, j
		}
		if err := p.addFace(i, j, k); err != nil {
			return err
		}
	}
	return nil
}

// blowUp grows a 1-3 vertex simplex into a non-degenerate tetrahedron.
func (p *Polytope) blowUp(pair *gjk.Pair) error {
	axes := [6]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

	if p.vertexCount == 0 {
		p.vertices[0] = pair.Support(axes[0])
		p.vertexCount = 1
	}

	if p.vertexCount == 1 {
		for _, axis := range axes {
			v := pair.Support(axis)
			if v.W.Sub(p.vertices[0].W).LenSqr() > blowUpTolerance*blowUpTolerance {
				p.vertices[1] = v
				p.vertexCount = 2
				break
			}
		}
		if p.vertexCount < 2 {
			return fmt.Errorf("single point Minkowski difference: %w", ErrDegenerate)
		}
	}

	if p.vertexCount == 2 {
		line := p.vertices[1].W.Sub(p.vertices[0].W).Normalize()

		// Pick the axis least aligned with the segment to build a perpendicular
		axis := mgl64.Vec3{1, 0, 0}
		if math.Abs(line.Y()) < math.Abs(line.X()) && math.Abs(line.Y()) <= math.Abs(line.Z()) {
			axis = mgl64.Vec3{0, 1, 0}
		} else if math.Abs(line.Z()) < math.Abs(line.X()) {
			axis = mgl64.Vec3{0, 0, 1}
		}
		perp := line.Cross(axis).Normalize()

		for step := 0; step < 6; step++ {
			dir := mgl64.QuatRotate(float64(step)*math.Pi/3, line).Rotate(perp)
			v := pair.Support(dir)

			offset := v.W.Sub(p.vertices[0].W)
			if offset.Cross(line).LenSqr() > blowUpTolerance*blowUpTolerance {
				p.vertices[2] = v
				p.vertexCount = 3
				break
			}
		}
		if p.vertexCount < 3 {
			return fmt.Errorf("segment Minkowski difference: %w", ErrDegenerate)
		}
	}

	if p.vertexCount == 3 {
		w0 := p.vertices[0].W
		n := p.vertices[1].W.Sub(w0).Cross(p.vertices[2].W.Sub(w0))
		if n.LenSqr() < minFaceArea*minFaceArea {
			return fmt.Errorf("collinear simplex: %w", ErrDegenerate)
		}
		n = n.Normalize()

		up := pair.Support(n)
		down := pair.Support(n.Mul(-1))
		upDist := math.Abs(up.W.Sub(w0).Dot(n))
		downDist := math.Abs(down.W.Sub(w0).Dot(n))

		best, bestDist := up, upDist
		if downDist > upDist {
			best, bestDist = down, downDist
		}
		if bestDist < blowUpTolerance {
			return fmt.Errorf("planar Minkowski difference: %w", ErrDegenerate)
		}
		p.vertices[3] = best
		p.vertexCount = 4
	}

	return nil
}

// closestFace returns the index of the live face nearest to the origin.
// On ties the lowest index wins.
func (p *Polytope) closestFace() int {
	best := -1
	bestDist := math.Inf(1)
	for i := 0; i < p.faceCount; i++ {
		if d := p.faces[i].Distance; d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// expand adds a support vertex: faces visible from it are removed and the
// resulting hole is closed with a fan of faces around the new vertex.
func (p *Polytope) expand(v gjk.Vertex) error {
	index, err := p.addVertex(v)
	if err != nil {
		return err
	}

	p.horizonCount = 0
	for i := 0; i < p.faceCount; {
		face := &p.faces[i]
		if face.degenerate() || face.Normal.Dot(v.W.Sub(p.vertices[face.Indices[0]].W)) <= visibilityEps {
			i++
			continue
		}

		for e := 0; e < 3; e++ {
			if err := p.toggleHorizon(face.Indices[e], face.Indices[(e+1)%3]); err != nil {
				return err
			}
		}

		// swap with last, do not advance
		p.faceCount--
		p.faces[i] = p.faces[p.faceCount]
	}

	for i := 0; i < p.horizonCount; i++ {
		e := p.horizon[i]
		if err := p.addFace(e.from, e.to, index); err != nil {
			return err
		}
	}
	return nil
}

// toggleHorizon records a directed edge of a removed face. An edge shared by
// two removed faces appears in both directions and cancels out, leaving only
// the horizon.
func (p *Polytope) toggleHorizon(from, to int) error {
	for i := 0; i < p.horizonCount; i++ {
		if p.horizon[i].from == to && p.horizon[i].to == from {
			p.horizonCount--
			p.horizon[i] = p.horizon[p.horizonCount]
			return nil
		}
	}
	if p.horizonCount == maxHorizonEdges {
		return fmt.Errorf("%d horizon edges: %w", p.horizonCount, ErrPolytopeOverflow)
	}
	p.horizon[p.horizonCount] = edge{from: from, to: to}
	p.horizonCount++
	return nil
}

// result projects the origin on the face and interpolates the witness points.
func (p *Polytope) result(faceIndex int) Result {
	face := &p.faces[faceIndex]
	v0 := &p.vertices[face.Indices[0]]
	v1 := &p.vertices[face.Indices[1]]
	v2 := &p.vertices[face.Indices[2]]

	projection := face.Normal.Mul(face.Distance)
	u, v, w, _ := barycentric(projection, v0.W, v1.W, v2.W)

	return Result{
		Normal: snapNormalToAxis(face.Normal),
		Depth:  math.Max(face.Distance, 0),
		PointA: v0.A.Mul(u).Add(v1.A.Mul(v)).Add(v2.A.Mul(w)),
		PointB: v0.B.Mul(u).Add(v1.B.Mul(v)).Add(v2.B.Mul(w)),
	}
}
