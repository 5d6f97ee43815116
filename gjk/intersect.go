package gjk

import "github.com/go-gl/mathgl/mgl64"

// Intersect is the boolean form of GJK: it only answers whether the shapes
// overlap, without tracking closest points. On overlap the simplex usually
// ends as a tetrahedron enclosing the origin, which EPA can expand directly.
// The newest vertex is always stored last.
func Intersect(pair *Pair, direction mgl64.Vec3, simplex *Simplex) bool {
	if direction.LenSqr() < 1e-16 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Vertices[0] = pair.Support(direction)
	simplex.Count = 1

	direction = simplex.Vertices[0].W.Mul(-1)
	if direction.LenSqr() < 1e-16 {
		// Touching at a single point
		return true
	}

	for i := 0; i < DefaultMaxIterations; i++ {
		vertex := pair.Support(direction)

		// The new point does not pass the origin: separating axis found
		if vertex.W.Dot(direction) <= 0 {
			return false
		}

		simplex.Vertices[simplex.Count] = vertex
		simplex.Count++

		if simplex.refine(&direction) {
			return true
		}
	}

	return false
}

// refine reduces the simplex to the feature facing the origin and updates the
// search direction. It reports true once the origin is enclosed or touched.
func (s *Simplex) refine(direction *mgl64.Vec3) bool {
	switch s.Count {
	case 2:
		return s.refineLine(direction)
	case 3:
		return s.refineTriangle(direction)
	case 4:
		return s.refineTetrahedron(direction)
	}
	return false
}

func (s *Simplex) keep(vertices ...Vertex) {
	s.Count = copy(s.Vertices[:], vertices)
}

func (s *Simplex) refineLine(direction *mgl64.Vec3) bool {
	a, b := s.Vertices[1], s.Vertices[0]
	ab := b.W.Sub(a.W)
	ao := a.W.Mul(-1)

	if ab.LenSqr() < 1e-16 {
		s.keep(a)
		*direction = ao
		return ao.LenSqr() < 1e-16
	}

	if ab.Dot(ao) <= 0 {
		s.keep(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < 1e-16 {
		// Origin on the segment
		return true
	}
	*direction = perp
	return false
}

func (s *Simplex) refineTriangle(direction *mgl64.Vec3) bool {
	a, b, c := s.Vertices[2], s.Vertices[1], s.Vertices[0]
	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ao := a.W.Mul(-1)
	abc := ab.Cross(ac)

	if abc.LenSqr() < 1e-16 {
		// Collinear, drop the oldest point
		s.keep(b, a)
		return s.refineLine(direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		s.keep(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}
	if abc.Cross(ac).Dot(ao) > 0 {
		s.keep(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	side := abc.Dot(ao)
	switch {
	case side > 0:
		*direction = abc
	case side < 0:
		// Keep the winding so that abc faces the origin
		s.keep(b, c, a)
		*direction = abc.Mul(-1)
	default:
		// Origin in the triangle plane
		return true
	}
	return false
}

func (s *Simplex) refineTetrahedron(direction *mgl64.Vec3) bool {
	a, b, c, d := s.Vertices[3], s.Vertices[2], s.Vertices[1], s.Vertices[0]
	ab := b.W.Sub(a.W)
	ac := c.W.Sub(a.W)
	ad := d.W.Sub(a.W)
	ao := a.W.Mul(-1)

	// Face normals oriented away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < 1e-16 || acd.LenSqr() < 1e-16 || adb.LenSqr() < 1e-16 {
		s.keep(c, b, a)
		return s.refineTriangle(direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.keep(c, b, a)
	case acd.Dot(ao) > 0:
		s.keep(d, c, a)
	case adb.Dot(ao) > 0:
		s.keep(b, d, a)
	default:
		return true
	}
	return s.refineTriangle(direction)
}

func outward(normal, toOpposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(toOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
