package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrTooManyVertices = errors.New("convex hull: too many vertices")
	ErrTooManyFaces    = errors.New("convex hull: too many faces")
	ErrInvalidFace     = errors.New("convex hull: invalid face")
	ErrNotConvex       = errors.New("convex hull: not convex")
)

// hullTolerance is the distance a vertex may lie in front of a face plane
// before the hull is rejected as non-convex.
const hullTolerance = 1e-6

// ConvexHull is a convex polytope given by its vertices and faces.
// Build it with NewConvexHull; the zero value is an empty shape.
type ConvexHull struct {
	vertices []mgl64.Vec3
	faces    []Face
}

// NewConvexHull validates and builds a hull. Each face lists vertex indices
// counter-clockwise as seen from outside the hull.
func NewConvexHull(vertices []mgl64.Vec3, faces [][]int) (*ConvexHull, error) {
	if len(vertices) > MaxHullVertices {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyVertices, len(vertices), MaxHullVertices)
	}
	if len(faces) > MaxHullFaces {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFaces, len(faces), MaxHullFaces)
	}
	if len(vertices) < 4 || len(faces) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 vertices and 4 faces", ErrInvalidFace)
	}

	h := &ConvexHull{
		vertices: append([]mgl64.Vec3(nil), vertices...),
		faces:    make([]Face, 0, len(faces)),
	}

	for f, indices := range faces {
		if len(indices) < 3 || len(indices) > MaxFaceVertices {
			return nil, fmt.Errorf("%w: face %d has %d vertices", ErrInvalidFace, f, len(indices))
		}
		for _, idx := range indices {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d", ErrInvalidFace, f, idx)
			}
		}

		// Newell's method is robust to slightly non-planar polygons
		var normal, centroid mgl64.Vec3
		for i, idx := range indices {
			cur := vertices[idx]
			next := vertices[indices[(i+1)%len(indices)]]
			normal[0] += (cur.Y() - next.Y()) * (cur.Z() + next.Z())
			normal[1] += (cur.Z() - next.Z()) * (cur.X() + next.X())
			normal[2] += (cur.X() - next.X()) * (cur.Y() + next.Y())
			centroid = centroid.Add(cur)
		}
		if normal.Len() < 1e-12 {
			return nil, fmt.Errorf("%w: face %d has zero area", ErrInvalidFace, f)
		}
		normal = normal.Normalize()
		centroid = centroid.Mul(1.0 / float64(len(indices)))

		h.faces = append(h.faces, Face{
			Plane:   Plane{Normal: normal, Offset: normal.Dot(centroid)},
			Indices: append([]int(nil), indices...),
		})
	}

	for f, face := range h.faces {
		for i, v := range h.vertices {
			if d := face.Plane.Distance(v); d > hullTolerance {
				return nil, fmt.Errorf("%w: vertex %d is %.3g in front of face %d", ErrNotConvex, i, d, f)
			}
		}
	}

	return h, nil
}

// NewBoxHull builds the hull of a box with the given half extents.
func NewBoxHull(halfExtents mgl64.Vec3) *ConvexHull {
	box := Box{HalfExtents: halfExtents}
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		vertices[i] = box.Vertex(i)
	}
	faces := make([][]int, 6)
	for i := range faces {
		faces[i] = boxFaceIndices[i][:]
	}

	hull, err := NewConvexHull(vertices, faces)
	if err != nil {
		// box faces are valid by construction
		panic(err)
	}
	return hull
}

func (h *ConvexHull) Kind() Kind { return KindConvexHull }

func (h *ConvexHull) sealed() {}

func (h *ConvexHull) ComputeAABB(transform Transform) AABB {
	return aabbFromPoints(transform, h.vertices)
}

func (h *ConvexHull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if len(h.vertices) == 0 {
		return mgl64.Vec3{}
	}

	best := 0
	bestDot := math.Inf(-1)
	for i, v := range h.vertices {
		if d := v.Dot(direction); d > bestDot {
			bestDot = d
			best = i
		}
	}
	return h.vertices[best]
}

func (h *ConvexHull) VertexCount() int { return len(h.vertices) }

func (h *ConvexHull) Vertex(index int) mgl64.Vec3 { return h.vertices[index] }

func (h *ConvexHull) FaceCount() int { return len(h.faces) }

func (h *ConvexHull) Face(index int) Face { return h.faces[index] }

func (h *ConvexHull) MostAlignedFace(direction mgl64.Vec3) int {
	return mostAligned(h, direction)
}
