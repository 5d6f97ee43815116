package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// boxFaceIndices lists the corners of each box face, counter-clockwise seen
// from outside. Corner i has +x when bit 0 is set, +y for bit 1, +z for bit 2.
// Face f has normal sign(f) * axis(f/2), sign positive for even f.
var boxFaceIndices = [6][4]int{
	{1, 3, 7, 5}, // +X
	{0, 4, 6, 2}, // -X
	{2, 6, 7, 3}, // +Y
	{0, 1, 5, 4}, // -Y
	{4, 5, 7, 6}, // +Z
	{0, 2, 3, 1}, // -Z
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Kind() Kind { return KindBox }

func (b *Box) sealed() {}

func (b *Box) ComputeAABB(transform Transform) AABB {
	// World extent along each axis is |R| * halfExtents
	r := transform.Rotation.Mat4().Mat3()
	var extent mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			extent[i] += math.Abs(r.At(i, j)) * b.HalfExtents[j]
		}
	}

	return AABB{
		Min: transform.Position.Sub(extent),
		Max: transform.Position.Add(extent),
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

func (b *Box) VertexCount() int { return 8 }

func (b *Box) Vertex(index int) mgl64.Vec3 {
	v := b.HalfExtents.Mul(-1)
	for axis := 0; axis < 3; axis++ {
		if index&(1<<axis) != 0 {
			v[axis] = b.HalfExtents[axis]
		}
	}
	return v
}

func (b *Box) FaceCount() int { return 6 }

func (b *Box) Face(index int) Face {
	axis := index / 2
	var normal mgl64.Vec3
	if index%2 == 0 {
		normal[axis] = 1
	} else {
		normal[axis] = -1
	}

	return Face{
		Plane:   Plane{Normal: normal, Offset: b.HalfExtents[axis]},
		Indices: boxFaceIndices[index][:],
	}
}

// MostAlignedFace picks the face from the dominant component of direction,
// preferring the lowest axis when components are equal.
func (b *Box) MostAlignedFace(direction mgl64.Vec3) int {
	axis := 0
	best := math.Abs(direction[0])
	for i := 1; i < 3; i++ {
		if a := math.Abs(direction[i]); a > best {
			best = a
			axis = i
		}
	}
	if direction[axis] < 0 {
		return axis*2 + 1
	}
	return axis * 2
}

// BoxFaceIndex returns the face index of the box face with the given axis and sign.
func BoxFaceIndex(axis int, positive bool) int {
	if positive {
		return axis * 2
	}
	return axis*2 + 1
}
