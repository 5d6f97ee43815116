package actor

import "github.com/go-gl/mathgl/mgl64"

// Collider places a shape in the world. Shape geometry is shared and must not
// change while a narrow-phase step runs.
type Collider struct {
	// ID identifies the collider across steps; pair keys are built from it
	ID        uint32
	Transform Transform
	Shape     Shape
}

// NewCollider creates a collider with the given identifier, shape and placement
func NewCollider(id uint32, shape Shape, transform Transform) *Collider {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	return &Collider{
		ID:        id,
		Transform: transform,
		Shape:     shape,
	}
}

func (c *Collider) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	// 1. Direction into local space (inverse rotation)
	localDirection := c.Transform.InverseRotateVector(direction)

	// 2. Local support
	localSupport := c.Shape.Support(localDirection)

	// 3. Back to world space (rotation + translation)
	return c.Transform.TransformPoint(localSupport)
}

// AABB returns the world bounds of the collider
func (c *Collider) AABB() AABB {
	return c.Shape.ComputeAABB(c.Transform)
}
