package constraint

import (
	"github.com/akmonengine/oneshot/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxManifoldPoints is the capacity of a contact manifold.
const MaxManifoldPoints = 4

// ContactPoint is one point of a contact manifold.
type ContactPoint struct {
	// LocalA and LocalB locate the contact in each shape's local frame
	LocalA, LocalB mgl64.Vec3
	// Normal is the world space manifold normal, from A toward B
	Normal mgl64.Vec3
	// Separation is positive when separated and negative when penetrating
	Separation float64
	Feature    FeatureID

	// Accumulated impulses, written by the solver and carried over by WarmStart
	NormalImpulse  float64
	TangentImpulse float64
}

// Flip swaps the A and B sides of the point.
func (p *ContactPoint) Flip() {
	p.LocalA, p.LocalB = p.LocalB, p.LocalA
	p.Normal = p.Normal.Mul(-1)
	p.Feature = p.Feature.Flip()
}

// ContactConstraint is the manifold produced for a pair of colliders. Points
// live in a fixed array so that filling a constraint never allocates.
type ContactConstraint struct {
	A, B   *actor.Collider
	Normal mgl64.Vec3
	// Dt is the timestep of the step that produced the manifold
	Dt float64

	points [MaxManifoldPoints]ContactPoint
	count  int
}

// Reset clears the points and the normal, keeping the collider pair.
func (c *ContactConstraint) Reset() {
	c.Normal = mgl64.Vec3{}
	c.Dt = 0
	c.count = 0
}

// AddPoint appends a point. It returns false when the manifold is full.
func (c *ContactConstraint) AddPoint(p ContactPoint) bool {
	if c.count == MaxManifoldPoints {
		return false
	}
	c.points[c.count] = p
	c.count++
	return true
}

// Points returns a view over the current points. The slice aliases the
// constraint and is invalidated by the next Reset.
func (c *ContactConstraint) Points() []ContactPoint {
	return c.points[:c.count]
}

func (c *ContactConstraint) Len() int {
	return c.count
}

// WorldPoints returns the i-th contact point on A and on B in world space.
func (c *ContactConstraint) WorldPoints(i int) (mgl64.Vec3, mgl64.Vec3) {
	p := &c.points[i]
	return c.A.Transform.TransformPoint(p.LocalA), c.B.Transform.TransformPoint(p.LocalB)
}

// WarmStart copies the accumulated impulses of the previous manifold onto the
// points with the same feature pair. Impulses are rescaled by the ratio of the
// timesteps.
func (c *ContactConstraint) WarmStart(previous *ContactConstraint) int {
	if previous == nil || previous.count == 0 {
		return 0
	}

	ratio := 1.0
	if previous.Dt > 0 && c.Dt > 0 {
		ratio = c.Dt / previous.Dt
	}

	matched := 0
	for i := 0; i < c.count; i++ {
		key := c.points[i].Feature.Key()
		for j := 0; j < previous.count; j++ {
			old := &previous.points[j]
			if old.Feature.Key() != key {
				continue
			}
			c.points[i].NormalImpulse = old.NormalImpulse * ratio
			c.points[i].TangentImpulse = old.TangentImpulse * ratio
			matched++
			break
		}
	}
	return matched
}

// Flip swaps the collider pair and reverses the normal.
func (c *ContactConstraint) Flip() {
	c.A, c.B = c.B, c.A
	c.Normal = c.Normal.Mul(-1)
	for i := 0; i < c.count; i++ {
		c.points[i].Flip()
	}
}

// Separation returns the smallest separation of the manifold, or 0 if empty.
func (c *ContactConstraint) Separation() float64 {
	if c.count == 0 {
		return 0
	}
	min := c.points[0].Separation
	for i := 1; i < c.count; i++ {
		if c.points[i].Separation < min {
			min = c.points[i].Separation
		}
	}
	return min
}
