package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a rigid placement (rotation then translation) in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// TransformPoint maps a local point to the parent frame
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

// InverseTransformPoint maps a parent-frame point to the local frame
func (t Transform) InverseTransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Position))
}

func (t Transform) RotateVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(v)
}

func (t Transform) InverseRotateVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(v)
}

// Inverse returns the transform mapping parent-frame points back to the local frame.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Mul composes two transforms: t.Mul(o) applies o first, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Position: t.TransformPoint(o.Position),
		Rotation: t.Rotation.Mul(o.Rotation).Normalize(),
	}
}

// Relative returns the transform of other expressed in the local frame of t.
// Narrow phase works in the frame of the first shape to keep coordinates small.
func (t Transform) Relative(other Transform) Transform {
	return t.Inverse().Mul(other)
}
