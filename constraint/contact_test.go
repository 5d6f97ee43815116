package constraint

import (
	"testing"

	"github.com/akmonengine/oneshot/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(feature FeatureID, separation float64) ContactPoint {
	return ContactPoint{
		LocalA:     mgl64.Vec3{1, 0, 0},
		LocalB:     mgl64.Vec3{0, -1, 0},
		Normal:     mgl64.Vec3{0, 0, 1},
		Separation: separation,
		Feature:    feature,
	}
}

func TestContactConstraintCapacity(t *testing.T) {
	var c ContactConstraint

	for i := 0; i < MaxManifoldPoints; i++ {
		require.True(t, c.AddPoint(point(FeatureID{IndexA: uint8(i)}, -0.01)))
	}
	assert.False(t, c.AddPoint(point(FeatureID{IndexA: 9}, -0.01)), "a full manifold rejects points")
	assert.Equal(t, MaxManifoldPoints, c.Len())
	assert.Len(t, c.Points(), MaxManifoldPoints)

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Points())
}

func TestContactConstraintSeparation(t *testing.T) {
	var c ContactConstraint
	assert.Equal(t, 0.0, c.Separation())

	c.AddPoint(point(FeatureID{IndexA: 0}, 0.01))
	c.AddPoint(point(FeatureID{IndexA: 1}, -0.03))
	c.AddPoint(point(FeatureID{IndexA: 2}, -0.02))
	assert.Equal(t, -0.03, c.Separation())
}

func TestContactConstraintWarmStart(t *testing.T) {
	kept := FeatureID{FeatureFace, 4, FeatureVertex, 1}
	lost := FeatureID{FeatureFace, 4, FeatureVertex, 2}
	fresh := FeatureID{FeatureFace, 4, FeatureVertex, 3}

	previous := &ContactConstraint{Dt: 1.0 / 60}
	p := point(kept, -0.01)
	p.NormalImpulse = 2
	p.TangentImpulse = 0.5
	previous.AddPoint(p)
	p = point(lost, -0.01)
	p.NormalImpulse = 7
	previous.AddPoint(p)

	t.Run("same timestep", func(t *testing.T) {
		current := &ContactConstraint{Dt: 1.0 / 60}
		current.AddPoint(point(kept, -0.02))
		current.AddPoint(point(fresh, -0.02))

		assert.Equal(t, 1, current.WarmStart(previous))
		assert.InDelta(t, 2.0, current.Points()[0].NormalImpulse, 1e-12)
		assert.InDelta(t, 0.5, current.Points()[0].TangentImpulse, 1e-12)
		assert.Zero(t, current.Points()[1].NormalImpulse)
	})

	t.Run("timestep change rescales impulses", func(t *testing.T) {
		current := &ContactConstraint{Dt: 1.0 / 120}
		current.AddPoint(point(kept, -0.02))

		assert.Equal(t, 1, current.WarmStart(previous))
		assert.InDelta(t, 1.0, current.Points()[0].NormalImpulse, 1e-12)
		assert.InDelta(t, 0.25, current.Points()[0].TangentImpulse, 1e-12)
	})

	t.Run("no previous manifold", func(t *testing.T) {
		current := &ContactConstraint{Dt: 1.0 / 60}
		current.AddPoint(point(kept, -0.02))
		assert.Equal(t, 0, current.WarmStart(nil))
	})
}

func TestContactConstraintFlip(t *testing.T) {
	a := actor.NewCollider(1, &actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.Transform{})
	b := actor.NewCollider(2, &actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.Transform{Position: mgl64.Vec3{0, 0, 2}})

	c := &ContactConstraint{A: a, B: b, Normal: mgl64.Vec3{0, 0, 1}}
	c.AddPoint(point(FeatureID{FeatureFace, 4, FeatureVertex, 1}, -0.01))

	c.Flip()

	assert.Same(t, b, c.A)
	assert.Same(t, a, c.B)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, c.Normal)

	p := c.Points()[0]
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, p.LocalA)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, p.LocalB)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, p.Normal)
	assert.Equal(t, FeatureID{FeatureVertex, 1, FeatureFace, 4}, p.Feature)
	assert.Equal(t, -0.01, p.Separation)
}

func TestContactConstraintWorldPoints(t *testing.T) {
	a := actor.NewCollider(1, &actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.Transform{Position: mgl64.Vec3{0, 0, 1}})
	b := actor.NewCollider(2, &actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, actor.Transform{Position: mgl64.Vec3{0, 0, 3}})

	c := &ContactConstraint{A: a, B: b}
	c.AddPoint(point(FeatureID{}, 0))

	pA, pB := c.WorldPoints(0)
	assert.Equal(t, mgl64.Vec3{1, 0, 1}, pA)
	assert.Equal(t, mgl64.Vec3{0, -1, 3}, pB)
}
