package oneshot

import (
	"github.com/akmonengine/oneshot/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const geometryEpsilon = 1e-12

// capsuleCore exposes the core segment of a capsule as a support mapping.
type capsuleCore struct {
	capsule *actor.Capsule
}

func (c capsuleCore) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return c.capsule.CoreSupport(direction)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// closestPointsSegments returns the closest points c1 = p1 + s*(q1-p1) and
// c2 = p2 + t*(q2-p2) of two segments. Parallel segments resolve to s = 0.
func closestPointsSegments(p1, q1, p2, q2 mgl64.Vec3) (s, t float64, c1, c2 mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	switch {
	case a <= geometryEpsilon && e <= geometryEpsilon:
		return 0, 0, p1, p2
	case a <= geometryEpsilon:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e <= geometryEpsilon {
			s = clamp01(-c / a)
			break
		}

		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > geometryEpsilon*a*e {
			s = clamp01((b*f - c*e) / denom)
		}

		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = clamp01(-c / a)
		} else if t > 1 {
			t = 1
			s = clamp01((b - c) / a)
		}
	}

	return s, t, p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// closestPointSegment returns the point of segment [p, q] closest to x.
func closestPointSegment(x, p, q mgl64.Vec3) mgl64.Vec3 {
	d := q.Sub(p)
	l := d.LenSqr()
	if l <= geometryEpsilon {
		return p
	}
	return p.Add(d.Mul(clamp01(x.Sub(p).Dot(d) / l)))
}

// anyPerpendicular returns a unit vector orthogonal to v.
func anyPerpendicular(v mgl64.Vec3) mgl64.Vec3 {
	t, _ := actor.TangentBasis(actor.SafeNormalize(v, mgl64.Vec3{0, 1, 0}))
	return t
}
