package manifold

import (
	"cmp"
	"slices"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxReduceCandidates bounds the number of candidates considered by
// ReduceManifoldContactPoints; extra candidates are ignored. It covers a full
// clipped polygon.
const MaxReduceCandidates = MaxClipVertices

const hullEpsilon = 1e-12

// ReduceManifoldContactPoints keeps at most four points of the manifold,
// chosen so that the quadrilateral they span in the contact plane has the
// largest possible area. normal must be expressed in the frame of LocalA.
//
// The points are compacted in place and the returned slice aliases points.
// Sets of four points or fewer are returned unchanged. When all candidates
// are collinear or coincident, the hull is completed with the deepest unused
// points so that min(len(points), 4) points are always returned. Ties keep
// the first encountered point.
func ReduceManifoldContactPoints(points []constraint.ContactPoint, normal mgl64.Vec3) []constraint.ContactPoint {
	if len(points) <= constraint.MaxManifoldPoints {
		return points
	}

	n := min(len(points), MaxReduceCandidates)

	tangent1, tangent2 := actor.TangentBasis(normal)
	var projected [MaxReduceCandidates]mgl64.Vec2
	for i := 0; i < n; i++ {
		p := points[i].LocalA
		projected[i] = mgl64.Vec2{p.Dot(tangent1), p.Dot(tangent2)}
	}

	var hull [MaxReduceCandidates + 1]int
	h := convexHull(projected[:n], hull[:])

	var selected [constraint.MaxManifoldPoints]int
	count := 0
	if h >= 4 {
		selected = maxAreaQuad(projected[:n], hull[:h])
		count = 4
	} else {
		count = copy(selected[:], hull[:h])
		count = fillDeepest(points[:n], selected[:], count)
	}

	var result [constraint.MaxManifoldPoints]constraint.ContactPoint
	for i := 0; i < count; i++ {
		result[i] = points[selected[i]]
	}
	copy(points, result[:count])
	return points[:count]
}

// convexHull computes the counter-clockwise hull of the points with the
// monotone chain algorithm and writes the point indices into hull. Collinear
// and duplicate points are left out. It returns the hull size.
func convexHull(points []mgl64.Vec2, hull []int) int {
	var order [MaxReduceCandidates]int
	n := len(points)
	for i := 0; i < n; i++ {
		order[i] = i
	}

	slices.SortStableFunc(order[:n], func(a, b int) int {
		if c := cmp.Compare(points[a].X(), points[b].X()); c != 0 {
			return c
		}
		return cmp.Compare(points[a].Y(), points[b].Y())
	})

	if n < 3 {
		// Keep distinct points only
		k := 0
		for i := 0; i < n; i++ {
			if k == 0 || points[order[i]].Sub(points[hull[k-1]]).LenSqr() > hullEpsilon {
				hull[k] = order[i]
				k++
			}
		}
		return k
	}

	k := 0
	// Lower hull
	for i := 0; i < n; i++ {
		for k >= 2 && cross2(points[hull[k-2]], points[hull[k-1]], points[order[i]]) <= hullEpsilon {
			k--
		}
		hull[k] = order[i]
		k++
	}
	// Upper hull
	lower := k + 1
	for i := n - 2; i >= 0; i-- {
		for k >= lower && cross2(points[hull[k-2]], points[hull[k-1]], points[order[i]]) <= hullEpsilon {
			k--
		}
		hull[k] = order[i]
		k++
	}

	// The last point repeats the first one
	k--

	if k < 3 {
		// Degenerated to a segment or a point: drop repeats
		if k == 2 && points[hull[0]].Sub(points[hull[1]]).LenSqr() <= hullEpsilon {
			k = 1
		}
	}
	return k
}

// maxAreaQuad returns the four hull vertices spanning the largest area, in
// hull order. Every quadrilateral inscribed in a convex polygon is split by
// one of its diagonals into two triangles that can be maximized independently.
func maxAreaQuad(points []mgl64.Vec2, hull []int) [4]int {
	h := len(hull)
	best := [4]int{hull[0], hull[1], hull[2], hull[3]}
	bestArea := -1.0

	for i := 0; i < h; i++ {
		for j := i + 2; j < h; j++ {
			// Both sides of the diagonal need an apex
			if j-i > h-2 {
				continue
			}
			a, c := points[hull[i]], points[hull[j]]

			apex1, area1 := -1, -1.0
			for k := i + 1; k < j; k++ {
				if area := cross2(a, c, points[hull[k]]); -area > area1 {
					apex1, area1 = k, -area
				}
			}
			apex2, area2 := -1, -1.0
			for k := j + 1; k < i+h; k++ {
				if area := cross2(a, c, points[hull[k%h]]); area > area2 {
					apex2, area2 = k%h, area
				}
			}

			if total := area1 + area2; total > bestArea {
				bestArea = total
				best = [4]int{hull[i], hull[apex1], hull[j], hull[apex2]}
			}
		}
	}
	return best
}

// fillDeepest completes selected with the points of smallest separation that
// are not yet selected.
func fillDeepest(points []constraint.ContactPoint, selected []int, count int) int {
	for count < len(selected) && count < len(points) {
		deepest := -1
		for i := range points {
			if slices.Contains(selected[:count], i) {
				continue
			}
			if deepest < 0 || points[i].Separation < points[deepest].Separation {
				deepest = i
			}
		}
		if deepest < 0 {
			break
		}
		selected[count] = deepest
		count++
	}
	return count
}

// cross2 is twice the signed area of triangle (o, a, b), positive when counter-clockwise.
func cross2(o, a, b mgl64.Vec2) float64 {
	return (a.X()-o.X())*(b.Y()-o.Y()) - (a.Y()-o.Y())*(b.X()-o.X())
}
