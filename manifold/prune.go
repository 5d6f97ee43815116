package manifold

import (
	"github.com/akmonengine/oneshot/constraint"
)

// minSeparation returns the separation of the deepest point.
func minSeparation(points []constraint.ContactPoint) float64 {
	min := points[0].Separation
	for i := 1; i < len(points); i++ {
		if points[i].Separation < min {
			min = points[i].Separation
		}
	}
	return min
}

// PruneEdgeContactPointsUnordered removes the points lying further than
// maxPlaneDistance above the contact plane through the deepest point. The
// remaining points are compacted in place by swapping with the last point, so
// their order is not preserved.
func PruneEdgeContactPointsUnordered(points []constraint.ContactPoint, maxPlaneDistance float64) []constraint.ContactPoint {
	if len(points) == 0 {
		return points
	}

	limit := minSeparation(points) + maxPlaneDistance
	n := len(points)
	for i := 0; i < n; {
		if points[i].Separation > limit {
			n--
			points[i] = points[n]
			continue
		}
		i++
	}
	return points[:n]
}

// PruneEdgeContactPointsOrdered applies the same filter as
// PruneEdgeContactPointsUnordered but keeps the relative order of the
// remaining points, for inputs whose order encodes a polygon winding.
func PruneEdgeContactPointsOrdered(points []constraint.ContactPoint, maxPlaneDistance float64) []constraint.ContactPoint {
	if len(points) == 0 {
		return points
	}

	limit := minSeparation(points) + maxPlaneDistance
	n := 0
	for i := range points {
		if points[i].Separation > limit {
			continue
		}
		points[n] = points[i]
		n++
	}
	return points[:n]
}

// RemoveCoincidentContactPoints merges points closer than minDistance to an
// earlier point (measured in A's frame). The merged slot keeps the deeper of
// the two points. Order is preserved.
func RemoveCoincidentContactPoints(points []constraint.ContactPoint, minDistance float64) []constraint.ContactPoint {
	minDistanceSqr := minDistance * minDistance

	n := 0
	for i := range points {
		merged := false
		for j := 0; j < n; j++ {
			if points[j].LocalA.Sub(points[i].LocalA).LenSqr() > minDistanceSqr {
				continue
			}
			if points[i].Separation < points[j].Separation {
				points[j] = points[i]
			}
			merged = true
			break
		}
		if !merged {
			points[n] = points[i]
			n++
		}
	}
	return points[:n]
}
