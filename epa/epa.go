// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA is run after GJK detects an overlap to determine:
//   - Penetration depth (how far shapes overlap)
//   - Contact normal (direction to separate shapes)
//   - Witness points on both shapes
//
// The algorithm expands a polytope (starting from GJK's final simplex) toward the origin
// in the Minkowski difference space, finding the closest face which gives us the
// Minimum Translation Vector (MTV) to separate the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"errors"
	"fmt"

	"github.com/akmonengine/oneshot/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations limits polytope expansion.
	// Typical convergence: 5-15 iterations for polytopes, more for curved shapes.
	DefaultMaxIterations = 64

	// DefaultTolerance defines when EPA has converged: a new support point
	// improving the closest face distance by less than this ends the search.
	DefaultTolerance = 1e-6

	// NormalSnapThreshold is used to clamp nearly-zero normal components to exactly zero.
	NormalSnapThreshold = 1e-8
)

var (
	ErrNoConvergence    = errors.New("epa: no convergence")
	ErrPolytopeOverflow = errors.New("epa: polytope capacity exceeded")
	ErrDegenerate       = errors.New("epa: degenerate simplex")
)

// Result of a penetration query. Normal points from A toward B.
type Result struct {
	Normal mgl64.Vec3
	Depth  float64
	// PointA and PointB are the deepest points of A inside B and of B inside A
	PointA, PointB mgl64.Vec3
	Iterations     int
}

// EPA computes the penetration depth and normal of two overlapping convex shapes.
//
// Algorithm overview:
//  1. Start with simplex from GJK, blown up to a tetrahedron if needed
//  2. Find face closest to origin
//  3. Get support point in face normal direction
//  4. If converged (new point doesn't improve distance) → done
//  5. Otherwise, expand polytope by adding support point and repeat
//
// On ErrNoConvergence and ErrPolytopeOverflow the returned Result holds the
// best estimate found so far.
func EPA(pair *gjk.Pair, simplex *gjk.Simplex, maxIterations int, tolerance float64) (Result, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	var polytope Polytope
	if err := polytope.Seed(pair, simplex); err != nil {
		return Result{}, err
	}

	closest := polytope.closestFace()
	for i := 0; i < maxIterations; i++ {
		if closest < 0 {
			return Result{}, fmt.Errorf("no face left: %w", ErrDegenerate)
		}
		face := polytope.faces[closest]

		support := pair.Support(face.Normal)
		if support.W.Dot(face.Normal)-face.Distance < tolerance {
			result := polytope.result(closest)
			result.Iterations = i + 1
			return result, nil
		}

		if err := polytope.expand(support); err != nil {
			result := polytope.result(closest)
			result.Iterations = i + 1
			return result, err
		}

		next := polytope.closestFace()
		if next < 0 {
			return Result{}, fmt.Errorf("no face left: %w", ErrDegenerate)
		}
		closest = next
	}

	result := polytope.result(closest)
	result.Iterations = maxIterations
	return result, fmt.Errorf("after %d iterations: %w", maxIterations, ErrNoConvergence)
}
