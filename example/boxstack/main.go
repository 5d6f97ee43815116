package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/akmonengine/oneshot"
	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactDebugger prints the manifolds produced for the scene
type ContactDebugger interface {
	DebugConstraint(contact *constraint.ContactConstraint)
}

type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugConstraint(contact *constraint.ContactConstraint) {
	fmt.Printf("Pair %d-%d: normal=%v points=%d\n", contact.A.ID, contact.B.ID, contact.Normal, contact.Len())
	for i, point := range contact.Points() {
		worldA, worldB := contact.WorldPoints(i)
		fmt.Printf("   Point %d: %s separation=%.6f\n", i, point.Feature, point.Separation)
		fmt.Printf("      on A: %v\n", worldA)
		fmt.Printf("      on B: %v\n", worldB)
	}
}

// SetupScene creates a stack of boxes resting on a ground box, with a capsule
// lying on top and a tilted hull beside the stack
func SetupScene(height int) ([]*actor.Collider, []oneshot.Pair) {
	ground := actor.NewCollider(0, &actor.Box{HalfExtents: mgl64.Vec3{10, 10, 0.5}}, actor.Transform{
		Position: mgl64.Vec3{0, 0, -0.5},
		Rotation: mgl64.QuatIdent(),
	})
	colliders := []*actor.Collider{ground}

	// Boxes sink 5mm into each other, as a solver leaves them
	for i := 0; i < height; i++ {
		colliders = append(colliders, actor.NewCollider(uint32(len(colliders)), &actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, actor.Transform{
			Position: mgl64.Vec3{0, 0, 0.495 + float64(i)*0.995},
			Rotation: mgl64.QuatIdent(),
		}))
	}

	top := float64(height) * 0.995
	colliders = append(colliders, actor.NewCollider(uint32(len(colliders)), &actor.Capsule{HalfHeight: 0.4, Radius: 0.2}, actor.Transform{
		Position: mgl64.Vec3{0, 0, top + 0.19},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
	}))

	colliders = append(colliders, actor.NewCollider(uint32(len(colliders)), actor.NewBoxHull(mgl64.Vec3{0.5, 0.5, 0.5}), actor.Transform{
		Position: mgl64.Vec3{1.2, 0, 0.69},
		Rotation: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0}),
	}))

	// Brute force broad phase
	var pairs []oneshot.Pair
	for i := range colliders {
		for j := i + 1; j < len(colliders); j++ {
			pairs = append(pairs, oneshot.Pair{A: colliders[i], B: colliders[j]})
		}
	}

	return colliders, pairs
}

func main() {
	settingsPath := flag.String("settings", "", "settings file (.toml, .yaml)")
	height := flag.Int("height", 3, "number of stacked boxes")
	steps := flag.Int("steps", 2, "number of steps")
	workers := flag.Int("workers", 2, "narrow phase workers")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	settings := oneshot.DefaultSettings()
	if *settingsPath != "" {
		var err error
		if settings, err = oneshot.LoadSettings(*settingsPath); err != nil {
			logger.Error("settings", slog.Any("error", err))
			os.Exit(1)
		}
	}
	settings.EnableStats = true

	generator, err := oneshot.NewGenerator(settings, oneshot.WithTracer(oneshot.NewLogTracer(logger)))
	if err != nil {
		logger.Error("generator", slog.Any("error", err))
		os.Exit(1)
	}

	_, pairs := SetupScene(*height)
	cache := oneshot.NewConstraintCache(*workers)
	debugger := &SimpleDebugger{}

	const dt float64 = 1.0 / 60.0
	const cullDistance = 0.02

	for step := 0; step < *steps; step++ {
		fmt.Printf("--- STEP %d ---\n", step+1)
		cache.Update(generator, pairs, dt, cullDistance)

		for _, key := range cache.Added() {
			fmt.Printf("touching: %d-%d\n", key.A, key.B)
		}
		for _, key := range cache.Removed() {
			fmt.Printf("separated: %d-%d\n", key.A, key.B)
		}
		for _, contact := range cache.Constraints() {
			debugger.DebugConstraint(contact)
		}
		fmt.Println()
	}

	snapshot := generator.Stats().Snapshot()
	for kind := oneshot.PairBoxBox; kind <= oneshot.PairCapsuleCapsule; kind++ {
		logger.Info("stats",
			slog.String("pair", kind.String()),
			slog.Uint64("evaluations", snapshot.Evaluations[kind]),
			slog.Uint64("contacts", snapshot.Contacts[kind]),
			slog.Uint64("degenerate", snapshot.Degenerate[kind]))
	}
}
