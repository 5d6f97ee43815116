package oneshot

import (
	"sync/atomic"
	"testing"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		size    int
	}{
		{"empty", 4, 0},
		{"single worker", 1, 10},
		{"more workers than items", 8, 3},
		{"uneven chunks", 3, 10},
		{"no workers", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]int, tt.size)
			for i := range data {
				data[i] = i
			}

			visits := make([]atomic.Int32, tt.size)
			task(tt.workers, data, func(i int, item int) {
				assert.Equal(t, i, item)
				visits[i].Add(1)
			})

			for i := range visits {
				assert.Equal(t, int32(1), visits[i].Load(), "item %d", i)
			}
		})
	}
}

func stackedScene() []*actor.Collider {
	return []*actor.Collider{
		actor.NewCollider(0, &actor.Box{HalfExtents: mgl64.Vec3{5, 5, 0.5}}, actor.NewTransform()),
		actor.NewCollider(1, unitBox(), at(mgl64.Vec3{0, 0, 0.99})),
		actor.NewCollider(2, actor.NewBoxHull(mgl64.Vec3{0.5, 0.5, 0.5}), at(mgl64.Vec3{0, 0, 1.98})),
		actor.NewCollider(3, &actor.Capsule{HalfHeight: 0.5, Radius: 0.25}, at(mgl64.Vec3{3, 3, 0.74})),
		actor.NewCollider(4, unitBox(), at(mgl64.Vec3{-20, 0, 0})),
	}
}

func allPairs(colliders []*actor.Collider) []Pair {
	var pairs []Pair
	for i := range colliders {
		for j := i + 1; j < len(colliders); j++ {
			pairs = append(pairs, Pair{A: colliders[i], B: colliders[j]})
		}
	}
	return pairs
}

func TestGenerateBatch(t *testing.T) {
	g := newTestGenerator(t)
	pairs := allPairs(stackedScene())

	out := make([]constraint.ContactConstraint, len(pairs))
	g.GenerateBatch(pairs, testDt, 0.01, out, 3)

	for i, pair := range pairs {
		assert.Same(t, pair.A, out[i].A)
		assert.Same(t, pair.B, out[i].B)

		var expected constraint.ContactConstraint
		g.Generate(pair.A, pair.B, testDt, 0.01, &expected)
		assert.Equal(t, expected.Points(), out[i].Points(), "pair %d-%d", pair.A.ID, pair.B.ID)
	}
}

func TestNarrowPhase(t *testing.T) {
	g := newTestGenerator(t)
	pairs := allPairs(stackedScene())

	for _, workers := range []int{1, 4} {
		pairsChan := make(chan Pair)
		go func() {
			defer close(pairsChan)
			for _, pair := range pairs {
				pairsChan <- pair
			}
		}()

		contacts := g.NarrowPhase(pairsChan, testDt, 0.01, workers)

		require.Len(t, contacts, 3, "workers=%d", workers)
		assert.Equal(t, PairKey{0, 1}, makePairKey(contacts[0].A, contacts[0].B))
		assert.Equal(t, PairKey{0, 3}, makePairKey(contacts[1].A, contacts[1].B))
		assert.Equal(t, PairKey{1, 2}, makePairKey(contacts[2].A, contacts[2].B))

		assert.Equal(t, 4, contacts[0].Len())
		assert.Equal(t, 2, contacts[1].Len(), "a capsule lying on the ground touches at both ends")
		assert.Equal(t, 4, contacts[2].Len())
	}
}
