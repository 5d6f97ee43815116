package oneshot

import (
	"cmp"
	"slices"
	"sync"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
)

const DefaultWorkers = 1

// Pair is a pair of colliders handed over by a broad phase.
type Pair struct {
	A *actor.Collider
	B *actor.Collider
}

// task splits data in workersCount contiguous chunks processed concurrently.
func task[T any](workersCount int, data []T, fn func(i int, item T)) {
	workersCount = max(DefaultWorkers, workersCount)

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(start, end)
	}
	wg.Wait()
}

// GenerateBatch evaluates pairs[i] into out[i] on workersCount goroutines.
// out must be at least as long as pairs.
func (g *Generator) GenerateBatch(pairs []Pair, dt, cullDistance float64, out []constraint.ContactConstraint, workersCount int) {
	out = out[:len(pairs)]
	task(workersCount, pairs, func(i int, pair Pair) {
		g.Generate(pair.A, pair.B, dt, cullDistance, &out[i])
	})
}

// NarrowPhase consumes pairs on workersCount goroutines and returns the
// manifolds holding at least one point, sorted by collider ids.
func (g *Generator) NarrowPhase(pairs <-chan Pair, dt, cullDistance float64, workersCount int) []*constraint.ContactConstraint {
	workersCount = max(DefaultWorkers, workersCount)
	contactsChan := make(chan *constraint.ContactConstraint, workersCount*2)

	go func() {
		var wg sync.WaitGroup
		defer close(contactsChan)

		for range workersCount {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for pair := range pairs {
					contact := &constraint.ContactConstraint{}
					g.Generate(pair.A, pair.B, dt, cullDistance, contact)
					if contact.Len() == 0 {
						continue
					}
					contactsChan <- contact
				}
			}()
		}

		wg.Wait()
	}()

	contacts := make([]*constraint.ContactConstraint, 0)
	for c := range contactsChan {
		contacts = append(contacts, c)
	}

	slices.SortFunc(contacts, func(x, y *constraint.ContactConstraint) int {
		return cmp.Compare(makePairKey(x.A, x.B).order(), makePairKey(y.A, y.B).order())
	})
	return contacts
}
