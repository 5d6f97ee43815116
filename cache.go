package oneshot

import (
	"cmp"
	"slices"

	"github.com/akmonengine/oneshot/actor"
	"github.com/akmonengine/oneshot/constraint"
)

// PairKey identifies a collider pair independently of its order, A <= B.
type PairKey struct {
	A, B uint32
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(a, b *actor.Collider) PairKey {
	if b.ID < a.ID {
		a, b = b, a
	}
	return PairKey{A: a.ID, B: b.ID}
}

func (k PairKey) order() uint64 {
	return uint64(k.A)<<32 | uint64(k.B)
}

func comparePairKeys(x, y PairKey) int {
	return cmp.Compare(x.order(), y.order())
}

// ConstraintCache keeps one constraint per touching pair across steps, so
// that accumulated impulses can be warm started.
type ConstraintCache struct {
	constraints map[PairKey]*constraint.ContactConstraint

	// Pair tracking for added/removed detection
	previousActivePairs map[PairKey]bool
	currentActivePairs  map[PairKey]bool

	added   []PairKey
	removed []PairKey

	workers int
	scratch []constraint.ContactConstraint
}

// NewConstraintCache creates a cache regenerating pairs on workers goroutines.
func NewConstraintCache(workers int) *ConstraintCache {
	return &ConstraintCache{
		constraints:         make(map[PairKey]*constraint.ContactConstraint),
		previousActivePairs: make(map[PairKey]bool),
		currentActivePairs:  make(map[PairKey]bool),
		added:               make([]PairKey, 0, 16),
		removed:             make([]PairKey, 0, 16),
		workers:             max(DefaultWorkers, workers),
	}
}

// Update regenerates the manifold of every pair, warm starts it from the
// previous step and records which pairs started or stopped touching. A pair
// with an empty manifold is not touching. Pairs are evaluated with the
// collider of lower id as A so that feature ids stay comparable.
func (c *ConstraintCache) Update(g *Generator, pairs []Pair, dt, cullDistance float64) {
	c.added = c.added[:0]
	c.removed = c.removed[:0]

	ordered := make([]Pair, len(pairs))
	for i, p := range pairs {
		if p.B.ID < p.A.ID {
			p.A, p.B = p.B, p.A
		}
		ordered[i] = p
	}

	if cap(c.scratch) < len(ordered) {
		c.scratch = make([]constraint.ContactConstraint, len(ordered))
	}
	c.scratch = c.scratch[:len(ordered)]
	g.GenerateBatch(ordered, dt, cullDistance, c.scratch, c.workers)

	for i := range c.scratch {
		fresh := &c.scratch[i]
		if fresh.Len() == 0 {
			continue
		}

		key := makePairKey(fresh.A, fresh.B)
		if c.currentActivePairs[key] {
			// Duplicate pair in the input
			continue
		}
		c.currentActivePairs[key] = true

		if previous, ok := c.constraints[key]; ok {
			fresh.WarmStart(previous)
			*previous = *fresh
			continue
		}

		stored := new(constraint.ContactConstraint)
		*stored = *fresh
		c.constraints[key] = stored
		c.added = append(c.added, key)
	}

	for key := range c.previousActivePairs {
		if !c.currentActivePairs[key] {
			delete(c.constraints, key)
			c.removed = append(c.removed, key)
		}
	}

	slices.SortFunc(c.added, comparePairKeys)
	slices.SortFunc(c.removed, comparePairKeys)

	// Swap for next step and clear current
	c.previousActivePairs, c.currentActivePairs = c.currentActivePairs, c.previousActivePairs
	clear(c.currentActivePairs)
}

// Added lists the pairs that started touching during the last Update.
func (c *ConstraintCache) Added() []PairKey {
	return c.added
}

// Removed lists the pairs that stopped touching during the last Update.
func (c *ConstraintCache) Removed() []PairKey {
	return c.removed
}

// Constraint returns the constraint of a touching pair.
func (c *ConstraintCache) Constraint(a, b *actor.Collider) (*constraint.ContactConstraint, bool) {
	cc, ok := c.constraints[makePairKey(a, b)]
	return cc, ok
}

// Constraints returns the constraints of all touching pairs, by pair key.
func (c *ConstraintCache) Constraints() []*constraint.ContactConstraint {
	keys := make([]PairKey, 0, len(c.constraints))
	for key := range c.constraints {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, comparePairKeys)

	constraints := make([]*constraint.ContactConstraint, len(keys))
	for i, key := range keys {
		constraints[i] = c.constraints[key]
	}
	return constraints
}

func (c *ConstraintCache) Len() int {
	return len(c.constraints)
}

// Remove forgets every pair involving collider, e.g. when it leaves the world.
func (c *ConstraintCache) Remove(collider *actor.Collider) {
	for key := range c.constraints {
		if key.A == collider.ID || key.B == collider.ID {
			delete(c.constraints, key)
			delete(c.previousActivePairs, key)
		}
	}
}
