package oneshot

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// PairKind names the generator that handled a shape pair.
type PairKind uint8

const (
	PairBoxBox PairKind = iota
	PairConvexConvex
	PairCapsuleConvex
	PairCapsuleCapsule

	pairKindCount
)

func (k PairKind) String() string {
	switch k {
	case PairBoxBox:
		return "box_box"
	case PairConvexConvex:
		return "convex_convex"
	case PairCapsuleConvex:
		return "capsule_convex"
	case PairCapsuleCapsule:
		return "capsule_capsule"
	}
	return "unknown"
}

// Tracer receives profiling hooks from the generator. Implementations must be
// safe for concurrent use when the generator is shared between goroutines.
type Tracer interface {
	BeginPair(kind PairKind)
	EndPair(kind PairKind, contacts int)
	Degenerate(kind PairKind, reason string)
}

type nopTracer struct{}

func (nopTracer) BeginPair(PairKind)          {}
func (nopTracer) EndPair(PairKind, int)       {}
func (nopTracer) Degenerate(PairKind, string) {}

// Stats counts evaluations per pair kind with atomic counters.
type Stats struct {
	evaluations [pairKindCount]atomic.Uint64
	contacts    [pairKindCount]atomic.Uint64
	degenerate  [pairKindCount]atomic.Uint64
}

// StatsSnapshot is a copy of the counters of a Stats, indexed by PairKind.
type StatsSnapshot struct {
	Evaluations [pairKindCount]uint64
	Contacts    [pairKindCount]uint64
	Degenerate  [pairKindCount]uint64
}

func (s *Stats) BeginPair(kind PairKind) {
	s.evaluations[kind].Add(1)
}

func (s *Stats) EndPair(kind PairKind, contacts int) {
	s.contacts[kind].Add(uint64(contacts))
}

func (s *Stats) Degenerate(kind PairKind, reason string) {
	s.degenerate[kind].Add(1)
}

func (s *Stats) Snapshot() StatsSnapshot {
	var snapshot StatsSnapshot
	for k := range pairKindCount {
		snapshot.Evaluations[k] = s.evaluations[k].Load()
		snapshot.Contacts[k] = s.contacts[k].Load()
		snapshot.Degenerate[k] = s.degenerate[k].Load()
	}
	return snapshot
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	for k := range pairKindCount {
		s.evaluations[k].Store(0)
		s.contacts[k].Store(0)
		s.degenerate[k].Store(0)
	}
}

// LogTracer logs degenerate cases with slog at debug level.
type LogTracer struct {
	logger *slog.Logger
}

// NewLogTracer returns a tracer writing to logger, or to slog.Default when nil.
func NewLogTracer(logger *slog.Logger) *LogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTracer{logger: logger.With("component", "oneshot")}
}

func (t *LogTracer) BeginPair(PairKind)    {}
func (t *LogTracer) EndPair(PairKind, int) {}

func (t *LogTracer) Degenerate(kind PairKind, reason string) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	t.logger.Debug("degenerate contact", slog.String("pair", kind.String()), slog.String("reason", reason))
}

// multiTracer forwards hooks to every tracer in order.
type multiTracer []Tracer

func (m multiTracer) BeginPair(kind PairKind) {
	for _, t := range m {
		t.BeginPair(kind)
	}
}

func (m multiTracer) EndPair(kind PairKind, contacts int) {
	for _, t := range m {
		t.EndPair(kind, contacts)
	}
}

func (m multiTracer) Degenerate(kind PairKind, reason string) {
	for _, t := range m {
		t.Degenerate(kind, reason)
	}
}

// combineTracers drops nil tracers and avoids the fan-out for a single one.
func combineTracers(tracers ...Tracer) Tracer {
	var kept multiTracer
	for _, t := range tracers {
		if t != nil {
			kept = append(kept, t)
		}
	}
	switch len(kept) {
	case 0:
		return nopTracer{}
	case 1:
		return kept[0]
	}
	return kept
}
