package core

import (
	"log/slog"

	"github.com/paulmach/orb"
)

// Verdict is the fate the resolver assigns to a candidate geometry.
type Verdict int

const (
	VerdictAccepted Verdict = iota
	VerdictContained
	VerdictFullyOverlapped
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictContained:
		return "contained"
	case VerdictFullyOverlapped:
		return "fully_overlapped"
	}
	return "unknown"
}

// Resolution is the outcome of resolving one candidate.
type Resolution struct {
	Verdict Verdict

	// Geometry is the final geometry when accepted; nil otherwise.
	Geometry orb.Geometry

	// TrimmedBy lists, in collection order, the shapes that removed area from the candidate.
	TrimmedBy []string
}

// Resolver decides whether a freshly drawn geometry may join the collection.
// It holds no state between calls.
type Resolver struct {
	ops    Primitives
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by the given geometry primitives.
func NewResolver(ops Primitives, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{ops: ops, logger: logger}
}

// Resolve runs the containment pass and then the trim pass of candidate
// against existing, which must be in collection (insertion) order.
//
// Lines, points, and any candidate on an empty collection are accepted untouched.
// Trimming folds over existing shapes in order, so with three or more
// overlapping shapes the result depends on insertion order.
func (r *Resolver) Resolve(candidate orb.Geometry, existing []Shape) Resolution {
	if len(existing) == 0 || !KindOf(candidate).Polygonal() {
		return Resolution{Verdict: VerdictAccepted, Geometry: candidate}
	}

	if r.contained(candidate, existing) {
		return Resolution{Verdict: VerdictContained}
	}

	final := r.trim(candidate, existing)
	if final.abort {
		return Resolution{Verdict: VerdictFullyOverlapped}
	}
	return Resolution{Verdict: VerdictAccepted, Geometry: final.geometry, TrimmedBy: final.trimmedBy}
}

// contained reports whether any polygonal existing shape contains candidate.
// A failing comparison counts as "not contained" for that pair only.
func (r *Resolver) contained(candidate orb.Geometry, existing []Shape) bool {
	for _, s := range existing {
		if !s.Kind().Polygonal() {
			continue
		}
		in, err := r.ops.Contains(s.Geometry, candidate)
		if err != nil {
			r.logger.Warn("containment check failed", "existing", s.ID, "error", err)
			continue
		}
		if in {
			r.logger.Debug("candidate contained", "existing", s.ID)
			return true
		}
	}
	return false
}

// trimStep is the accumulator of the trim fold: either the geometry left so
// far, or an abort signal.
type trimStep struct {
	geometry  orb.Geometry
	trimmedBy []string
	abort     bool
}

func (r *Resolver) trim(candidate orb.Geometry, existing []Shape) trimStep {
	acc := trimStep{geometry: candidate}
	for _, s := range existing {
		acc = r.trimAgainst(acc, s)
		if acc.abort {
			return acc
		}
	}
	return acc
}

// trimAgainst is the reducer of the trim fold. Any primitive failure aborts
// the whole candidate.
func (r *Resolver) trimAgainst(acc trimStep, s Shape) trimStep {
	if !s.Kind().Polygonal() {
		return acc
	}

	overlap, err := r.ops.Intersects(acc.geometry, s.Geometry)
	if err != nil {
		r.logger.Error("spatial operation failed", "op", "intersect", "existing", s.ID, "error", err)
		return trimStep{abort: true}
	}
	if overlap == nil {
		return acc
	}

	rest, err := r.ops.Subtract(acc.geometry, s.Geometry)
	if err != nil {
		r.logger.Error("spatial operation failed", "op", "difference", "existing", s.ID, "error", err)
		return trimStep{abort: true}
	}
	if rest == nil {
		r.logger.Debug("candidate consumed", "existing", s.ID)
		return trimStep{abort: true}
	}

	trimmedBy := append(append([]string(nil), acc.trimmedBy...), s.ID)
	return trimStep{geometry: rest, trimmedBy: trimmedBy}
}
