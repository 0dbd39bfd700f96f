package core

import (
	"github.com/paulmach/orb"
)

// Proposal is a freshly drawn shape as reported by an interaction surface.
// Circles must already be approximated as polygons; the drawn radius goes in
// Properties under "radius".
type Proposal struct {
	Tool       string
	Geometry   orb.Geometry
	Properties map[string]any
}

// Status is the discriminant of a Result.
type Status int

const (
	StatusAccepted Status = iota
	StatusLimitReached
	StatusContained
	StatusFullyOverlapped
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusLimitReached:
		return "limit_reached"
	case StatusContained:
		return "contained"
	case StatusFullyOverlapped:
		return "fully_overlapped"
	case StatusInvalid:
		return "invalid"
	}
	return "unknown"
}

// Result is what Propose returns. Exactly one of the accepted shape or a
// rejection status is meaningful.
type Result struct {
	Status Status
	Type   ShapeType

	// Shape is the accepted shape (a copy); zero value on rejection.
	Shape Shape

	// TrimmedBy lists the shapes that removed area from the accepted shape.
	TrimmedBy []string
}

// Accepted reports whether the proposal joined the collection.
func (r Result) Accepted() bool {
	return r.Status == StatusAccepted
}

// Trimmed reports whether the accepted geometry differs from the drawn one.
func (r Result) Trimmed() bool {
	return len(r.TrimmedBy) > 0
}

// Err returns the sentinel error for a rejection, or nil when accepted.
func (r Result) Err() error {
	switch r.Status {
	case StatusAccepted:
		return nil
	case StatusLimitReached:
		return ErrLimitReached
	case StatusContained:
		return ErrContained
	case StatusFullyOverlapped:
		return ErrFullyOverlapped
	case StatusInvalid:
		return ErrInvalidGeometry
	}
	return ErrInvalidGeometry
}

// Limits is the per shape type admission limit. A missing entry means unlimited.
type Limits map[ShapeType]int

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		ShapePolygon:   10,
		ShapeRectangle: 10,
		ShapeCircle:    10,
	}
}

// Allows reports whether one more shape of type t fits given the current count.
func (l Limits) Allows(t ShapeType, current int) bool {
	limit, ok := l[t]
	if !ok {
		return true
	}
	return current < limit
}
