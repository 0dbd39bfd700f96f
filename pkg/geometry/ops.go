package geometry

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
)

// areaTolerance is the relative area below which a clipping remainder counts as empty.
const areaTolerance = 1e-9

// Intersects returns the region shared by a and b, or nil if they share no area.
func Intersects(a, b orb.Geometry) (orb.Geometry, error) {
	pa, pb, err := operands(a, b)
	if err != nil {
		return nil, err
	}
	if !a.Bound().Intersects(b.Bound()) {
		return nil, nil
	}
	out, err := clip(func() geom.Polygon { return pa.Intersection(pb) })
	if err != nil {
		return nil, err
	}
	return fromClip(out), nil
}

// Subtract returns a with the area of b removed, or nil if b covers all of a.
func Subtract(a, b orb.Geometry) (orb.Geometry, error) {
	pa, pb, err := operands(a, b)
	if err != nil {
		return nil, err
	}
	if !a.Bound().Intersects(b.Bound()) {
		return orb.Clone(a), nil
	}
	out, err := clip(func() geom.Polygon { return pa.Difference(pb) })
	if err != nil {
		return nil, err
	}
	return fromClip(out), nil
}

// Contains reports whether inner lies entirely within outer. Vertices on the
// boundary of outer count as inside. Two geometries covering the same area do
// not contain each other.
func Contains(outer, inner orb.Geometry) (bool, error) {
	po, pi, err := operands(outer, inner)
	if err != nil {
		return false, err
	}

	ob, ib := outer.Bound(), inner.Bound()
	if !ob.Contains(ib.Min) || !ob.Contains(ib.Max) {
		return false, nil
	}

	for _, p := range pi.Polygons() {
		for _, ring := range p {
			if geom.LineString(ring).Within(po) == geom.Outside {
				return false, nil
			}
		}
	}

	// Vertices alone miss edges that leave a concave outer shape.
	outside, err := clip(func() geom.Polygon { return pi.Difference(po) })
	if err != nil {
		return false, err
	}
	if !negligible(outside, pi.Area()) {
		return false, nil
	}

	rest, err := clip(func() geom.Polygon { return po.Difference(pi) })
	if err != nil {
		return false, err
	}
	if negligible(rest, po.Area()) {
		return false, nil
	}
	return true, nil
}

func operands(a, b orb.Geometry) (geom.Polygonal, geom.Polygonal, error) {
	pa, err := toPolygonal(a)
	if err != nil {
		return nil, nil, fmt.Errorf("first operand: %w", err)
	}
	pb, err := toPolygonal(b)
	if err != nil {
		return nil, nil, fmt.Errorf("second operand: %w", err)
	}
	return pa, pb, nil
}

// clip runs a clipping operation, turning a panic inside the library into ErrClipFailed.
func clip(op func() geom.Polygon) (out geom.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrClipFailed, r)
		}
	}()
	return op(), nil
}

func negligible(p geom.Polygon, reference float64) bool {
	if len(p) == 0 {
		return true
	}
	return math.Abs(p.Area()) <= areaTolerance*math.Abs(reference)
}

// Ops implements the resolver's primitives on top of this package.
type Ops struct{}

// Intersects implements core.Primitives.
func (Ops) Intersects(a, b orb.Geometry) (orb.Geometry, error) { return Intersects(a, b) }

// Subtract implements core.Primitives.
func (Ops) Subtract(a, b orb.Geometry) (orb.Geometry, error) { return Subtract(a, b) }

// Contains implements core.Primitives.
func (Ops) Contains(outer, inner orb.Geometry) (bool, error) { return Contains(outer, inner) }
