// Package geometry wraps the polygon boolean operations used to resolve
// spatial conflicts between shapes. All functions are pure.
//
// Geometries travel as orb values (lon/lat pairs); boolean operations are
// delegated to github.com/ctessum/geom and its polyclip backend, and the
// results are rebuilt into well-formed orb polygons.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
)

var (
	// ErrNotPolygonal is returned when a boolean operation receives a line or a point.
	ErrNotPolygonal = errors.New("geometry is not polygonal")

	// ErrDegenerate is returned for rings that cannot bound an area or contain non-finite coordinates.
	ErrDegenerate = errors.New("degenerate geometry")

	// ErrClipFailed wraps a failure inside the clipping library.
	ErrClipFailed = errors.New("polygon clipping failed")
)

// minRingArea is the planar area (square degrees) under which a result ring is treated as a sliver.
const minRingArea = 1e-14

// toPolygonal converts a polygonal orb geometry for the clipping library.
func toPolygonal(g orb.Geometry) (geom.Polygonal, error) {
	switch g := g.(type) {
	case orb.Polygon:
		return toPolygon(g)
	case orb.MultiPolygon:
		mp := make(geom.MultiPolygon, 0, len(g))
		for i, p := range g {
			pp, err := toPolygon(p)
			if err != nil {
				return nil, fmt.Errorf("polygon %d: %w", i, err)
			}
			mp = append(mp, pp)
		}
		return mp, nil
	case nil:
		return nil, fmt.Errorf("%w: nil geometry", ErrNotPolygonal)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotPolygonal, g.GeoJSONType())
}

func toPolygon(p orb.Polygon) (geom.Polygon, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrDegenerate)
	}
	out := make(geom.Polygon, len(p))
	for i, r := range p {
		if len(r) < 3 {
			return nil, fmt.Errorf("%w: ring %d has %d points", ErrDegenerate, i, len(r))
		}
		ring := make([]geom.Point, len(r))
		for j, pt := range r {
			if !finite(pt[0]) || !finite(pt[1]) {
				return nil, fmt.Errorf("%w: ring %d point %d is not finite", ErrDegenerate, i, j)
			}
			ring[j] = geom.Point{X: pt[0], Y: pt[1]}
		}
		out[i] = ring
	}
	return out, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// fromClip rebuilds orb geometry from the flat ring soup the clipping library
// returns. Rings are grouped into shells and holes by nesting depth; shells are
// wound counter-clockwise and holes clockwise. It returns nil when no area is left.
func fromClip(p geom.Polygon) orb.Geometry {
	var rings []geom.Polygon
	for _, r := range p {
		ring := geom.Polygon{r}
		if len(r) < 4 || ring.Area() <= minRingArea {
			continue
		}
		rings = append(rings, ring)
	}
	if len(rings) == 0 {
		return nil
	}

	depth := make([]int, len(rings))
	for i := range rings {
		for j := range rings {
			if i != j && ringInside(rings[i][0], rings[j]) {
				depth[i]++
			}
		}
	}

	shellOf := make(map[int]int) // ring index -> output polygon index
	var polys []orb.Polygon
	for i, ring := range rings {
		if depth[i]%2 != 0 {
			continue
		}
		shellOf[i] = len(polys)
		polys = append(polys, orb.Polygon{orient(ring[0], orb.CCW)})
	}

	for i, ring := range rings {
		if depth[i]%2 == 0 {
			continue
		}
		// The parent is the containing shell one level up.
		parent := -1
		for j := range rings {
			if depth[j] == depth[i]-1 && ringInside(ring[0], rings[j]) {
				parent = j
				break
			}
		}
		idx, ok := shellOf[parent]
		if !ok {
			continue
		}
		polys[idx] = append(polys[idx], orient(ring[0], orb.CW))
	}

	if len(polys) == 1 {
		return polys[0]
	}
	return orb.MultiPolygon(polys)
}

// ringInside reports whether ring r lies inside container. Rings coming out of
// the clipper never cross, so the first vertex not on the container's edge decides.
func ringInside(r []geom.Point, container geom.Polygon) bool {
	for _, pt := range r {
		switch pt.Within(container) {
		case geom.Inside:
			return true
		case geom.Outside:
			return false
		case geom.OnEdge:
		}
	}
	return false
}

func orient(r []geom.Point, want orb.Orientation) orb.Ring {
	ring := make(orb.Ring, len(r))
	for i, pt := range r {
		ring[i] = orb.Point{pt.X, pt.Y}
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	if ring.Orientation() != want {
		ring.Reverse()
	}
	return ring
}
