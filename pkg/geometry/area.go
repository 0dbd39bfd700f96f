package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// PlanarArea returns the area of g in squared coordinate units.
// Lines and points have no area.
func PlanarArea(g orb.Geometry) float64 {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return math.Abs(planar.Area(g))
	}
	return 0
}

// GeodesicArea returns the area of g on the earth in square meters.
func GeodesicArea(g orb.Geometry) float64 {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geo.Area(g)
	}
	return 0
}

// FormatArea renders the geodesic area of g in square kilometers, or "N/A" for lines and points.
func FormatArea(g orb.Geometry) string {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return fmt.Sprintf("%.2f km²", GeodesicArea(g)/1e6)
	}
	return "N/A"
}
