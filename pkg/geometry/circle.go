package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// CircleSteps is the number of vertices used to approximate a circle.
const CircleSteps = 64

// ApproximateCircle returns a closed, counter-clockwise polygon of CircleSteps
// vertices lying radiusMeters away from center on the sphere.
// The result is deterministic for the same inputs.
func ApproximateCircle(center orb.Point, radiusMeters float64) (orb.Polygon, error) {
	if !finite(center[0]) || !finite(center[1]) {
		return nil, fmt.Errorf("%w: circle center is not finite", ErrDegenerate)
	}
	if !finite(radiusMeters) || radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: circle radius must be positive, got %v", ErrDegenerate, radiusMeters)
	}

	ring := make(orb.Ring, 0, CircleSteps+1)
	for i := 0; i < CircleSteps; i++ {
		// Decreasing bearings walk the circle counter-clockwise.
		bearing := float64(i) * -360 / CircleSteps
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radiusMeters))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}
