package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproximateCircle(t *testing.T) {
	center := orb.Point{-46.63, -23.55}

	poly, err := ApproximateCircle(center, 1000)
	require.NoError(t, err)
	require.Len(t, poly, 1)

	ring := poly[0]
	assert.Len(t, ring, CircleSteps+1)
	assert.True(t, ring.Closed())
	assert.Equal(t, orb.CCW, ring.Orientation())

	for i, p := range ring {
		assert.InDelta(t, 1000, geo.Distance(center, p), 1, "vertex %d", i)
	}

	again, err := ApproximateCircle(center, 1000)
	require.NoError(t, err)
	assert.True(t, orb.Equal(poly, again), "same inputs must produce the same ring")

	// A 64-gon covers slightly less than the true disc.
	area := GeodesicArea(poly)
	assert.InEpsilon(t, math.Pi*1000*1000, area, 0.01)
}

func TestApproximateCircle_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		center orb.Point
		radius float64
	}{
		{"Zero Radius", orb.Point{0, 0}, 0},
		{"Negative Radius", orb.Point{0, 0}, -5},
		{"NaN Radius", orb.Point{0, 0}, math.NaN()},
		{"Infinite Center", orb.Point{math.Inf(1), 0}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApproximateCircle(tt.center, tt.radius)
			assert.ErrorIs(t, err, ErrDegenerate)
		})
	}
}

func TestFormatArea(t *testing.T) {
	assert.Equal(t, "N/A", FormatArea(orb.LineString{{0, 0}, {1, 1}}))
	assert.Equal(t, "N/A", FormatArea(orb.Point{1, 1}))

	// One degree square at the equator is roughly 12,300 km².
	got := FormatArea(square(0, 0, 1, 1))
	assert.Regexp(t, `^12[0-9]{3}\.[0-9]{2} km²$`, got)
}

func TestPlanarArea_NonPolygonal(t *testing.T) {
	assert.Zero(t, PlanarArea(orb.LineString{{0, 0}, {3, 4}}))
	assert.Zero(t, GeodesicArea(orb.Point{0, 0}))
}
