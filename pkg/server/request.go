package server

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/aretw0/geoarch/pkg/core"
	"github.com/aretw0/geoarch/pkg/geometry"
)

// ErrBadRequest is returned for draw requests that cannot become a proposal.
var ErrBadRequest = errors.New("bad draw request")

// DrawRequest is the body of POST /api/v1/shapes.
// A circle may be sent either as an already approximated geometry with a
// radius, or as center plus radius in meters.
type DrawRequest struct {
	Tool       string            `json:"tool"`
	Geometry   *geojson.Geometry `json:"geometry,omitempty"`
	Center     *orb.Point        `json:"center,omitempty"`
	Radius     *float64          `json:"radius,omitempty"`
	Properties map[string]any    `json:"properties,omitempty"`
}

// Proposal converts the request into a core.Proposal.
func (r DrawRequest) Proposal() (core.Proposal, error) {
	if r.Tool == "" {
		return core.Proposal{}, fmt.Errorf("%w: tool is required", ErrBadRequest)
	}

	props := make(map[string]any, len(r.Properties)+1)
	for k, v := range r.Properties {
		props[k] = v
	}
	if r.Radius != nil {
		props[core.PropRadius] = *r.Radius
	}

	var g orb.Geometry
	switch {
	case r.Center != nil:
		if core.NormalizeTool(r.Tool) != core.ShapeCircle {
			return core.Proposal{}, fmt.Errorf("%w: center is only valid for circles", ErrBadRequest)
		}
		if r.Radius == nil {
			return core.Proposal{}, fmt.Errorf("%w: circle needs a radius", ErrBadRequest)
		}
		poly, err := geometry.ApproximateCircle(*r.Center, *r.Radius)
		if err != nil {
			return core.Proposal{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		g = poly
	case r.Geometry != nil && r.Geometry.Coordinates != nil:
		g = r.Geometry.Coordinates
	default:
		return core.Proposal{}, fmt.Errorf("%w: geometry is required", ErrBadRequest)
	}

	if len(props) == 0 {
		props = nil
	}
	return core.Proposal{Tool: r.Tool, Geometry: g, Properties: props}, nil
}
