package core

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb/geojson"
)

// Property keys owned by the collection.
const (
	PropShapeType = "shapeType"
	PropCreatedAt = "createdAt"
	PropRadius    = "radius"
)

// Feature converts s to its GeoJSON feature form.
func (s Shape) Feature() *geojson.Feature {
	f := geojson.NewFeature(s.Geometry)
	f.ID = s.ID
	for k, v := range s.Properties {
		f.Properties[k] = v
	}
	f.Properties[PropShapeType] = string(s.Type)
	f.Properties[PropCreatedAt] = s.CreatedAt
	if s.Radius != nil {
		f.Properties[PropRadius] = *s.Radius
	} else {
		delete(f.Properties, PropRadius)
	}
	return f
}

// ShapeFromFeature rebuilds a Shape from its GeoJSON feature form.
func ShapeFromFeature(f *geojson.Feature) (Shape, error) {
	if f == nil {
		return Shape{}, fmt.Errorf("nil feature")
	}
	id, ok := f.ID.(string)
	if !ok || id == "" {
		return Shape{}, fmt.Errorf("feature has no string id")
	}
	if KindOf(f.Geometry) == KindUnsupported {
		return Shape{}, fmt.Errorf("feature %s: unsupported geometry", id)
	}

	s := Shape{ID: id, Geometry: f.Geometry}
	extra := make(map[string]any)
	for k, v := range f.Properties {
		switch k {
		case PropShapeType:
			t, ok := v.(string)
			if !ok {
				return Shape{}, fmt.Errorf("feature %s: shapeType is not a string", id)
			}
			s.Type = ShapeType(t)
		case PropCreatedAt:
			n, ok := number(v)
			if !ok {
				return Shape{}, fmt.Errorf("feature %s: createdAt is not a number", id)
			}
			s.CreatedAt = int64(n)
		case PropRadius:
			n, ok := number(v)
			if !ok {
				return Shape{}, fmt.Errorf("feature %s: radius is not a number", id)
			}
			s.Radius = &n
		default:
			extra[k] = v
		}
	}
	if s.Type == "" {
		return Shape{}, fmt.Errorf("feature %s: missing shapeType", id)
	}
	if len(extra) > 0 {
		s.Properties = extra
	}
	return s, nil
}

// ProposalFromFeature turns an imported feature into a proposal. The tool is
// the feature's shapeType when present, else its geometry type; ids and
// timestamps of the source are not kept.
func ProposalFromFeature(f *geojson.Feature) Proposal {
	var tool string
	if f.Geometry != nil {
		tool = f.Geometry.GeoJSONType()
	}
	if t, ok := f.Properties[PropShapeType].(string); ok && t != "" {
		tool = t
	}
	var props map[string]any
	if len(f.Properties) > 0 {
		props = make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			props[k] = v
		}
	}
	return Proposal{Tool: tool, Geometry: f.Geometry, Properties: props}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// NewFeatureCollection wraps shapes, in order, into a FeatureCollection document.
func NewFeatureCollection(shapes []Shape) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		fc.Append(s.Feature())
	}
	return fc
}

// EncodeShapes serializes shapes as the persisted slot payload: a JSON array of features.
func EncodeShapes(shapes []Shape) ([]byte, error) {
	features := make([]*geojson.Feature, 0, len(shapes))
	for _, s := range shapes {
		features = append(features, s.Feature())
	}
	return json.Marshal(features)
}

// DecodeShapes parses a slot payload written by EncodeShapes.
// Empty input decodes to an empty collection. Anything unreadable wraps ErrCorruptStore.
func DecodeShapes(data []byte) ([]Shape, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var features []*geojson.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	shapes := make([]Shape, 0, len(features))
	for i, f := range features {
		s, err := ShapeFromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %d: %v", ErrCorruptStore, i, err)
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}
