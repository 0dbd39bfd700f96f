// Package core holds the domain of geoarch: shapes, the spatial conflict
// resolver and the collection service that owns the accepted shapes.
package core

import (
	"maps"

	"github.com/paulmach/orb"
)

// ShapeType is the drawing tool a shape was created with.
// It is distinct from the geometry kind: a Circle is stored as a polygon.
type ShapeType string

const (
	ShapePolygon    ShapeType = "Polygon"
	ShapeRectangle  ShapeType = "Rectangle"
	ShapeCircle     ShapeType = "Circle"
	ShapeLineString ShapeType = "LineString"
)

// NormalizeTool maps the raw tool name emitted by a drawing widget to a ShapeType.
// Unknown names pass through unchanged.
func NormalizeTool(tool string) ShapeType {
	switch tool {
	case "rectangle":
		return ShapeRectangle
	case "polygon":
		return ShapePolygon
	case "circle":
		return ShapeCircle
	case "polyline":
		return ShapeLineString
	}
	return ShapeType(tool)
}

// GeometryKind is the tagged variant of geometries a shape can carry.
type GeometryKind int

const (
	KindUnsupported GeometryKind = iota
	KindPolygon
	KindMultiPolygon
	KindLineString
	KindPoint
)

// KindOf classifies g. Anything outside the supported set is KindUnsupported.
func KindOf(g orb.Geometry) GeometryKind {
	switch g.(type) {
	case orb.Polygon:
		return KindPolygon
	case orb.MultiPolygon:
		return KindMultiPolygon
	case orb.LineString:
		return KindLineString
	case orb.Point:
		return KindPoint
	}
	return KindUnsupported
}

// Polygonal reports whether shapes of this kind take part in containment and trimming.
func (k GeometryKind) Polygonal() bool {
	switch k {
	case KindPolygon, KindMultiPolygon:
		return true
	case KindLineString, KindPoint, KindUnsupported:
		return false
	}
	return false
}

func (k GeometryKind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	case KindLineString:
		return "LineString"
	case KindPoint:
		return "Point"
	case KindUnsupported:
		return "Unsupported"
	}
	return "Unsupported"
}

// Shape is one accepted, persisted geographic entity.
type Shape struct {
	ID        string
	Type      ShapeType
	Geometry  orb.Geometry
	CreatedAt int64 // epoch milliseconds

	// Radius is the drawn radius in meters. Only set for circles.
	Radius *float64

	// Properties holds extra properties supplied with the proposal.
	Properties map[string]any
}

// Kind returns the geometry kind of the shape.
func (s Shape) Kind() GeometryKind {
	return KindOf(s.Geometry)
}

// Clone returns a deep copy of s so callers never share geometry with the collection.
func (s Shape) Clone() Shape {
	out := s
	if s.Geometry != nil {
		out.Geometry = orb.Clone(s.Geometry)
	}
	if s.Radius != nil {
		r := *s.Radius
		out.Radius = &r
	}
	if s.Properties != nil {
		out.Properties = maps.Clone(s.Properties)
	}
	return out
}

// EventType represents the type of change in the shape collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventDelete EventType = "DELETE"
	EventClear  EventType = "CLEAR"
	EventReload EventType = "RELOAD"
)

// Event represents a change in the collection or in its backing store.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return string(e.Type) + " " + e.ID
}
