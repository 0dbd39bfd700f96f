package core

import (
	"context"

	"github.com/paulmach/orb"
)

// DefaultStoreKey is the name of the local slot the collection is persisted under.
const DefaultStoreKey = "geo-editor-data"

// Repository defines the contract for persisting the shape collection.
// The whole collection is written wholesale on every mutation, so an adapter
// only needs a single key-value slot (file, SQLite row, ...).
type Repository interface {
	// Load returns the persisted collection in insertion order.
	// An absent slot yields an empty collection and no error.
	Load(ctx context.Context) ([]Shape, error)

	// Save replaces the persisted collection.
	Save(ctx context.Context, shapes []Shape) error

	// Initialize ensures the underlying storage is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for repositories that report changes made to
// the slot by someone else (another process, a text editor).
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Primitives are the geometry operations the resolver needs.
// Implementations must be pure and must return, not swallow, library failures.
type Primitives interface {
	// Intersects returns the shared area of a and b, or nil when they share no area.
	Intersects(a, b orb.Geometry) (orb.Geometry, error)

	// Subtract returns a with the area of b removed, or nil when nothing remains.
	Subtract(a, b orb.Geometry) (orb.Geometry, error)

	// Contains reports whether inner lies entirely within outer.
	Contains(outer, inner orb.Geometry) (bool, error)
}

// Recorder receives counters about what the service did. It is optional.
type Recorder interface {
	RecordProposal(t ShapeType, status Status)
	RecordStorageFailure(op string)
}

// Versioned is implemented by repositories that keep a history of the slot.
type Versioned interface {
	// History returns up to limit entries, newest first, as "<rev> <message>".
	History(ctx context.Context, limit int) ([]string, error)
}
