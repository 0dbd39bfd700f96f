// Package geoarch is the Composition Root for the geoarch shape editor core.
//
// It connects the collection domain (pkg/core) with the storage adapters
// (pkg/adapters/fs, pkg/adapters/sqlite) and the geometry primitives
// (pkg/geometry).
//
// A user draws shapes on a map; every new shape is a proposal. The collection
// admits it only if its type is under its limit and it does not sit inside,
// or cover completely, an area already taken. A partially overlapping shape is
// trimmed so accepted areas never overlap. Lines are exempt from all spatial
// checks.
//
// Features:
//
//   - **Spatial conflict resolution**: containment rejection and order dependent trimming.
//   - **Per type limits**: configurable in geoarch.yaml.
//   - **Default Adapter (FS + Git)**: one JSON slot, atomic writes, optional git history.
//   - **SQLite Adapter**: the same slot as a row of a key-value table.
//   - **GeoJSON export**: the collection as a FeatureCollection.
//
// Usage:
//
//	svc, err := geoarch.New("./my-map",
//		geoarch.WithAutoInit(true),
//		geoarch.WithLogger(logger),
//	)
//
//	res := svc.Propose(ctx, geoarch.Proposal{Tool: "polygon", Geometry: poly})
package geoarch
