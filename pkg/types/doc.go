// Package types defines the property graph model shared by every graphwalk
// package.
//
// This package contains:
//   - Vertex: a graph element with an id, labels and properties
//   - Edge: a typed, directed connection between two vertices
//   - Direction: which incident edges of a vertex to follow
//   - Path: an immutable walk from a start vertex, alternating vertices and edges
//   - TraversalStats: counters describing one traversal execution
//
// # Validation
//
// Vertex and Edge provide Validate() methods:
//
//	edge := &types.Edge{ID: "e1", Type: "KNOWS", StartID: "a", EndID: "b"}
//	if err := edge.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # Errors
//
// Accessors report graph elements that do not exist, or disappeared while a
// traversal was running, with ErrStaleVertex and ErrStaleEdge; use IsStale
// to test for either.
//
// # Serialization
//
// All types carry json and yaml struct tags. The yaml names of Edge
// endpoints are "from" and "to", as used by graph fixtures.
package types
