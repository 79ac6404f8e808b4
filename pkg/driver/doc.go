// Package driver provides the graph accessors that traversals read from.
//
// A GraphAccessor is a synchronous, read-only view of a property graph: it
// looks vertices up by id and lists the edges of a vertex by direction and
// type. Traversals never mutate the graph through it.
//
// # Supported Backends
//
//   - Memory: map-backed graph, used by tests and the CLI fixture mode
//   - Badger: embedded persistent key-value store
//   - Neo4j: remote graph database, read through the bolt driver
//   - Ladybug: embedded graph database (requires CGO)
//
// # Usage
//
//	graph := driver.NewMemoryGraph()
//	_ = graph.PutVertex(ctx, &types.Vertex{ID: "a"})
//
//	accessor, err := driver.Open(ctx, cfg.Database)
//
// Remote accessors can be wrapped with NewCircuitBreakerGraph so that an
// unavailable database fails traversals fast instead of timing out on every
// expansion.
//
// # Thread Safety
//
// All accessor implementations are safe for concurrent use from multiple
// goroutines.
package driver
