package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundprediction/graphwalk/pkg/types"
)

// MemoryGraph is a map-backed graph. Edges of a vertex are returned in the
// order they were added.
type MemoryGraph struct {
	mu       sync.RWMutex
	vertices map[string]*types.Vertex
	edges    map[string]*types.Edge
	// incident edge ids per vertex, insertion ordered
	incident map[string][]string
}

// NewMemoryGraph creates an empty in-memory graph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		vertices: make(map[string]*types.Vertex),
		edges:    make(map[string]*types.Edge),
		incident: make(map[string][]string),
	}
}

// Provider returns GraphProviderMemory.
func (g *MemoryGraph) Provider() GraphProvider {
	return GraphProviderMemory
}

// GetVertex retrieves a vertex by id.
func (g *MemoryGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.vertices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
	}
	return v, nil
}

// GetEdge retrieves an edge by id.
func (g *MemoryGraph) GetEdge(ctx context.Context, id string) (*types.Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleEdge, id)
	}
	return e, nil
}

// GetEdges lists the edges of vertex in direction dir.
func (g *MemoryGraph) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.vertices[vertex.ID]; !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrStaleVertex, vertex.ID)
	}

	var result []*types.Edge
	for _, edgeID := range g.incident[vertex.ID] {
		e := g.edges[edgeID]
		if !dir.Matches(e, vertex.ID) || !e.IsType(edgeTypes...) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// PutVertex creates or replaces a vertex.
func (g *MemoryGraph) PutVertex(ctx context.Context, v *types.Vertex) error {
	if err := v.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.vertices[v.ID] = v
	return nil
}

// PutEdge creates or replaces an edge between two existing vertices.
func (g *MemoryGraph) PutEdge(ctx context.Context, e *types.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range []string{e.StartID, e.EndID} {
		if _, ok := g.vertices[id]; !ok {
			return fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
		}
	}

	if old, ok := g.edges[e.ID]; ok {
		g.unlinkLocked(old)
	}
	g.edges[e.ID] = e
	g.incident[e.StartID] = append(g.incident[e.StartID], e.ID)
	if e.EndID != e.StartID {
		g.incident[e.EndID] = append(g.incident[e.EndID], e.ID)
	}
	return nil
}

// DeleteVertex removes a vertex and its incident edges.
func (g *MemoryGraph) DeleteVertex(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.vertices[id]; !ok {
		return fmt.Errorf("%w: %s", types.ErrStaleVertex, id)
	}

	for _, edgeID := range append([]string(nil), g.incident[id]...) {
		g.unlinkLocked(g.edges[edgeID])
		delete(g.edges, edgeID)
	}
	delete(g.incident, id)
	delete(g.vertices, id)
	return nil
}

// DeleteEdge removes a single edge.
func (g *MemoryGraph) DeleteEdge(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrStaleEdge, id)
	}
	g.unlinkLocked(e)
	delete(g.edges, id)
	return nil
}

// Stats returns the number of vertices and edges.
func (g *MemoryGraph) Stats() (vertices, edges int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices), len(g.edges)
}

// LOCKS_REQUIRED(g.mu)
func (g *MemoryGraph) unlinkLocked(e *types.Edge) {
	for _, vid := range []string{e.StartID, e.EndID} {
		ids := g.incident[vid]
		for i, id := range ids {
			if id == e.ID {
				g.incident[vid] = append(ids[:i:i], ids[i+1:]...)
				break
			}
		}
	}
}

var _ Graph = (*MemoryGraph)(nil)
