package traversal_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/traversal"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/require"
)

// buildGraph creates a memory graph from edges written "A->B" or
// "A-[T]->B". Edge ids are "AB" style pairs, suffixed with a counter when
// the same pair occurs twice; the default type is "LINK".
func buildGraph(t *testing.T, edges ...string) *driver.MemoryGraph {
	t.Helper()
	ctx := context.Background()
	g := driver.NewMemoryGraph()
	ids := map[string]int{}

	for _, spec := range edges {
		from, to, ok := strings.Cut(spec, "->")
		require.True(t, ok, "bad edge spec %q", spec)
		edgeType := "LINK"
		if i := strings.Index(from, "-["); i >= 0 {
			edgeType = strings.TrimSuffix(from[i+2:], "]")
			from = from[:i]
		}
		for _, id := range []string{from, to} {
			if _, err := g.GetVertex(ctx, id); err != nil {
				require.NoError(t, g.PutVertex(ctx, &types.Vertex{ID: id}))
			}
		}

		id := from + to
		ids[id]++
		if n := ids[id]; n > 1 {
			id += strings.Repeat("'", n-1)
		}
		require.NoError(t, g.PutEdge(ctx, &types.Edge{ID: id, Type: edgeType, StartID: from, EndID: to}))
	}
	return g
}

func vertex(t *testing.T, g driver.GraphAccessor, id string) *types.Vertex {
	t.Helper()
	v, err := g.GetVertex(context.Background(), id)
	require.NoError(t, err)
	return v
}

// collect drains the traverser and renders each path as its vertex ids
// joined with no separator, e.g. "ABC".
func collect(t *testing.T, tr *traversal.Traverser) []string {
	t.Helper()
	var out []string
	for tr.Next() {
		out = append(out, strings.Join(tr.Path().VertexIDs(), ""))
	}
	require.NoError(t, tr.Err())
	return out
}

func run(t *testing.T, d *traversal.Description, g driver.GraphAccessor, starts ...string) []string {
	t.Helper()
	vs := make([]*types.Vertex, len(starts))
	for i, id := range starts {
		vs[i] = vertex(t, g, id)
	}
	return collect(t, d.Traverse(context.Background(), g, vs...))
}

// countingGraph counts accessor calls and can fail lookups of chosen ids.
type countingGraph struct {
	driver.GraphAccessor

	mu          sync.Mutex
	vertexCalls int
	edgeCalls   int
	stale       map[string]bool
}

func (c *countingGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	c.mu.Lock()
	c.vertexCalls++
	stale := c.stale[id]
	c.mu.Unlock()
	if stale {
		return nil, types.ErrStaleVertex
	}
	return c.GraphAccessor.GetVertex(ctx, id)
}

func (c *countingGraph) GetEdges(ctx context.Context, v *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	c.mu.Lock()
	c.edgeCalls++
	c.mu.Unlock()
	return c.GraphAccessor.GetEdges(ctx, v, dir, edgeTypes...)
}
