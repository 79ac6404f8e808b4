package traversal

import (
	"context"
	"slices"
	"strings"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// EdgeIterator yields the candidate edges of one expansion. Next returns
// nil, nil once exhausted.
type EdgeIterator interface {
	Next(ctx context.Context) (*types.Edge, error)
}

// SliceEdges iterates over a fixed list of edges.
func SliceEdges(edges []*types.Edge) EdgeIterator {
	return &sliceIterator{edges: edges}
}

type sliceIterator struct {
	edges []*types.Edge
	pos   int
}

func (it *sliceIterator) Next(context.Context) (*types.Edge, error) {
	if it.pos >= len(it.edges) {
		return nil, nil
	}
	e := it.edges[it.pos]
	it.pos++
	return e, nil
}

// Expander lists the edges a branch may follow. It is called at most once
// per branch, when the branch is first asked for a child. The branch skips
// the edge it arrived by on its own, so expanders need not filter it.
type Expander interface {
	Expand(ctx context.Context, g driver.GraphAccessor, b *Branch) (EdgeIterator, error)
}

// ExpanderFunc adapts a function to Expander.
type ExpanderFunc func(ctx context.Context, g driver.GraphAccessor, b *Branch) (EdgeIterator, error)

// Expand calls f.
func (f ExpanderFunc) Expand(ctx context.Context, g driver.GraphAccessor, b *Branch) (EdgeIterator, error) {
	return f(ctx, g, b)
}

// EdgeFilter reports whether edge e may be followed from branch b.
type EdgeFilter func(b *Branch, e *types.Edge) bool

// VertexFilter reports whether the traversal may step onto v.
type VertexFilter func(v *types.Vertex) bool

type typeAndDirection struct {
	edgeType string // empty matches every type
	dir      types.Direction
}

// StandardExpander follows edges selected by type and direction, with
// optional edge and vertex filters. It is immutable: every builder method
// returns a new expander.
type StandardExpander struct {
	specs         []typeAndDirection
	edgeFilters   []EdgeFilter
	vertexFilters []VertexFilter
}

// AllEdges follows every edge in direction dir.
func AllEdges(dir types.Direction) *StandardExpander {
	return &StandardExpander{specs: []typeAndDirection{{dir: dir}}}
}

// ForTypes follows edges of the given types in direction dir.
func ForTypes(dir types.Direction, edgeTypes ...string) *StandardExpander {
	if len(edgeTypes) == 0 {
		return AllEdges(dir)
	}
	e := &StandardExpander{}
	for _, t := range edgeTypes {
		e.specs = append(e.specs, typeAndDirection{edgeType: t, dir: dir})
	}
	return e
}

// ForTypeAndDirection follows edges of one type in one direction. Chain
// Add to follow more.
func ForTypeAndDirection(edgeType string, dir types.Direction) *StandardExpander {
	return &StandardExpander{specs: []typeAndDirection{{edgeType: edgeType, dir: dir}}}
}

// Add returns an expander that also follows edgeType in direction dir.
func (e *StandardExpander) Add(edgeType string, dir types.Direction) *StandardExpander {
	c := e.clone()
	c.specs = append(c.specs, typeAndDirection{edgeType: edgeType, dir: dir})
	return c
}

// WithEdgeFilter returns an expander that also requires f to accept an edge.
func (e *StandardExpander) WithEdgeFilter(f EdgeFilter) *StandardExpander {
	c := e.clone()
	c.edgeFilters = append(c.edgeFilters, f)
	return c
}

// WithVertexFilter returns an expander that only follows edges whose far
// vertex is accepted by f. Each candidate's far vertex is read from the
// graph while the expansion is consumed.
func (e *StandardExpander) WithVertexFilter(f VertexFilter) *StandardExpander {
	c := e.clone()
	c.vertexFilters = append(c.vertexFilters, f)
	return c
}

// Reversed returns the expander with every direction flipped.
func (e *StandardExpander) Reversed() *StandardExpander {
	c := e.clone()
	for i := range c.specs {
		c.specs[i].dir = c.specs[i].dir.Reverse()
	}
	return c
}

func (e *StandardExpander) String() string {
	parts := make([]string, len(e.specs))
	for i, s := range e.specs {
		t := s.edgeType
		if t == "" {
			t = "*"
		}
		parts[i] = t + ":" + s.dir.String()
	}
	return strings.Join(parts, ",")
}

func (e *StandardExpander) clone() *StandardExpander {
	return &StandardExpander{
		specs:         slices.Clone(e.specs),
		edgeFilters:   slices.Clone(e.edgeFilters),
		vertexFilters: slices.Clone(e.vertexFilters),
	}
}

// Expand implements Expander. The graph is queried once per direction
// group, lazily, as the iterator is consumed.
func (e *StandardExpander) Expand(ctx context.Context, g driver.GraphAccessor, b *Branch) (EdgeIterator, error) {
	return &standardIterator{
		expander: e,
		graph:    g,
		branch:   b,
		groups:   e.groups(),
		seen:     make(map[string]struct{}),
	}, nil
}

type edgeQuery struct {
	dir       types.Direction
	edgeTypes []string // nil means every type
}

// groups merges the specs into one query per direction, keeping the order
// in which each direction first appears.
func (e *StandardExpander) groups() []edgeQuery {
	var out []edgeQuery
	for _, s := range e.specs {
		i := slices.IndexFunc(out, func(q edgeQuery) bool { return q.dir == s.dir })
		if i < 0 {
			out = append(out, edgeQuery{dir: s.dir})
			i = len(out) - 1
			if s.edgeType != "" {
				out[i].edgeTypes = []string{}
			}
		}
		switch {
		case s.edgeType == "":
			out[i].edgeTypes = nil
		case out[i].edgeTypes != nil:
			out[i].edgeTypes = append(out[i].edgeTypes, s.edgeType)
		}
	}
	return out
}

type standardIterator struct {
	expander *StandardExpander
	graph    driver.GraphAccessor
	branch   *Branch

	groups  []edgeQuery
	current []*types.Edge
	pos     int
	// edges listed by more than one query are followed once
	seen map[string]struct{}

	// far vertex of lastEdge when a vertex filter had to load it
	lastEdge   *types.Edge
	lastVertex *types.Vertex
}

// loadedVertices is implemented by iterators that already fetched the far
// vertex of the edge they returned last.
type loadedVertices interface {
	loaded(e *types.Edge) *types.Vertex
}

func (it *standardIterator) loaded(e *types.Edge) *types.Vertex {
	if e != it.lastEdge {
		return nil
	}
	return it.lastVertex
}

func (it *standardIterator) Next(ctx context.Context) (*types.Edge, error) {
	for {
		for it.pos < len(it.current) {
			e := it.current[it.pos]
			it.pos++
			if _, dup := it.seen[e.ID]; dup {
				continue
			}
			it.seen[e.ID] = struct{}{}

			ok, v, err := it.accept(ctx, e)
			if err != nil {
				return nil, err
			}
			if ok {
				it.lastEdge, it.lastVertex = e, v
				return e, nil
			}
		}

		if len(it.groups) == 0 {
			return nil, nil
		}
		q := it.groups[0]
		it.groups = it.groups[1:]

		edges, err := it.graph.GetEdges(ctx, it.branch.Vertex(), q.dir, q.edgeTypes...)
		if err != nil {
			return nil, err
		}
		it.current, it.pos = edges, 0
	}
}

func (it *standardIterator) accept(ctx context.Context, e *types.Edge) (bool, *types.Vertex, error) {
	for _, f := range it.expander.edgeFilters {
		if !f(it.branch, e) {
			return false, nil, nil
		}
	}
	if len(it.expander.vertexFilters) == 0 {
		return true, nil, nil
	}

	v, err := it.graph.GetVertex(ctx, e.OtherEnd(it.branch.Vertex().ID))
	if err != nil {
		return false, nil, err
	}
	for _, f := range it.expander.vertexFilters {
		if !f(v) {
			return false, nil, nil
		}
	}
	return true, v, nil
}
