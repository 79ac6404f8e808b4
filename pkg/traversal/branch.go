package traversal

import (
	"github.com/soundprediction/graphwalk/pkg/types"
)

type branchPhase uint8

const (
	phaseFresh branchPhase = iota
	phaseExpanding
	phaseExhausted
)

// Branch is a node of the search tree: a vertex reached from its parent
// branch over one edge. Roots stand at a start vertex and have neither.
//
// A branch is driven by its selector through Next. The first call expands
// it (roots return themselves at that point), later calls hand out one
// admitted child at a time, and nil signals that no children remain.
type Branch struct {
	parent *Branch
	vertex *types.Vertex
	edge   *types.Edge
	depth  int
	root   bool

	state            any
	stateForChildren any

	evaluation Evaluation
	phase      branchPhase
	edges      EdgeIterator
	expanded   int
	path       *types.Path
}

func newRoot(v *types.Vertex) *Branch {
	return &Branch{vertex: v, root: true}
}

func newChild(parent *Branch, e *types.Edge, v *types.Vertex) *Branch {
	return &Branch{
		parent: parent,
		vertex: v,
		edge:   e,
		depth:  parent.depth + 1,
	}
}

// Parent returns the branch this one was expanded from, nil for a root.
func (b *Branch) Parent() *Branch { return b.parent }

// Vertex returns the vertex the branch stands at.
func (b *Branch) Vertex() *types.Vertex { return b.vertex }

// Edge returns the edge the branch was reached by, nil for a root.
func (b *Branch) Edge() *types.Edge { return b.edge }

// Depth returns the number of edges between the start vertex and the branch.
func (b *Branch) Depth() int { return b.depth }

// IsRoot reports whether the branch stands at a start vertex.
func (b *Branch) IsRoot() bool { return b.root }

// Evaluation returns the verdict given to the branch when it was created.
func (b *Branch) Evaluation() Evaluation { return b.evaluation }

// Expanded returns how many edges the branch has pulled from its expansion.
func (b *Branch) Expanded() int { return b.expanded }

// State returns the state the branch inherited from its parent, or the
// initial state for a root.
func (b *Branch) State() any { return b.state }

// SetState sets the state handed to the children of b that are created
// after the call. The branch's own State is unchanged.
func (b *Branch) SetState(v any) { b.stateForChildren = v }

// Path returns the path from the start vertex to the branch. The result is
// cached and must not be modified.
func (b *Branch) Path() *types.Path {
	if b.path != nil {
		return b.path
	}

	p := &types.Path{
		Vertices: make([]*types.Vertex, b.depth+1),
		Edges:    make([]*types.Edge, b.depth),
	}
	for cur := b; cur != nil; cur = cur.parent {
		p.Vertices[cur.depth] = cur.vertex
		if cur.edge != nil {
			p.Edges[cur.depth-1] = cur.edge
		}
	}
	b.path = p
	return p
}

// Next advances the branch. It returns the branch itself the first time a
// root is advanced, then each admitted child in expansion order, and nil
// once the expansion is exhausted. Branches whose evaluation prunes are
// never expanded.
func (b *Branch) Next(tc *TraversalContext) (*Branch, error) {
	if b.phase == phaseFresh {
		if err := b.expand(tc); err != nil {
			return nil, err
		}
		if b.root {
			return b, nil
		}
	}

	for b.phase == phaseExpanding {
		e, err := tc.nextEdge(b)
		if err != nil {
			b.exhaust()
			return nil, err
		}
		if e == nil {
			b.exhaust()
			return nil, nil
		}
		b.expanded++
		if b.edge != nil && e.ID == b.edge.ID {
			continue
		}

		child, err := tc.admit(b, e)
		if err != nil {
			b.exhaust()
			return nil, err
		}
		if child != nil {
			return child, nil
		}
	}
	return nil, nil
}

func (b *Branch) expand(tc *TraversalContext) error {
	if !b.evaluation.Continues() {
		b.phase = phaseExhausted
		return nil
	}
	edges, err := tc.expand(b)
	if err != nil {
		b.phase = phaseExhausted
		return err
	}
	b.edges = edges
	b.phase = phaseExpanding
	return nil
}

func (b *Branch) exhaust() {
	b.phase = phaseExhausted
	b.edges = nil
}
