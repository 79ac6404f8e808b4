package traversal

import (
	"context"
	"fmt"
	"time"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/soundprediction/graphwalk/pkg/utils"
)

// InitialState computes the state of a root branch from its zero-length path.
type InitialState func(start *types.Path) any

// StateCloner copies a parent's state for a child. Without one, children
// share the value their parent set.
type StateCloner func(state any) any

// TraversalContext is the mutable state of one traversal execution: its
// uniqueness record, counters and the policies bound to a graph. Custom
// selectors receive it to advance branches.
type TraversalContext struct {
	ctx        context.Context
	graph      driver.GraphAccessor
	expander   Expander
	evaluator  Evaluator
	unique     uniquenessFilter
	initial    InitialState
	cloner     StateCloner
	depthGuard int

	monitor     *monitor.Registry
	tags        []string
	executionID string

	stats types.TraversalStats
}

// Context returns the context the traversal runs under.
func (tc *TraversalContext) Context() context.Context { return tc.ctx }

// Graph returns the accessor the traversal reads from.
func (tc *TraversalContext) Graph() driver.GraphAccessor { return tc.graph }

// ExecutionID returns the id events of this execution carry.
func (tc *TraversalContext) ExecutionID() string { return tc.executionID }

// Stats returns the counters so far.
func (tc *TraversalContext) Stats() types.TraversalStats { return tc.stats }

// startRoot creates the root branch for v. The root is registered with the
// uniqueness record before anything else happens to it; a start vertex the
// record already holds is skipped and nil is returned.
func (tc *TraversalContext) startRoot(v *types.Vertex) (*Branch, error) {
	root := newRoot(v)
	if !tc.unique.checkFirst(root) {
		tc.stats.UniquenessRejections++
		tc.emitBranch(monitor.UniquenessRejected, root)
		return nil, nil
	}
	tc.unique.record(root)

	if tc.initial != nil {
		state, err := tc.initialState(root)
		if err != nil {
			return nil, err
		}
		root.state, root.stateForChildren = state, state
	}

	ev, err := tc.evaluate(root)
	if err != nil {
		return nil, err
	}
	root.evaluation = ev
	tc.created(root)
	return root, nil
}

// admit turns edge e out of parent into a child branch, or returns nil if
// the uniqueness filter refuses it or its evaluation neither includes nor
// continues. Only children the evaluator includes are recorded as visited,
// so an excluded vertex or edge stays reachable over another path.
func (tc *TraversalContext) admit(parent *Branch, e *types.Edge) (*Branch, error) {
	depth := parent.depth + 1
	if depth > tc.depthGuard {
		return nil, fmt.Errorf("%w: depth %d exceeds the guard of %d", ErrInvalidConfiguration, depth, tc.depthGuard)
	}

	vertexID := e.OtherEnd(parent.vertex.ID)
	if !tc.unique.check(parent, e, vertexID) {
		tc.stats.UniquenessRejections++
		if tc.listening(monitor.UniquenessRejected) {
			tc.dispatch(monitor.Event{
				Kind:     monitor.UniquenessRejected,
				Depth:    depth,
				VertexID: vertexID,
				EdgeID:   e.ID,
			})
		}
		return nil, nil
	}

	var (
		v   *types.Vertex
		err error
	)
	if lv, ok := parent.edges.(loadedVertices); ok {
		v = lv.loaded(e)
	}
	if v == nil {
		if v, err = tc.graph.GetVertex(tc.ctx, vertexID); err != nil {
			return nil, err
		}
	}

	child := newChild(parent, e, v)
	child.state = parent.stateForChildren
	if tc.cloner != nil && child.state != nil {
		child.state, err = tc.cloneState(child.state)
		if err != nil {
			return nil, err
		}
	}
	child.stateForChildren = child.state

	ev, err := tc.evaluate(child)
	if err != nil {
		return nil, err
	}
	child.evaluation = ev
	if ev == ExcludeAndPrune {
		tc.stats.Pruned++
		tc.emitBranch(monitor.BranchPruned, child)
		return nil, nil
	}

	if ev.Includes() {
		tc.unique.record(child)
	}
	tc.created(child)
	return child, nil
}

func (tc *TraversalContext) created(b *Branch) {
	tc.stats.BranchesCreated++
	tc.stats.MaxDepth = max(tc.stats.MaxDepth, b.depth)
	if !b.evaluation.Continues() {
		tc.stats.Pruned++
		tc.emitBranch(monitor.BranchPruned, b)
	}
}

func (tc *TraversalContext) expand(b *Branch) (edges EdgeIterator, err error) {
	if err := tc.ctx.Err(); err != nil {
		return nil, err
	}
	defer utils.RecoverAsError(&err)

	edges, err = tc.expander.Expand(tc.ctx, tc.graph, b)
	if err != nil {
		return nil, err
	}
	tc.stats.Expansions++
	tc.emitBranch(monitor.BranchExpanded, b)
	return edges, nil
}

func (tc *TraversalContext) nextEdge(b *Branch) (e *types.Edge, err error) {
	if err := tc.ctx.Err(); err != nil {
		return nil, err
	}
	defer utils.RecoverAsError(&err)
	return b.edges.Next(tc.ctx)
}

func (tc *TraversalContext) evaluate(b *Branch) (ev Evaluation, err error) {
	defer utils.RecoverAsError(&err)
	return tc.evaluator.Evaluate(tc.ctx, b)
}

func (tc *TraversalContext) initialState(root *Branch) (state any, err error) {
	defer utils.RecoverAsError(&err)
	return tc.initial(root.Path()), nil
}

func (tc *TraversalContext) cloneState(state any) (cloned any, err error) {
	defer utils.RecoverAsError(&err)
	return tc.cloner(state), nil
}

func (tc *TraversalContext) listening(kind monitor.EventKind) bool {
	return tc.monitor.HasListeners(kind, tc.tags...)
}

func (tc *TraversalContext) emitBranch(kind monitor.EventKind, b *Branch) {
	if !tc.listening(kind) {
		return
	}
	ev := monitor.Event{
		Kind:     kind,
		Depth:    b.depth,
		VertexID: b.vertex.ID,
	}
	if b.edge != nil {
		ev.EdgeID = b.edge.ID
	}
	if kind == monitor.PathYielded {
		ev.Path = b.Path()
	}
	tc.dispatch(ev)
}

func (tc *TraversalContext) dispatch(ev monitor.Event) {
	ev.ExecutionID = tc.executionID
	ev.Tags = tc.tags
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	tc.monitor.Dispatch(tc.ctx, ev)
}
