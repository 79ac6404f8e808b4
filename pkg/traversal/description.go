package traversal

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// DefaultDepthGuard is the deepest branch a traversal creates before it
// fails with ErrInvalidConfiguration.
const DefaultDepthGuard = 100000

// Description is an immutable traversal configuration. Every builder method
// returns a modified copy, so a description can be shared and reused; each
// call to Traverse starts an independent execution with its own search tree
// and uniqueness record.
type Description struct {
	order        BranchOrdering
	orderName    string
	uniqueness   Uniqueness
	expander     Expander
	defaultExp   bool
	evaluators   []Evaluator
	initialState InitialState
	cloner       StateCloner
	limit        int
	depthGuard   int

	monitor *monitor.Registry
	tags    []string
}

// New returns the default description: depth first, node-global
// uniqueness, every edge in both directions, every path included.
func New() *Description {
	return &Description{
		order:      PreorderDepthFirst,
		orderName:  "dfs",
		uniqueness: NodeGlobal,
		expander:   AllEdges(types.Both),
		defaultExp: true,
		depthGuard: DefaultDepthGuard,
	}
}

func (d *Description) clone() *Description {
	c := *d
	c.evaluators = slices.Clone(d.evaluators)
	c.tags = slices.Clone(d.tags)
	return &c
}

// DepthFirst selects pre-order depth-first ordering.
func (d *Description) DepthFirst() *Description {
	return d.Order("dfs", PreorderDepthFirst)
}

// BreadthFirst selects level-order breadth-first ordering.
func (d *Description) BreadthFirst() *Description {
	return d.Order("bfs", PreorderBreadthFirst)
}

// PostorderDepthFirst selects depth-first ordering that yields a branch
// after its descendants.
func (d *Description) PostorderDepthFirst() *Description {
	return d.Order("postorder", PostorderDepthFirst)
}

// Order selects a custom ordering; name labels it in events.
func (d *Description) Order(name string, order BranchOrdering) *Description {
	c := d.clone()
	c.order, c.orderName = order, name
	return c
}

// Uniqueness selects the uniqueness policy.
func (d *Description) Uniqueness(u Uniqueness) *Description {
	c := d.clone()
	c.uniqueness = u
	return c
}

// Expand replaces the expander.
func (d *Description) Expand(e Expander) *Description {
	c := d.clone()
	c.expander, c.defaultExp = e, false
	return c
}

// Relationships adds an edge type and direction to follow. The first call
// replaces the default of following every edge.
func (d *Description) Relationships(edgeType string, dir types.Direction) *Description {
	c := d.clone()
	if std, ok := c.expander.(*StandardExpander); ok && !c.defaultExp {
		c.expander = std.Add(edgeType, dir)
	} else {
		c.expander = ForTypeAndDirection(edgeType, dir)
	}
	c.defaultExp = false
	return c
}

// Evaluator adds an evaluator. Several evaluators combine as Both: a path
// is included only if all include it, and descent continues only if all
// continue.
func (d *Description) Evaluator(e Evaluator) *Description {
	c := d.clone()
	c.evaluators = append(c.evaluators, e)
	return c
}

// InitialState sets the state function applied to every root.
func (d *Description) InitialState(f InitialState) *Description {
	c := d.clone()
	c.initialState = f
	return c
}

// StateCloner sets the function copying a parent's state into each child.
func (d *Description) StateCloner(f StateCloner) *Description {
	c := d.clone()
	c.cloner = f
	return c
}

// Limit stops the traversal after n paths; 0 means no limit.
func (d *Description) Limit(n int) *Description {
	c := d.clone()
	c.limit = n
	return c
}

// DepthGuard sets the deepest branch allowed before the traversal fails.
func (d *Description) DepthGuard(n int) *Description {
	c := d.clone()
	c.depthGuard = n
	return c
}

// Monitor sends the lifecycle events of every execution to reg, tagged
// with tags.
func (d *Description) Monitor(reg *monitor.Registry, tags ...string) *Description {
	c := d.clone()
	c.monitor, c.tags = reg, slices.Clone(tags)
	return c
}

// OrderName returns the label of the configured ordering.
func (d *Description) OrderName() string { return d.orderName }

// UniquenessPolicy returns the configured uniqueness policy.
func (d *Description) UniquenessPolicy() Uniqueness { return d.uniqueness }

// Traverse binds the description to g and the start vertices. Nothing is
// read from g until the first call to Next on the returned traverser.
// Configuration errors are reported by the traverser's Err.
func (d *Description) Traverse(ctx context.Context, g driver.GraphAccessor, starts ...*types.Vertex) *Traverser {
	t := &Traverser{
		order:  d.order,
		limit:  d.limit,
		starts: slices.Clone(starts),
		attrs:  d.attrs(starts),
	}

	var evaluator Evaluator = All()
	if len(d.evaluators) > 0 {
		evaluator = Both(d.evaluators...)
	}
	t.tc = &TraversalContext{
		ctx:        ctx,
		graph:      g,
		expander:   d.expander,
		evaluator:  evaluator,
		initial:    d.initialState,
		cloner:     d.cloner,
		depthGuard: d.depthGuard,
		monitor:    d.monitor,
		tags:       d.tags,
	}
	t.setupErr = d.validate(g, starts)
	if t.setupErr == nil {
		t.tc.unique, t.setupErr = d.uniqueness.newFilter()
	}
	return t
}

func (d *Description) validate(g driver.GraphAccessor, starts []*types.Vertex) error {
	switch {
	case g == nil:
		return fmt.Errorf("%w: no graph accessor", ErrInvalidConfiguration)
	case d.order == nil:
		return fmt.Errorf("%w: no branch ordering", ErrInvalidConfiguration)
	case d.expander == nil:
		return fmt.Errorf("%w: no expander", ErrInvalidConfiguration)
	case d.depthGuard < 1:
		return fmt.Errorf("%w: depth guard must be positive, got %d", ErrInvalidConfiguration, d.depthGuard)
	case d.limit < 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, types.ErrInvalidLimit)
	case len(starts) == 0:
		return ErrNoStartVertex
	}
	for i, v := range starts {
		if v == nil {
			return fmt.Errorf("%w: start vertex %d is nil", ErrInvalidConfiguration, i)
		}
	}
	return nil
}

func (d *Description) attrs(starts []*types.Vertex) map[string]string {
	ids := make([]string, 0, len(starts))
	for _, v := range starts {
		if v != nil {
			ids = append(ids, v.ID)
		}
	}
	attrs := map[string]string{
		"order":      d.orderName,
		"uniqueness": d.uniqueness.String(),
		"start":      strings.Join(ids, ","),
	}
	if s, ok := d.expander.(fmt.Stringer); ok {
		attrs["expander"] = s.String()
	}
	return attrs
}
