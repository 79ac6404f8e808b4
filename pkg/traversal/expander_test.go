package traversal_test

import (
	"context"
	"testing"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/traversal"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestStandardExpanders(t *testing.T) {
	g := buildGraph(t,
		"A-[KNOWS]->B",
		"C-[KNOWS]->A",
		"A-[OWNS]->D",
		"E-[OWNS]->A",
	)

	tests := []struct {
		name string
		exp  traversal.Expander
		want []string
	}{
		{"all outgoing", traversal.AllEdges(types.Outgoing), []string{"A", "AB", "AD"}},
		{"all incoming", traversal.AllEdges(types.Incoming), []string{"A", "AC", "AE"}},
		{"all both", traversal.AllEdges(types.Both), []string{"A", "AB", "AC", "AD", "AE"}},
		{"for types", traversal.ForTypes(types.Both, "OWNS"), []string{"A", "AD", "AE"}},
		{"builder", traversal.ForTypeAndDirection("KNOWS", types.Incoming).Add("OWNS", types.Outgoing), []string{"A", "AC", "AD"}},
		{"merged direction", traversal.ForTypeAndDirection("KNOWS", types.Outgoing).Add("OWNS", types.Outgoing), []string{"A", "AB", "AD"}},
		{"reversed", traversal.ForTypeAndDirection("KNOWS", types.Outgoing).Reversed(), []string{"A", "AC"}},
		{"edge filter", traversal.AllEdges(types.Both).WithEdgeFilter(func(b *traversal.Branch, e *types.Edge) bool {
			return e.StartID == "A"
		}), []string{"A", "AB", "AD"}},
		{"vertex filter", traversal.AllEdges(types.Both).WithVertexFilter(func(v *types.Vertex) bool {
			return v.ID != "C"
		}), []string{"A", "AB", "AD", "AE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, traversal.New().Expand(tt.exp), g, "A"))
		})
	}
}

func TestRelationshipsBuilder(t *testing.T) {
	g := buildGraph(t, "A-[KNOWS]->B", "A-[OWNS]->C", "D-[KNOWS]->A")

	d := traversal.New().Relationships("KNOWS", types.Outgoing)
	assert.Equal(t, []string{"A", "AB"}, run(t, d, g, "A"))

	d = d.Relationships("OWNS", types.Outgoing)
	assert.Equal(t, []string{"A", "AB", "AC"}, run(t, d, g, "A"))
}

func TestExpanderString(t *testing.T) {
	e := traversal.ForTypeAndDirection("KNOWS", types.Outgoing).Add("", types.Incoming)
	assert.Equal(t, "KNOWS:outgoing,*:incoming", e.String())
}

func TestArrivalEdgeIsNotFollowedBack(t *testing.T) {
	g := buildGraph(t, "A->B")
	var offered []string
	exp := traversal.ExpanderFunc(func(ctx context.Context, g driver.GraphAccessor, b *traversal.Branch) (traversal.EdgeIterator, error) {
		edges, err := g.GetEdges(ctx, b.Vertex(), types.Both)
		for _, e := range edges {
			offered = append(offered, b.Vertex().ID+":"+e.ID)
		}
		return traversal.SliceEdges(edges), err
	})

	d := traversal.New().Expand(exp).Uniqueness(traversal.NoUniqueness)
	assert.Equal(t, []string{"A", "AB"}, run(t, d, g, "A"))
	assert.Equal(t, []string{"A:AB", "B:AB"}, offered)
}

func TestCustomOrdering(t *testing.T) {
	g := buildGraph(t, "A->B", "A->C", "B->D")

	// children of each branch in reverse expansion order, one level at a time
	var reverse traversal.BranchOrdering = func(root *traversal.Branch) traversal.BranchSelector {
		return &reverseLevels{pending: []*traversal.Branch{root}}
	}

	d := outgoing().Order("reverse", reverse)
	assert.Equal(t, []string{"A", "AC", "AB", "ABD"}, run(t, d, g, "A"))
	assert.Equal(t, "reverse", d.OrderName())
}

type reverseLevels struct {
	pending []*traversal.Branch
	out     []*traversal.Branch
}

func (s *reverseLevels) Next(tc *traversal.TraversalContext) (*traversal.Branch, error) {
	for len(s.out) == 0 && len(s.pending) > 0 {
		b := s.pending[0]
		s.pending = s.pending[1:]

		var children []*traversal.Branch
		for {
			child, err := b.Next(tc)
			if err != nil {
				return nil, err
			}
			if child == nil {
				break
			}
			if child == b {
				s.out = append(s.out, b)
				continue
			}
			children = append([]*traversal.Branch{child}, children...)
		}
		s.out = append(s.out, children...)
		for _, c := range children {
			if c.Evaluation().Continues() {
				s.pending = append(s.pending, c)
			}
		}
	}
	if len(s.out) == 0 {
		return nil, nil
	}
	b := s.out[0]
	s.out = s.out[1:]
	return b, nil
}

func TestVertexFilterLoadsEachVertexOnce(t *testing.T) {
	g := buildGraph(t, "A->B", "A->C", "B->D")
	cg := &countingGraph{GraphAccessor: g}

	exp := traversal.AllEdges(types.Outgoing).WithVertexFilter(func(v *types.Vertex) bool {
		return v.ID != "C"
	})
	paths := collect(t, traversal.New().Expand(exp).Traverse(context.Background(), cg, vertex(t, g, "A")))

	assert.Equal(t, []string{"A", "AB", "ABD"}, paths)
	assert.Equal(t, 3, cg.vertexCalls, "B, C and D are each read once")
}
