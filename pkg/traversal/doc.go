// Package traversal implements a lazy, pull-based graph traversal engine.
//
// A Description bundles the policies of a traversal: how edges are
// expanded from a vertex (Expander), which paths are returned and where
// descent stops (Evaluator), which vertices or edges may be revisited
// (Uniqueness) and the order in which the search tree is walked
// (DepthFirst, BreadthFirst, PostorderDepthFirst or a custom
// BranchOrdering). Binding a Description to a graph and start vertices
// yields a Traverser that computes paths one at a time on demand:
//
//	t := traversal.New().
//		BreadthFirst().
//		Expand(traversal.ForTypes(types.Outgoing, "KNOWS")).
//		Evaluator(traversal.ToDepth(3)).
//		Uniqueness(traversal.NodeGlobal).
//		Traverse(ctx, graph, alice)
//	defer t.Close()
//	for t.Next() {
//		fmt.Println(t.Path())
//	}
//	if err := t.Err(); err != nil {
//		return err
//	}
//
// The search tree is made of Branches. Each branch knows its parent, its
// vertex and the edge it was reached by, and pulls its children one edge at
// a time, so nothing beyond what the consumer asked for is ever read from
// the graph. A Traverser must be used from a single goroutine.
package traversal
