package traversal

import (
	"context"
	"slices"

	"github.com/soundprediction/graphwalk/pkg/types"
)

// Evaluator decides, once per branch, whether the branch's path is yielded
// and whether the traversal continues below it. A returned error aborts the
// traversal and is handed to the consumer unchanged.
type Evaluator interface {
	Evaluate(ctx context.Context, b *Branch) (Evaluation, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, b *Branch) (Evaluation, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, b *Branch) (Evaluation, error) {
	return f(ctx, b)
}

// PathEvaluator adapts a function of the branch's path. The path is
// materialized for every evaluation, so prefer branch based evaluators on
// deep traversals.
func PathEvaluator(fn func(p *types.Path) Evaluation) Evaluator {
	return EvaluatorFunc(func(ctx context.Context, b *Branch) (Evaluation, error) {
		return fn(b.Path()), nil
	})
}

func branchEvaluator(fn func(b *Branch) Evaluation) Evaluator {
	return EvaluatorFunc(func(ctx context.Context, b *Branch) (Evaluation, error) {
		return fn(b), nil
	})
}

// All includes every path and never prunes.
func All() Evaluator {
	return branchEvaluator(func(*Branch) Evaluation {
		return IncludeAndContinue
	})
}

// ToDepth includes paths up to depth n and stops descending at n.
func ToDepth(n int) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		return Of(b.Depth() <= n, b.Depth() < n)
	})
}

// FromDepth includes paths of depth n or more.
func FromDepth(n int) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		return Of(b.Depth() >= n, true)
	})
}

// AtDepth includes exactly the paths of depth n.
func AtDepth(n int) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		return Of(b.Depth() == n, b.Depth() < n)
	})
}

// IncludingDepths includes paths whose depth lies in [min, max] and stops
// descending at max.
func IncludingDepths(min, max int) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		d := b.Depth()
		return Of(d >= min && d <= max, d < max)
	})
}

// ExcludeStartPosition drops the zero-length path of each start vertex.
func ExcludeStartPosition() Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		return Of(b.Depth() > 0, true)
	})
}

// IncludeWhereEndVertexIs includes only paths ending at one of ids.
func IncludeWhereEndVertexIs(ids ...string) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		return Of(slices.Contains(ids, b.Vertex().ID), true)
	})
}

// PruneWhereEndVertexIs includes every path but does not descend past any
// of ids.
func PruneWhereEndVertexIs(ids ...string) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		return Of(true, !slices.Contains(ids, b.Vertex().ID))
	})
}

// IncludeWhereLastEdgeTypeIs includes paths whose last edge has one of
// edgeTypes. Zero-length paths are excluded.
func IncludeWhereLastEdgeTypeIs(edgeTypes ...string) Evaluator {
	return branchEvaluator(func(b *Branch) Evaluation {
		e := b.Edge()
		return Of(e != nil && slices.Contains(edgeTypes, e.Type), true)
	})
}

// Both combines evaluators: a path is included only if every evaluator
// includes it, and descent continues only if every evaluator continues.
// Evaluation stops at the first evaluator that neither includes nor
// continues.
func Both(evaluators ...Evaluator) Evaluator {
	if len(evaluators) == 1 {
		return evaluators[0]
	}
	return EvaluatorFunc(func(ctx context.Context, b *Branch) (Evaluation, error) {
		include, cont := true, true
		for _, ev := range evaluators {
			e, err := ev.Evaluate(ctx, b)
			if err != nil {
				return ExcludeAndPrune, err
			}
			include = include && e.Includes()
			cont = cont && e.Continues()
			if !include && !cont {
				break
			}
		}
		return Of(include, cont), nil
	})
}

// Any combines evaluators: a path is included if any evaluator includes it,
// and descent continues if any evaluator continues.
func Any(evaluators ...Evaluator) Evaluator {
	return EvaluatorFunc(func(ctx context.Context, b *Branch) (Evaluation, error) {
		include, cont := false, false
		for _, ev := range evaluators {
			e, err := ev.Evaluate(ctx, b)
			if err != nil {
				return ExcludeAndPrune, err
			}
			include = include || e.Includes()
			cont = cont || e.Continues()
			if include && cont {
				break
			}
		}
		return Of(include, cont), nil
	})
}
