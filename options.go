package graphwalk

import (
	"fmt"

	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/traversal"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// TraversalOptions describes a traversal as plain data. Zero values take
// the client's configured defaults.
type TraversalOptions struct {
	// Order is dfs, bfs or postorder.
	Order string `json:"order,omitempty" yaml:"order,omitempty"`
	// Uniqueness is a policy name understood by traversal.ParseUniqueness.
	Uniqueness string `json:"uniqueness,omitempty" yaml:"uniqueness,omitempty"`
	// Direction is outgoing, incoming or both.
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty"`
	// EdgeTypes restricts the edges followed; empty follows every type.
	EdgeTypes []string `json:"edge_types,omitempty" yaml:"edge_types,omitempty"`
	// MinDepth excludes shorter paths.
	MinDepth int `json:"min_depth,omitempty" yaml:"min_depth,omitempty"`
	// MaxDepth stops descent; nil uses the configured default and a
	// negative value means unbounded.
	MaxDepth *int `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	// Limit caps the number of paths; 0 uses the configured default.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Depth returns a pointer to d, for TraversalOptions.MaxDepth.
func Depth(d int) *int {
	return &d
}

// NewDescription builds a traversal description from opts, filling unset
// fields from defaults. Invalid settings wrap
// traversal.ErrInvalidConfiguration.
func NewDescription(opts TraversalOptions, defaults config.TraversalConfig) (*traversal.Description, error) {
	d := traversal.New()

	order := firstNonEmpty(opts.Order, defaults.Order, "dfs")
	switch order {
	case "dfs", "depth-first":
		d = d.DepthFirst()
	case "bfs", "breadth-first":
		d = d.BreadthFirst()
	case "postorder":
		d = d.PostorderDepthFirst()
	default:
		return nil, fmt.Errorf("%w: unknown order %q", traversal.ErrInvalidConfiguration, order)
	}

	u, err := traversal.ParseUniqueness(firstNonEmpty(opts.Uniqueness, defaults.Uniqueness))
	if err != nil {
		return nil, err
	}
	d = d.Uniqueness(u)

	dir, err := types.ParseDirection(firstNonEmpty(opts.Direction, defaults.Direction))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", traversal.ErrInvalidConfiguration, err)
	}
	d = d.Expand(traversal.ForTypes(dir, opts.EdgeTypes...))

	maxDepth := defaults.MaxDepth
	if opts.MaxDepth != nil {
		maxDepth = *opts.MaxDepth
	}
	switch {
	case opts.MinDepth < 0:
		return nil, fmt.Errorf("%w: min depth %d is negative", traversal.ErrInvalidConfiguration, opts.MinDepth)
	case maxDepth >= 0 && opts.MinDepth > maxDepth:
		return nil, fmt.Errorf("%w: min depth %d exceeds max depth %d", traversal.ErrInvalidConfiguration, opts.MinDepth, maxDepth)
	case maxDepth >= 0 && opts.MinDepth > 0:
		d = d.Evaluator(traversal.IncludingDepths(opts.MinDepth, maxDepth))
	case maxDepth >= 0:
		d = d.Evaluator(traversal.ToDepth(maxDepth))
	case opts.MinDepth > 0:
		d = d.Evaluator(traversal.FromDepth(opts.MinDepth))
	}

	limit := opts.Limit
	if limit == 0 {
		limit = defaults.MaxPaths
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %w", traversal.ErrInvalidConfiguration, types.ErrInvalidLimit)
	}
	d = d.Limit(limit)

	if defaults.DepthGuard > 0 {
		d = d.DepthGuard(defaults.DepthGuard)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
