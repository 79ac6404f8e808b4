package types

// TraversalStats counts the work done by one traversal execution.
type TraversalStats struct {
	// BranchesCreated counts every branch admitted to the traversal, roots included.
	BranchesCreated int64 `json:"branches_created"`
	// Expansions counts expander invocations.
	Expansions int64 `json:"expansions"`
	// PathsYielded counts paths handed to the consumer.
	PathsYielded int64 `json:"paths_yielded"`
	// UniquenessRejections counts candidates refused by the uniqueness filter.
	UniquenessRejections int64 `json:"uniqueness_rejections"`
	// Pruned counts branches whose evaluation stopped further descent.
	Pruned int64 `json:"pruned"`
	// MaxDepth is the deepest branch created.
	MaxDepth int `json:"max_depth"`
}
