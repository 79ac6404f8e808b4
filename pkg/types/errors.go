package types

import "errors"

// Validation errors
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrEmptyEdgeType    = errors.New("edge type cannot be empty")
	ErrDanglingEdge     = errors.New("edge must have both endpoints")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// Accessor errors. A graph element that disappears while a traversal is
// running is reported as stale; callers match with errors.Is.
var (
	ErrStaleVertex = errors.New("vertex not found")
	ErrStaleEdge   = errors.New("edge not found")
)

// IsStale reports whether err means a graph element no longer exists.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleVertex) || errors.Is(err, ErrStaleEdge)
}
