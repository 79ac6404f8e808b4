package traversal

import "errors"

var (
	// ErrInvalidConfiguration reports a description that cannot run, either
	// detected when the traversal starts or when the condition shows up
	// mid-traversal (for example the depth guard being crossed).
	ErrInvalidConfiguration = errors.New("invalid traversal configuration")

	// ErrNoStartVertex is returned when a traversal is bound to no start vertices.
	ErrNoStartVertex = errors.New("traversal needs at least one start vertex")
)
