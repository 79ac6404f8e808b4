package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/graphwalk"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// Validation errors
var (
	ErrEmptyStart    = errors.New("start cannot be empty")
	ErrTooManyStarts = errors.New("start exceeds maximum count (100)")
	ErrEmptyStartID  = errors.New("start ids cannot be blank")
	ErrTooManyTypes  = errors.New("edge_types exceeds maximum count (64)")
)

// Request limits
const (
	MaxStartCount    = 100
	MaxEdgeTypeCount = 64
	// MaxResponsePaths caps the paths returned by one request
	MaxResponsePaths = 10000
)

// TraverseRequest represents a request to run a traversal
type TraverseRequest struct {
	Start      []string `json:"start" binding:"required"`
	Order      string   `json:"order,omitempty" binding:"omitempty,oneof=dfs bfs postorder depth-first breadth-first"`
	Uniqueness string   `json:"uniqueness,omitempty"`
	Direction  string   `json:"direction,omitempty" binding:"omitempty,oneof=out outgoing in incoming both"`
	EdgeTypes  []string `json:"edge_types,omitempty"`
	MinDepth   int      `json:"min_depth,omitempty" binding:"gte=0"`
	MaxDepth   *int     `json:"max_depth,omitempty"`
	Limit      int      `json:"limit,omitempty" binding:"gte=0"`
}

// Validate performs validation on TraverseRequest
func (r *TraverseRequest) Validate() error {
	if len(r.Start) == 0 {
		return ErrEmptyStart
	}
	if len(r.Start) > MaxStartCount {
		return ErrTooManyStarts
	}
	for _, id := range r.Start {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyStartID
		}
	}
	if len(r.EdgeTypes) > MaxEdgeTypeCount {
		return ErrTooManyTypes
	}
	return nil
}

// Options converts the request into traversal options.
func (r *TraverseRequest) Options() graphwalk.TraversalOptions {
	return graphwalk.TraversalOptions{
		Order:      r.Order,
		Uniqueness: r.Uniqueness,
		Direction:  r.Direction,
		EdgeTypes:  r.EdgeTypes,
		MinDepth:   r.MinDepth,
		MaxDepth:   r.MaxDepth,
		Limit:      r.Limit,
	}
}

// PathResult is one path of a traversal response
type PathResult struct {
	Vertices []string `json:"vertices"`
	Edges    []string `json:"edges"`
	Length   int      `json:"length"`
	Rendered string   `json:"rendered"`
}

// NewPathResult converts a path for the API.
func NewPathResult(p *types.Path) PathResult {
	return PathResult{
		Vertices: p.VertexIDs(),
		Edges:    p.EdgeIDs(),
		Length:   p.Length(),
		Rendered: p.String(),
	}
}

// TraverseResponse represents the result of a traversal
type TraverseResponse struct {
	ExecutionID string               `json:"execution_id"`
	Paths       []PathResult         `json:"paths"`
	Stats       types.TraversalStats `json:"stats"`
	Truncated   bool                 `json:"truncated,omitempty"`
}
