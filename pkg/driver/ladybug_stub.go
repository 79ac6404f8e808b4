//go:build !cgo

package driver

import (
	"context"
	"errors"

	"github.com/soundprediction/graphwalk/pkg/types"
)

// ErrCGORequired is returned when Ladybug operations are called without CGO support
var ErrCGORequired = errors.New("ladybug driver requires CGO; build with CGO_ENABLED=1")

// LadybugGraph is a stub implementation when CGO is disabled.
// All methods return ErrCGORequired.
type LadybugGraph struct{}

// NewLadybugGraph returns an error when CGO is disabled
func NewLadybugGraph(dbPath string) (*LadybugGraph, error) {
	return nil, ErrCGORequired
}

// Provider returns GraphProviderLadybug.
func (g *LadybugGraph) Provider() GraphProvider {
	return GraphProviderLadybug
}

// Close is a no-op.
func (g *LadybugGraph) Close() error {
	return nil
}

// GetVertex returns ErrCGORequired
func (g *LadybugGraph) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	return nil, ErrCGORequired
}

// GetEdges returns ErrCGORequired
func (g *LadybugGraph) GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error) {
	return nil, ErrCGORequired
}

// PutVertex returns ErrCGORequired
func (g *LadybugGraph) PutVertex(ctx context.Context, v *types.Vertex) error {
	return ErrCGORequired
}

// PutEdge returns ErrCGORequired
func (g *LadybugGraph) PutEdge(ctx context.Context, e *types.Edge) error {
	return ErrCGORequired
}

// DeleteVertex returns ErrCGORequired
func (g *LadybugGraph) DeleteVertex(ctx context.Context, id string) error {
	return ErrCGORequired
}
