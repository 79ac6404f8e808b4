package driver

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// GraphProvider represents the kind of backend behind an accessor.
type GraphProvider string

const (
	GraphProviderMemory  GraphProvider = "memory"
	GraphProviderBadger  GraphProvider = "badger"
	GraphProviderNeo4j   GraphProvider = "neo4j"
	GraphProviderLadybug GraphProvider = "ladybug"
)

// GraphAccessor is the read-only view of a graph consumed by traversals.
// Lookups of ids that do not exist return errors wrapping
// types.ErrStaleVertex or types.ErrStaleEdge.
type GraphAccessor interface {
	// GetVertex retrieves a single vertex by id.
	GetVertex(ctx context.Context, id string) (*types.Vertex, error)

	// GetEdges lists the edges of vertex in the given direction, restricted to
	// edgeTypes when any are given. The order is stable for a given graph.
	GetEdges(ctx context.Context, vertex *types.Vertex, dir types.Direction, edgeTypes ...string) ([]*types.Edge, error)
}

// GraphWriter is implemented by backends that can be loaded with data.
type GraphWriter interface {
	// PutVertex creates or replaces a vertex.
	PutVertex(ctx context.Context, v *types.Vertex) error

	// PutEdge creates or replaces an edge. Both endpoints must exist.
	PutEdge(ctx context.Context, e *types.Edge) error

	// DeleteVertex removes a vertex and every edge incident to it.
	DeleteVertex(ctx context.Context, id string) error
}

// Graph is a backend that can be both read and written.
type Graph interface {
	GraphAccessor
	GraphWriter
}

// Closer is implemented by accessors holding resources.
type Closer interface {
	Close() error
}

// Provider is implemented by accessors that report their backend kind.
type Provider interface {
	Provider() GraphProvider
}

// Open creates the accessor selected by cfg.Driver. For the memory driver a
// fixture file, when configured, is loaded into the new graph.
func Open(ctx context.Context, cfg config.DatabaseConfig) (GraphAccessor, error) {
	switch GraphProvider(cfg.Driver) {
	case GraphProviderMemory, "":
		graph := NewMemoryGraph()
		if cfg.Fixture != "" {
			if err := loadFixtureFile(ctx, cfg.Fixture, graph); err != nil {
				return nil, err
			}
		}
		return graph, nil

	case GraphProviderBadger:
		graph, err := NewBadgerGraph(cfg.URI)
		if err != nil {
			return nil, err
		}
		if cfg.Fixture != "" {
			if err := loadFixtureFile(ctx, cfg.Fixture, graph); err != nil {
				graph.Close()
				return nil, err
			}
		}
		return graph, nil

	case GraphProviderNeo4j:
		graph, err := NewNeo4jGraph(cfg.URI, cfg.Username, cfg.Password, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := graph.VerifyConnectivity(ctx); err != nil {
			graph.Close()
			return nil, fmt.Errorf("failed to reach neo4j: %w", err)
		}
		return graph, nil

	case GraphProviderLadybug:
		graph, err := NewLadybugGraph(cfg.URI)
		if err != nil {
			return nil, err
		}
		return graph, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// CloseAccessor closes a if it holds resources.
func CloseAccessor(a GraphAccessor) error {
	if c, ok := a.(Closer); ok {
		return c.Close()
	}
	return nil
}

func loadFixtureFile(ctx context.Context, path string, w GraphWriter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	return loadFixture(ctx, f, w)
}

func loadFixture(ctx context.Context, r io.Reader, w GraphWriter) error {
	fixture, err := LoadFixture(r)
	if err != nil {
		return err
	}
	return fixture.Apply(ctx, w)
}
