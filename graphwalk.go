package graphwalk

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/traversal"
	"github.com/soundprediction/graphwalk/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/soundprediction/graphwalk"

// ErrStartNotFound is returned by Traverse when a start vertex does not
// exist. The accessor's error, usually types.ErrStaleVertex, is wrapped too.
var ErrStartNotFound = errors.New("start vertex not found")

// Config holds configuration for the graphwalk client.
type Config struct {
	// Traversal holds the defaults used by NewDescription
	Traversal config.TraversalConfig
	// Monitor, when set, receives the events of every traversal
	Monitor *monitor.Registry
	// MonitorTags are attached to every traversal's events
	MonitorTags []string
	// Tracer overrides the global OpenTelemetry tracer
	Tracer trace.Tracer
}

// Client runs traversals against one graph accessor.
type Client struct {
	accessor driver.GraphAccessor
	config   *Config
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Result is a fully collected traversal.
type Result struct {
	ExecutionID string
	Paths       []*types.Path
	Stats       types.TraversalStats
	// Truncated is set when collection stopped at the caller's maximum
	Truncated bool
}

// NewClient creates a client reading from accessor. A nil config uses
// config.Default traversal settings; a nil logger uses slog.Default.
func NewClient(accessor driver.GraphAccessor, cfg *Config, logger *slog.Logger) (*Client, error) {
	if accessor == nil {
		return nil, fmt.Errorf("graph accessor is required")
	}
	if cfg == nil {
		cfg = &Config{Traversal: config.Default().Traversal}
	}
	if logger == nil {
		logger = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	return &Client{
		accessor: accessor,
		config:   cfg,
		logger:   logger,
		tracer:   tracer,
	}, nil
}

// Accessor returns the graph accessor of the client.
func (c *Client) Accessor() driver.GraphAccessor {
	return c.accessor
}

// Monitor returns the registry receiving traversal events, if any.
func (c *Client) Monitor() *monitor.Registry {
	return c.config.Monitor
}

// GetVertex retrieves a vertex by id.
func (c *Client) GetVertex(ctx context.Context, id string) (*types.Vertex, error) {
	return c.accessor.GetVertex(ctx, id)
}

// NewDescription builds a description from opts using the client's
// traversal defaults.
func (c *Client) NewDescription(opts TraversalOptions) (*traversal.Description, error) {
	return NewDescription(opts, c.config.Traversal)
}

// Traverse resolves the start vertices and starts a lazy traversal. A
// missing start vertex is reported here as ErrStartNotFound.
// The caller must drain or Close the returned traverser.
func (c *Client) Traverse(ctx context.Context, desc *traversal.Description, startIDs ...string) (*traversal.Traverser, error) {
	if len(startIDs) == 0 {
		return nil, traversal.ErrNoStartVertex
	}

	starts := make([]*types.Vertex, 0, len(startIDs))
	for _, id := range startIDs {
		v, err := c.accessor.GetVertex(ctx, id)
		if err != nil {
			if types.IsStale(err) {
				return nil, fmt.Errorf("%w: %s: %w", ErrStartNotFound, id, err)
			}
			return nil, fmt.Errorf("failed to resolve start vertex %s: %w", id, err)
		}
		starts = append(starts, v)
	}

	if c.config.Monitor != nil {
		desc = desc.Monitor(c.config.Monitor, c.config.MonitorTags...)
	}

	executionID := uuid.New().String()
	ctx = context.WithValue(ctx, types.ContextKeyExecutionID, executionID)
	ctx, span := c.tracer.Start(ctx, "graphwalk.Traverse",
		trace.WithAttributes(
			attribute.String("graphwalk.execution_id", executionID),
			attribute.String("graphwalk.order", desc.OrderName()),
			attribute.String("graphwalk.uniqueness", desc.UniquenessPolicy().String()),
			attribute.StringSlice("graphwalk.start", startIDs),
		))
	started := time.Now()

	tr := desc.Traverse(ctx, c.accessor, starts...).WithExecutionID(executionID)
	tr.OnFinish(func(stats types.TraversalStats, err error) {
		defer span.End()
		span.SetAttributes(
			attribute.Int64("graphwalk.paths_yielded", stats.PathsYielded),
			attribute.Int64("graphwalk.branches_created", stats.BranchesCreated),
			attribute.Int("graphwalk.max_depth", stats.MaxDepth),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.ErrorContext(ctx, "Traversal failed",
				"execution_id", executionID,
				"error", err,
				"paths", stats.PathsYielded)
			return
		}
		span.SetStatus(codes.Ok, "")
		c.logger.DebugContext(ctx, "Traversal finished",
			"execution_id", executionID,
			"paths", stats.PathsYielded,
			"branches", stats.BranchesCreated,
			"duration", time.Since(started))
	})
	return tr, nil
}

// TraverseAll is Traverse as an iterator. A resolution error is yielded
// as the only element.
func (c *Client) TraverseAll(ctx context.Context, desc *traversal.Description, startIDs ...string) iter.Seq2[*types.Path, error] {
	return func(yield func(*types.Path, error) bool) {
		tr, err := c.Traverse(ctx, desc, startIDs...)
		if err != nil {
			yield(nil, err)
			return
		}
		for p, err := range tr.All() {
			if !yield(p, err) {
				return
			}
		}
	}
}

// Collect runs a traversal to completion, or until max paths were
// collected when max is positive.
func (c *Client) Collect(ctx context.Context, desc *traversal.Description, max int, startIDs ...string) (*Result, error) {
	tr, err := c.Traverse(ctx, desc, startIDs...)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	res := &Result{ExecutionID: tr.ExecutionID()}
	for tr.Next() {
		res.Paths = append(res.Paths, tr.Path())
		if max > 0 && len(res.Paths) >= max {
			res.Truncated = tr.HasNext()
			break
		}
	}
	res.Stats = tr.Stats()
	if err := tr.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// Close releases the accessor when it holds resources.
func (c *Client) Close() error {
	return driver.CloseAccessor(c.accessor)
}
