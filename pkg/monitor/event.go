package monitor

import (
	"context"
	"time"

	"github.com/soundprediction/graphwalk/pkg/types"
)

// EventKind identifies a point in a traversal's lifecycle.
type EventKind string

const (
	TraversalStarted   EventKind = "traversal_started"
	BranchExpanded     EventKind = "branch_expanded"
	PathYielded        EventKind = "path_yielded"
	BranchPruned       EventKind = "branch_pruned"
	UniquenessRejected EventKind = "uniqueness_rejected"
	TraversalFinished  EventKind = "traversal_finished"
	TraversalFailed    EventKind = "traversal_failed"

	// ListenerRegistered is sent to the listeners of a kind whenever a new
	// listener joins that kind.
	ListenerRegistered EventKind = "listener_registered"
)

// AllKinds lists every traversal event kind, ListenerRegistered excluded.
var AllKinds = []EventKind{
	TraversalStarted,
	BranchExpanded,
	PathYielded,
	BranchPruned,
	UniquenessRejected,
	TraversalFinished,
	TraversalFailed,
}

// Event is a single lifecycle notification. Fields that do not apply to a
// kind are left zero.
type Event struct {
	Kind        EventKind
	ExecutionID string
	Tags        []string
	Time        time.Time

	// Branch related fields
	Depth    int
	VertexID string
	EdgeID   string
	Path     *types.Path

	// Set on TraversalFinished and TraversalFailed
	Stats   types.TraversalStats
	Elapsed time.Duration
	Err     error

	// Attrs describes the traversal: order, uniqueness and start vertices.
	Attrs map[string]string
}

// Listener receives events.
type Listener interface {
	HandleEvent(ctx context.Context, e Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, e Event) error

// HandleEvent calls f.
func (f ListenerFunc) HandleEvent(ctx context.Context, e Event) error {
	return f(ctx, e)
}
