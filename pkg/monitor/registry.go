package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/soundprediction/graphwalk/pkg/utils"
)

// ErrorSink receives listener failures. Panics arrive as *utils.PanicError.
type ErrorSink func(kind EventKind, err error)

// Option configures a Registry.
type Option func(*Registry)

// WithErrorSink routes listener failures to sink instead of the logger.
func WithErrorSink(sink ErrorSink) Option {
	return func(r *Registry) {
		r.sink = sink
	}
}

// WithLogger sets the logger used by the default error sink.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

type entry struct {
	id       uint64
	listener Listener
	tags     []string
}

// Registry holds listeners per event kind. It is safe for concurrent use;
// listeners are invoked synchronously on the dispatching goroutine.
type Registry struct {
	mu        sync.RWMutex
	listeners map[EventKind][]*entry
	nextID    uint64

	sink   ErrorSink
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		listeners: make(map[EventKind][]*entry),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		logger := r.logger
		r.sink = func(kind EventKind, err error) {
			logger.Warn("Traversal listener failed", "event", string(kind), "error", err)
		}
	}
	return r
}

// Register adds l for events of kind. With tags, l only receives events
// from traversals carrying at least one of them. The returned function
// removes the registration; calling it more than once is harmless.
func (r *Registry) Register(kind EventKind, l Listener, tags ...string) func() {
	r.mu.Lock()
	r.nextID++
	e := &entry{id: r.nextID, listener: l, tags: slices.Clone(tags)}
	r.listeners[kind] = append(r.listeners[kind], e)
	r.mu.Unlock()

	r.Dispatch(context.Background(), Event{
		Kind:  ListenerRegistered,
		Time:  time.Now(),
		Tags:  e.tags,
		Attrs: map[string]string{"kind": string(kind)},
	})

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(kind, e.id) })
	}
}

// RegisterAll registers l for every kind in kinds and returns a function
// removing all of those registrations.
func (r *Registry) RegisterAll(kinds []EventKind, l Listener, tags ...string) func() {
	unregister := make([]func(), 0, len(kinds))
	for _, kind := range kinds {
		unregister = append(unregister, r.Register(kind, l, tags...))
	}
	return func() {
		for _, fn := range unregister {
			fn()
		}
	}
}

func (r *Registry) remove(kind EventKind, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners[kind] = slices.DeleteFunc(r.listeners[kind], func(e *entry) bool {
		return e.id == id
	})
	if len(r.listeners[kind]) == 0 {
		delete(r.listeners, kind)
	}
}

// HasListeners reports whether an event of kind carrying tags would reach
// any listener.
func (r *Registry) HasListeners(kind EventKind, tags ...string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.listeners[kind] {
		if e.matches(tags) {
			return true
		}
	}
	return false
}

// Dispatch delivers ev to its untagged listeners and then to the listeners
// of each of its tags, each listener at most once. A nil registry drops
// the event.
func (r *Registry) Dispatch(ctx context.Context, ev Event) {
	if r == nil {
		return
	}
	for _, e := range r.recipients(ev.Kind, ev.Tags) {
		if err := r.deliver(ctx, e.listener, ev); err != nil {
			r.sink(ev.Kind, err)
		}
	}
}

// recipients snapshots the listeners so a listener may register or
// unregister while being called.
func (r *Registry) recipients(kind EventKind, tags []string) []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.listeners[kind]
	out := make([]*entry, 0, len(all))
	for _, e := range all {
		if len(e.tags) == 0 {
			out = append(out, e)
		}
	}
	for _, tag := range tags {
		for _, e := range all {
			if slices.Contains(e.tags, tag) && !slices.Contains(out, e) {
				out = append(out, e)
			}
		}
	}
	return out
}

func (r *Registry) deliver(ctx context.Context, l Listener, ev Event) (err error) {
	defer utils.RecoverAsError(&err)
	if err := l.HandleEvent(ctx, ev); err != nil {
		return fmt.Errorf("listener for %s: %w", ev.Kind, err)
	}
	return nil
}

func (e *entry) matches(tags []string) bool {
	if len(e.tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if slices.Contains(e.tags, tag) {
			return true
		}
	}
	return false
}
