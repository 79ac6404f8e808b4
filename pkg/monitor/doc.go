// Package monitor dispatches traversal lifecycle events to registered
// listeners.
//
// Listeners register for one EventKind, optionally narrowed by tags. A
// traversal carries its own tags; an event reaches every untagged listener
// of its kind first and then the listeners registered under each of the
// traversal's tags. Listener failures never reach the traversal: errors
// and panics are handed to the registry's ErrorSink.
package monitor
