package traversal

import (
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/types"
)

// FinishFunc is called once when a traversal ends, with its final
// counters and the error that ended it, if any.
type FinishFunc func(stats types.TraversalStats, err error)

// Traverser is the lazy path sequence of one traversal execution. Start
// vertices are traversed one after the other, sharing one uniqueness
// record. A Traverser is not safe for concurrent use.
type Traverser struct {
	tc       *TraversalContext
	order    BranchOrdering
	limit    int
	starts   []*types.Vertex
	attrs    map[string]string
	setupErr error

	started   bool
	done      bool
	startTime time.Time
	nextStart int
	selector  BranchSelector
	branch    *Branch
	pending   *Branch // found by HasNext, not yet yielded
	err       error
	onFinish  []FinishFunc
}

// WithExecutionID sets the id carried by the execution's events. A random
// uuid is used otherwise. It has no effect once iteration has started.
func (t *Traverser) WithExecutionID(id string) *Traverser {
	if !t.started {
		t.tc.executionID = id
	}
	return t
}

// OnFinish registers fn to run when the traversal finishes, fails or is
// closed.
func (t *Traverser) OnFinish(fn FinishFunc) *Traverser {
	t.onFinish = append(t.onFinish, fn)
	return t
}

// ExecutionID returns the id of this execution.
func (t *Traverser) ExecutionID() string {
	return t.tc.executionID
}

// Next advances to the next path and reports whether there is one. It
// returns false at the end of the sequence and after any error.
func (t *Traverser) Next() bool {
	b := t.pending
	t.pending = nil
	if b == nil {
		b = t.advance()
	}
	if b == nil {
		return false
	}

	t.branch = b
	t.tc.stats.PathsYielded++
	t.tc.emitBranch(monitor.PathYielded, b)
	return true
}

// HasNext reports whether Next would return true without moving past the
// current path. It may read from the graph to find out, but the path it
// finds is neither counted nor announced until Next returns it.
func (t *Traverser) HasNext() bool {
	if t.pending == nil {
		t.pending = t.advance()
	}
	return t.pending != nil
}

// advance runs the selectors until they produce an included branch. It
// returns nil once the sequence has ended.
func (t *Traverser) advance() *Branch {
	if t.done {
		return nil
	}
	if !t.started && !t.start() {
		return nil
	}

	for {
		if err := t.tc.ctx.Err(); err != nil {
			t.fail(err)
			return nil
		}
		if t.limit > 0 && t.tc.stats.PathsYielded >= int64(t.limit) {
			t.finish()
			return nil
		}

		if t.selector == nil {
			if t.nextStart >= len(t.starts) {
				t.finish()
				return nil
			}
			root, err := t.tc.startRoot(t.starts[t.nextStart])
			t.nextStart++
			if err != nil {
				t.fail(err)
				return nil
			}
			if root == nil {
				continue
			}
			t.selector = t.order(root)
		}

		b, err := t.selector.Next(t.tc)
		if err != nil {
			t.fail(err)
			return nil
		}
		if b == nil {
			t.selector = nil
			continue
		}
		if b.Evaluation().Includes() {
			return b
		}
	}
}

func (t *Traverser) start() bool {
	t.started = true
	t.startTime = time.Now()
	if t.tc.executionID == "" {
		t.tc.executionID = uuid.New().String()
	}
	if t.setupErr != nil {
		t.fail(t.setupErr)
		return false
	}
	if t.tc.listening(monitor.TraversalStarted) {
		t.tc.dispatch(monitor.Event{Kind: monitor.TraversalStarted, Attrs: t.attrs})
	}
	return true
}

// Path returns the current path. It is valid after Next returned true.
func (t *Traverser) Path() *types.Path {
	if t.branch == nil {
		return nil
	}
	return t.branch.Path()
}

// Branch returns the branch behind the current path.
func (t *Traverser) Branch() *Branch {
	return t.branch
}

// Err returns the error that ended the sequence, if any.
func (t *Traverser) Err() error {
	return t.err
}

// Stats returns the execution's counters so far.
func (t *Traverser) Stats() types.TraversalStats {
	return t.tc.stats
}

// Close ends the sequence early. Paths already returned stay valid. Closing
// a traverser that never started runs its finish callbacks without
// dispatching any event.
func (t *Traverser) Close() {
	if t.done {
		return
	}
	if !t.started {
		t.done = true
		for _, fn := range t.onFinish {
			fn(t.tc.stats, nil)
		}
		return
	}
	t.finish()
}

// All returns the remaining paths as an iterator. Iteration stops after
// yielding the error that ended the sequence, and breaking out of the loop
// closes the traverser.
func (t *Traverser) All() iter.Seq2[*types.Path, error] {
	return func(yield func(*types.Path, error) bool) {
		defer t.Close()
		for t.Next() {
			if !yield(t.Path(), nil) {
				return
			}
		}
		if err := t.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (t *Traverser) fail(err error) {
	t.err = err
	t.end(monitor.TraversalFailed)
}

func (t *Traverser) finish() {
	t.end(monitor.TraversalFinished)
}

func (t *Traverser) end(kind monitor.EventKind) {
	t.done = true
	t.branch = nil
	t.pending = nil
	t.selector = nil

	if t.tc.listening(kind) {
		t.tc.dispatch(monitor.Event{
			Kind:    kind,
			Stats:   t.tc.stats,
			Elapsed: time.Since(t.startTime),
			Err:     t.err,
			Attrs:   t.attrs,
		})
	}
	for _, fn := range t.onFinish {
		fn(t.tc.stats, t.err)
	}
}
